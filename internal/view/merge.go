// Package view derives display models from the backend's file and folder records.
// Everything here is pure: the same records always give the same items, usage and rows.
package view

import (
	"path"
	"sort"
	"strings"

	"github.com/filedeck/filedeck/internal/constants"
	"github.com/filedeck/filedeck/internal/models"
	"github.com/filedeck/filedeck/internal/util/filter"
)

var categoryByExt = map[string]models.Category{
	"jpg":  models.CategoryImages,
	"jpeg": models.CategoryImages,
	"png":  models.CategoryImages,
	"gif":  models.CategoryImages,
	"bmp":  models.CategoryImages,
	"webp": models.CategoryImages,
	"zip":  models.CategoryZip,
	"rar":  models.CategoryZip,
	"7z":   models.CategoryZip,
}

// Categorize buckets a file name by its extension, case-insensitively.
// Names without a known extension are Others.
func Categorize(name string) models.Category {
	ext := strings.TrimPrefix(path.Ext(name), ".")
	if c, ok := categoryByExt[strings.ToLower(ext)]; ok {
		return c
	}
	return models.CategoryOthers
}

func clampSize(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}

// ComputeUsage sums file sizes per category and counts folders.
// Remaining never goes below zero.
func ComputeUsage(files []models.FileRecord, folders []models.FolderRecord, quota int64) models.UsageBreakdown {
	u := models.UsageBreakdown{Quota: quota, FolderCount: len(folders)}
	for _, f := range files {
		size := clampSize(f.Size)
		switch Categorize(f.Name) {
		case models.CategoryImages:
			u.Images += size
		case models.CategoryZip:
			u.Zip += size
		default:
			u.Others += size
		}
	}
	return u
}

// Items flattens files and folders into one list, newest first.
// Equal timestamps keep input order: files before folders, each as given.
func Items(files []models.FileRecord, folders []models.FolderRecord) []models.UploadItem {
	items := make([]models.UploadItem, 0, len(files)+len(folders))
	for _, f := range files {
		size := clampSize(f.Size)
		items = append(items, models.UploadItem{
			ID:   f.ID,
			Kind: models.KindFile,
			Name: f.Name,
			Date: f.CreatedAt,
			Size: &size,
			Type: f.Type,
			URL:  f.URL,
		})
	}
	for _, d := range folders {
		items = append(items, models.UploadItem{
			ID:   d.ID,
			Kind: models.KindFolder,
			Name: d.Name,
			Date: d.UploadedAt,
			Type: "folder",
			URL:  d.URL,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Date.After(items[j].Date.Time)
	})
	return items
}

// Merge is Items plus ComputeUsage against the fixed storage quota.
func Merge(files []models.FileRecord, folders []models.FolderRecord) ([]models.UploadItem, models.UsageBreakdown) {
	return Items(files, folders), ComputeUsage(files, folders, constants.QuotaBytes)
}

// Recent returns at most n items from the front of a merged list.
// n <= 0 returns everything.
func Recent(items []models.UploadItem, n int) []models.UploadItem {
	if n <= 0 || n >= len(items) {
		return items
	}
	return items[:n]
}

// Filter keeps the items whose name passes cfg.
func Filter(items []models.UploadItem, cfg filter.Config) []models.UploadItem {
	return filter.Apply(items, func(it models.UploadItem) string { return it.Name }, cfg)
}

// FilterFiles keeps the file records whose name passes cfg.
func FilterFiles(files []models.FileRecord, cfg filter.Config) []models.FileRecord {
	return filter.Apply(files, func(f models.FileRecord) string { return f.Name }, cfg)
}
