package models

import (
	"fmt"

	"github.com/filedeck/filedeck/internal/constants"
)

// Category is a usage bucket on the dashboard
type Category string

const (
	CategoryImages    Category = "Images"
	CategoryZip       Category = "Zip"
	CategoryOthers    Category = "Others"
	CategoryFolders   Category = "Folders"
	CategoryRemaining Category = "Remaining"
)

// FileCategories are the categories a single file can fall into.
var FileCategories = []Category{CategoryImages, CategoryZip, CategoryOthers}

// UsageBreakdown is the derived storage usage for the current record set.
// Byte counts are exact; conversion to GiB happens only when rendering.
type UsageBreakdown struct {
	Images      int64
	Zip         int64
	Others      int64
	FolderCount int
	Quota       int64
}

// Bytes returns the byte total for a file category, or 0 for non-byte categories.
func (u UsageBreakdown) Bytes(c Category) int64 {
	switch c {
	case CategoryImages:
		return u.Images
	case CategoryZip:
		return u.Zip
	case CategoryOthers:
		return u.Others
	case CategoryRemaining:
		return u.Remaining()
	}
	return 0
}

// Used is the sum of the file categories.
func (u UsageBreakdown) Used() int64 {
	return u.Images + u.Zip + u.Others
}

// Remaining is max(0, quota - used).
func (u UsageBreakdown) Remaining() int64 {
	if r := u.Quota - u.Used(); r > 0 {
		return r
	}
	return 0
}

// BytesToGiB converts bytes to GiB without rounding.
func BytesToGiB(b int64) float64 {
	return float64(b) / float64(constants.BytesPerGiB)
}

// FormatGiB renders bytes as GiB with two decimals.
func FormatGiB(b int64) string {
	return fmt.Sprintf("%.2f GB", BytesToGiB(b))
}
