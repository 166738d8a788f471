package view

import (
	"github.com/filedeck/filedeck/internal/models"
)

// Node is one top-level row of the files table: a folder with its files,
// or a file that belongs to no known folder.
type Node struct {
	Folder   *models.FolderRecord
	File     *models.FileRecord
	Children []models.FileRecord
}

// Kind reports whether the node is a folder or a file.
func (n Node) Kind() models.ItemKind {
	if n.Folder != nil {
		return models.KindFolder
	}
	return models.KindFile
}

// ID returns the record id behind the node.
func (n Node) ID() models.ID {
	if n.Folder != nil {
		return n.Folder.ID
	}
	return n.File.ID
}

// BuildTree groups files under their folders. Folders come first in input order,
// then loose files in input order. A file pointing at a folder that is not in
// folders is listed at the top level so it stays reachable.
func BuildTree(files []models.FileRecord, folders []models.FolderRecord) []Node {
	nodes := make([]Node, 0, len(folders)+len(files))
	byID := make(map[models.ID]int, len(folders))

	for i := range folders {
		byID[folders[i].ID] = len(nodes)
		nodes = append(nodes, Node{Folder: &folders[i]})
	}

	for i := range files {
		f := &files[i]
		if f.InFolder() {
			if idx, ok := byID[*f.FolderID]; ok {
				nodes[idx].Children = append(nodes[idx].Children, *f)
				continue
			}
		}
		nodes = append(nodes, Node{File: f})
	}
	return nodes
}
