package view

import (
	"github.com/filedeck/filedeck/internal/models"
)

// EditTarget is a rename in progress.
type EditTarget struct {
	Kind  models.ItemKind
	ID    models.ID
	Draft string
}

// ViewState is what the table shows beyond the records themselves.
// It is never derived from a fetch and survives refreshes.
// Methods return a new state and leave the receiver untouched.
type ViewState struct {
	Expanded *models.ID // at most one folder is open
	Editing  *EditTarget
}

// Toggle opens folder id, closing any other, or closes it if it is already open.
func (s ViewState) Toggle(id models.ID) ViewState {
	if s.IsExpanded(id) {
		s.Expanded = nil
		return s
	}
	s.Expanded = &id
	return s
}

// IsExpanded reports whether folder id is open.
func (s ViewState) IsExpanded(id models.ID) bool {
	return s.Expanded != nil && *s.Expanded == id
}

// StartEdit begins renaming the record, seeding the draft with its current name.
func (s ViewState) StartEdit(kind models.ItemKind, id models.ID, current string) ViewState {
	s.Editing = &EditTarget{Kind: kind, ID: id, Draft: current}
	return s
}

// CancelEdit drops any rename in progress.
func (s ViewState) CancelEdit() ViewState {
	s.Editing = nil
	return s
}

// Prune drops references to records that no longer exist after a refresh.
func (s ViewState) Prune(tree []Node) ViewState {
	seen := make(map[models.ItemKind]map[models.ID]bool, 2)
	mark := func(k models.ItemKind, id models.ID) {
		if seen[k] == nil {
			seen[k] = make(map[models.ID]bool)
		}
		seen[k][id] = true
	}
	for _, n := range tree {
		mark(n.Kind(), n.ID())
		for _, c := range n.Children {
			mark(models.KindFile, c.ID)
		}
	}

	if s.Expanded != nil && !seen[models.KindFolder][*s.Expanded] {
		s.Expanded = nil
	}
	if s.Editing != nil && !seen[s.Editing.Kind][s.Editing.ID] {
		s.Editing = nil
	}
	return s
}

// Row is one line of the rendered files table.
type Row struct {
	Depth    int // 0 top level, 1 inside the open folder
	Kind     models.ItemKind
	ID       models.ID
	Name     string
	Date     models.Timestamp
	Size     *int64 // nil for folders
	URL      string
	Children int  // number of files in a folder row
	Expanded bool // folder rows only
	Editing  bool
}

// Rows flattens tree for display. Files of a folder appear right after it,
// and only while that folder is expanded.
func (s ViewState) Rows(tree []Node) []Row {
	rows := make([]Row, 0, len(tree))
	for _, n := range tree {
		if n.Folder != nil {
			open := s.IsExpanded(n.Folder.ID)
			rows = append(rows, Row{
				Kind:     models.KindFolder,
				ID:       n.Folder.ID,
				Name:     n.Folder.Name,
				Date:     n.Folder.UploadedAt,
				URL:      n.Folder.URL,
				Children: len(n.Children),
				Expanded: open,
				Editing:  s.editing(models.KindFolder, n.Folder.ID),
			})
			if open {
				for _, c := range n.Children {
					rows = append(rows, s.fileRow(c, 1))
				}
			}
			continue
		}
		rows = append(rows, s.fileRow(*n.File, 0))
	}
	return rows
}

func (s ViewState) fileRow(f models.FileRecord, depth int) Row {
	size := clampSize(f.Size)
	return Row{
		Depth:   depth,
		Kind:    models.KindFile,
		ID:      f.ID,
		Name:    f.Name,
		Date:    f.CreatedAt,
		Size:    &size,
		URL:     f.URL,
		Editing: s.editing(models.KindFile, f.ID),
	}
}

func (s ViewState) editing(kind models.ItemKind, id models.ID) bool {
	return s.Editing != nil && s.Editing.Kind == kind && s.Editing.ID == id
}
