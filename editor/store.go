package editor

import (
	"fmt"
	"slices"

	"pbc/document"
	"pbc/schema"
	"pbc/styles"
)

// Refresher receives the document after every store mutation and brackets
// inline editing, when debounced refreshes pause. The preview scheduler is
// the production implementation.
type Refresher interface {
	Schedule(doc *document.PageDocument)
	Suspend()
	Resume()
}

// Store is the authoring state of one page under edit: the document, the
// selected block and a dirty flag. Every mutation funnels through its
// methods - each one renormalizes, marks the store dirty and schedules a
// preview refresh, so no caller can leave those three out of step.
type Store struct {
	reg      *schema.Registry
	doc      *document.PageDocument
	preview  Refresher
	selected string
	dirty    bool
	inline   bool
}

// NewStore loads a document for editing. The document is deep-copied and
// normalized on the way in; a nil preview disables refresh scheduling.
func NewStore(reg *schema.Registry, doc *document.PageDocument, preview Refresher) *Store {
	d := doc.Clone()
	if d == nil {
		d = document.New("")
	}
	document.Normalize(reg, d)
	return &Store{reg: reg, doc: d, preview: preview}
}

// Document returns a deep copy of the current document, e.g. for saving.
func (s *Store) Document() *document.PageDocument {
	return s.doc.Clone()
}

// Blocks returns a deep copy of the shared block layout.
func (s *Store) Blocks() []schema.Block {
	out := make([]schema.Block, len(s.doc.Blocks))
	for i, b := range s.doc.Blocks {
		out[i] = b.Clone()
	}
	return out
}

// Block returns a copy of the block with the given ID.
func (s *Store) Block(id string) (schema.Block, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return schema.Block{}, false
	}
	return s.doc.Blocks[i].Clone(), true
}

// Dirty reports whether the store carries unsaved changes.
func (s *Store) Dirty() bool {
	return s.dirty
}

// MarkSaved clears the dirty flag after a successful save.
func (s *Store) MarkSaved() {
	s.dirty = false
}

// Selected returns the selected block's ID, empty when nothing is selected.
func (s *Store) Selected() string {
	return s.selected
}

// Select marks the block with the given ID selected. Selecting an ID the
// layout does not contain clears the selection.
func (s *Store) Select(id string) {
	if s.indexOf(id) < 0 {
		s.selected = ""
		return
	}
	s.selected = id
}

// InsertBlock creates a fresh block of the given type with its blueprint
// defaults cloned in, inserts it at index (clamped to the layout bounds)
// and selects it.
func (s *Store) InsertBlock(blockType string, index int) (schema.Block, error) {
	b, err := s.reg.NewBlock(blockType)
	if err != nil {
		return schema.Block{}, err
	}
	if index < 0 {
		index = 0
	}
	if index > len(s.doc.Blocks) {
		index = len(s.doc.Blocks)
	}
	s.doc.Blocks = slices.Insert(s.doc.Blocks, index, s.reg.NormalizeBlock(b))
	s.selected = b.ID
	s.changed()
	return b.Clone(), nil
}

// RemoveBlock drops the block at index; the remainder keeps its order.
// Removing the selected block clears the selection.
func (s *Store) RemoveBlock(index int) error {
	if index < 0 || index >= len(s.doc.Blocks) {
		return fmt.Errorf("page has %d block(s), no index %d", len(s.doc.Blocks), index)
	}
	if s.doc.Blocks[index].ID == s.selected {
		s.selected = ""
	}
	s.doc.Blocks = slices.Delete(s.doc.Blocks, index, index+1)
	s.changed()
	return nil
}

// MoveBlock moves the block at from so it ends up at index to. Selection
// follows the block, it is keyed by ID.
func (s *Store) MoveBlock(from, to int) error {
	for _, i := range []int{from, to} {
		if i < 0 || i >= len(s.doc.Blocks) {
			return fmt.Errorf("page has %d block(s), no index %d", len(s.doc.Blocks), i)
		}
	}
	if from == to {
		return nil
	}
	b := s.doc.Blocks[from]
	s.doc.Blocks = slices.Delete(s.doc.Blocks, from, from+1)
	s.doc.Blocks = slices.Insert(s.doc.Blocks, to, b)
	s.changed()
	return nil
}

// UpdateProp is the single block-prop entry point: it patches one prop of
// the block with the given ID through SetProp and returns the renormalized
// result.
func (s *Store) UpdateProp(id, key string, value any) (schema.Block, error) {
	i := s.indexOf(id)
	if i < 0 {
		return schema.Block{}, fmt.Errorf("no block with id %q", id)
	}
	s.doc.Blocks[i] = SetProp(s.reg, s.doc.Blocks[i], key, value)
	s.changed()
	return s.doc.Blocks[i].Clone(), nil
}

// SetTheme replaces the page theme, the theme-level mutation entry point.
func (s *Store) SetTheme(t styles.Theme) {
	s.doc.Theme = styles.NormalizeTheme(t)
	s.changed()
}

// ResetThemeBody restores the body cascade root to full inherit in one
// update.
func (s *Store) ResetThemeBody() {
	s.doc.Theme.Body = styles.StyleValue{}
	s.changed()
}

// ResetThemeSections restores the section cascade root to full inherit.
func (s *Store) ResetThemeSections() {
	s.doc.Theme.Sections = styles.StyleValue{}
	s.changed()
}

// BeginInlineEdit pauses debounced refreshes while content is edited
// directly on the preview surface.
func (s *Store) BeginInlineEdit() {
	if s.inline {
		return
	}
	s.inline = true
	if s.preview != nil {
		s.preview.Suspend()
	}
}

// EndInlineEdit resumes refreshes. When edits arrived while suspended one
// refresh fires immediately to resynchronize the surface.
func (s *Store) EndInlineEdit() {
	if !s.inline {
		return
	}
	s.inline = false
	if s.preview != nil {
		s.preview.Resume()
	}
}

// InlineEditing reports whether an inline edit is in progress.
func (s *Store) InlineEditing() bool {
	return s.inline
}

func (s *Store) changed() {
	s.dirty = true
	if s.preview != nil {
		s.preview.Schedule(s.doc)
	}
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.doc.Blocks, func(b schema.Block) bool { return b.ID == id })
}
