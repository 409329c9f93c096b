package editor

import (
	"pbc/sanitize"
	"pbc/schema"
)

// Session binds one rich-text prop of a block for inline editing. The live
// editing surface hands dirty markup to Commit; the session owns sanitizing
// it and deciding whether anything actually changed.
type Session struct {
	reg   *schema.Registry
	block schema.Block
	key   string

	// OnChange, when set, fires with the patched block after every commit
	// that changed content. Callers hook their preview scheduling here.
	OnChange func(schema.Block)

	// Fonts, when set, records registry font families referenced by
	// committed content.
	Fonts *UsageTracker
}

// NewSession starts an edit session over a copy of the block.
func NewSession(reg *schema.Registry, b schema.Block, key string) *Session {
	return &Session{reg: reg, block: b.Clone(), key: key}
}

// Block returns the session's current view of the block.
func (s *Session) Block() schema.Block {
	return s.block.Clone()
}

// Commit sanitizes dirty markup and, when the result differs from the
// stored value, patches the block copy-on-write. Reports whether the block
// changed; an unchanged commit is a complete no-op.
func (s *Session) Commit(dirty string) (schema.Block, bool) {
	clean := sanitize.Fragment(dirty)
	cur, _ := s.block.Props[s.key].(string)
	if clean == cur {
		return s.block.Clone(), false
	}
	s.block = SetProp(s.reg, s.block, s.key, clean)
	if s.Fonts != nil {
		s.Fonts.Record(s.block.ID, s.key, clean)
	}
	if s.OnChange != nil {
		s.OnChange(s.block.Clone())
	}
	return s.block.Clone(), true
}

// widthTolerance is how close a resized width may come to the natural width
// before the override is considered noise.
const widthTolerance = 4

// WidthOverride resolves an image resize gesture to the width override that
// should persist. The requested width clamps to [minWidth, maxWidth]
// (maxWidth <= 0 means unbounded). When the result lands within a few
// pixels of the image's natural width the override clears instead, reported
// by ok=false, so near-default values never accumulate.
func WidthOverride(natural, requested, minWidth, maxWidth int) (width int, ok bool) {
	w := requested
	if w < minWidth {
		w = minWidth
	}
	if maxWidth > 0 && w > maxWidth {
		w = maxWidth
	}
	if natural > 0 {
		d := w - natural
		if d < 0 {
			d = -d
		}
		if d <= widthTolerance {
			return 0, false
		}
	}
	return w, true
}
