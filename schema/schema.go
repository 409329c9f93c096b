// Package schema is the static catalogue of block types the page builder
// understands. Each block type has a Blueprint: complete default props, an
// ordered field list describing how the builder edits them, and optional
// style targets. The registry normalizes untrusted block data against the
// blueprints - totally and idempotently, never erroring.
package schema

// Specification of a builder field's editing widget and value shape.
// ENUM(text, url, textarea, number, range, toggle, select, sluglist, checkboxes, list, asset, navlinks)
type FieldType string

// Option is one selectable value for select and checkboxes fields.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Condition disables a field in the builder while another prop holds the
// given value. It is a render-state hint only - normalization ignores it.
type Condition struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// StyleTarget names a block sub-element that carries its own style override
// (e.g. a section title). Keys index into the block's style_targets prop.
type StyleTarget struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// FieldSpec describes one editable prop of a block type.
type FieldSpec struct {
	Key   string    `json:"key"`
	Label string    `json:"label"`
	Type  FieldType `json:"type"`

	// Numeric constraints for number and range fields.
	Min  *float64 `json:"min,omitempty"`
	Max  *float64 `json:"max,omitempty"`
	Step *float64 `json:"step,omitempty"`

	// Options for select and checkboxes fields.
	Options []Option `json:"options,omitempty"`

	// Item schema for list fields.
	ItemFields   []FieldSpec    `json:"item_fields,omitempty"`
	ItemDefaults map[string]any `json:"item_defaults,omitempty"`

	// Accepted kinds and upload permission for asset fields.
	AssetKinds  []string `json:"asset_kinds,omitempty"`
	AllowUpload bool     `json:"allow_upload,omitempty"`

	DisabledWhen *Condition `json:"disabled_when,omitempty"`
	Placeholder  string     `json:"placeholder,omitempty"`
	Help         string     `json:"help,omitempty"`
}

// Blueprint is the immutable schema for one block type.
type Blueprint struct {
	Type         string         `json:"type"`
	Label        string         `json:"label"`
	Defaults     map[string]any `json:"defaults"`
	Fields       []FieldSpec    `json:"fields"`
	StyleTargets []StyleTarget  `json:"style_targets,omitempty"`
}

// Field returns the field spec for key, if the blueprint declares one.
func (b Blueprint) Field(key string) (FieldSpec, bool) {
	for _, f := range b.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// Block is one content unit on a page: a type, a stable ID and a free-form
// property map whose shape the type's blueprint governs.
type Block struct {
	ID    string         `json:"id"`
	Type  string         `json:"type"`
	Props map[string]any `json:"props"`
}

// Clone returns a deep copy of the block. Mutating the copy's props never
// affects the original.
func (b Block) Clone() Block {
	out := b
	out.Props = copyMap(b.Props)
	return out
}

// copyValue deep-copies JSON-shaped values (maps, slices, scalars).
func copyValue(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		return copyMap(tv)
	case []any:
		out := make([]any, len(tv))
		for i, item := range tv {
			out[i] = copyValue(item)
		}
		return out
	default:
		return v
	}
}

func copyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}
