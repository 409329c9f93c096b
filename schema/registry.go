package schema

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"pbc/styles"
)

// Registry holds the blueprints for every known block type and derives
// normalized blocks from untrusted data.
type Registry struct {
	blueprints map[string]Blueprint
	types      []string
}

// NewRegistry returns a registry with the built-in block catalogue.
func NewRegistry() *Registry {
	r := &Registry{blueprints: make(map[string]Blueprint, len(builtinBlueprints))}
	for _, bp := range builtinBlueprints {
		r.blueprints[bp.Type] = bp
		r.types = append(r.types, bp.Type)
	}
	slices.Sort(r.types)
	return r
}

// Blueprint returns the blueprint for a block type.
func (r *Registry) Blueprint(blockType string) (Blueprint, bool) {
	bp, ok := r.blueprints[blockType]
	return bp, ok
}

// Types returns all registered block types, sorted.
func (r *Registry) Types() []string {
	return slices.Clone(r.types)
}

// NewBlock creates a fresh block of the given type with a new ID and
// deep-copied defaults.
func (r *Registry) NewBlock(blockType string) (Block, error) {
	bp, ok := r.blueprints[blockType]
	if !ok {
		return Block{}, fmt.Errorf("unknown block type %q", blockType)
	}
	return Block{
		ID:    uuid.NewString(),
		Type:  blockType,
		Props: copyMap(bp.Defaults),
	}, nil
}

// NormalizeBlock returns a normalized copy of the block. It is total (never
// errors, unknown block types come back unchanged) and idempotent. The input
// block is never mutated.
//
// For known types: missing or null props fill from the blueprint defaults,
// present values coerce per field type, and props the blueprint does not
// declare are preserved as-is. Navlinks fields are the exception - they are
// tri-state, so a missing key stays missing and null stays null.
func (r *Registry) NormalizeBlock(b Block) Block {
	bp, ok := r.blueprints[b.Type]
	if !ok {
		return b
	}

	props := copyMap(b.Props)
	if props == nil {
		props = make(map[string]any, len(bp.Defaults))
	}

	for _, f := range bp.Fields {
		if f.Type == FieldTypeNavlinks {
			if raw, present := props[f.Key]; present && raw != nil {
				props[f.Key] = normalizeNavlinks(raw)
			}
			continue
		}

		raw, present := props[f.Key]
		if !present || raw == nil {
			props[f.Key] = copyValue(bp.Defaults[f.Key])
			continue
		}
		props[f.Key] = normalizeField(f, raw, bp.Defaults[f.Key])
	}

	// Defaults without a field spec (render-state seeds) still fill in.
	for k, v := range bp.Defaults {
		if cur, present := props[k]; !present || cur == nil {
			props[k] = copyValue(v)
		}
	}

	// The style props carry cascade values, not blueprint fields. A present
	// base style is always a well-formed style object; style targets keep
	// only the keys the blueprint declares. An absent key means full inherit
	// and stays absent.
	if raw, present := props["style"]; present {
		m, _ := raw.(map[string]any)
		props["style"] = styles.Normalize(styles.FromMap(m)).Map()
	}
	if raw, present := props["style_targets"]; present {
		if targets := normalizeStyleTargets(bp, raw); len(targets) > 0 {
			props["style_targets"] = targets
		} else {
			delete(props, "style_targets")
		}
	}

	out := b
	out.Props = props
	return out
}

// normalizeStyleTargets keeps only the override keys the blueprint declares,
// each value normalized. Undeclared keys and non-object values drop.
func normalizeStyleTargets(bp Blueprint, raw any) map[string]any {
	m, _ := raw.(map[string]any)
	out := make(map[string]any, len(bp.StyleTargets))
	for _, st := range bp.StyleTargets {
		tv, ok := m[st.Key].(map[string]any)
		if !ok {
			continue
		}
		out[st.Key] = styles.Normalize(styles.FromMap(tv)).Map()
	}
	return out
}

// normalizeField coerces one prop value per its field type, falling back to
// the default when the value cannot be coerced losslessly.
func normalizeField(f FieldSpec, raw, def any) any {
	switch f.Type {
	case FieldTypeText, FieldTypeUrl, FieldTypeTextarea:
		if s, ok := stringValue(raw); ok {
			return s
		}
		return copyValue(def)

	case FieldTypeNumber, FieldTypeRange:
		n, ok := numberValue(raw)
		if !ok {
			if d, isNum := numberValue(def); isNum {
				return d
			}
			return copyValue(def)
		}
		return clampNumber(f, n)

	case FieldTypeToggle:
		if b, ok := boolValue(raw); ok {
			return b
		}
		return copyValue(def)

	case FieldTypeSelect:
		if s, ok := raw.(string); ok {
			for _, opt := range f.Options {
				if opt.Value == s {
					return s
				}
			}
		}
		return copyValue(def)

	case FieldTypeSluglist:
		if items, ok := slugListValue(raw); ok {
			return items
		}
		return copyValue(def)

	case FieldTypeCheckboxes:
		items, ok := raw.([]any)
		if !ok {
			return copyValue(def)
		}
		valid := make(map[string]bool, len(f.Options))
		for _, opt := range f.Options {
			valid[opt.Value] = true
		}
		out := make([]any, 0, len(items))
		seen := make(map[string]bool, len(items))
		for _, item := range items {
			s, ok := item.(string)
			if !ok || !valid[s] || seen[s] {
				continue
			}
			out = append(out, s)
			seen[s] = true
		}
		return out

	case FieldTypeList:
		items, ok := raw.([]any)
		if !ok {
			return copyValue(def)
		}
		out := make([]any, 0, len(items))
		for _, item := range items {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			out = append(out, normalizeListItem(f, m))
		}
		return out

	case FieldTypeAsset:
		switch raw.(type) {
		case string, map[string]any:
			return copyValue(raw)
		}
		return copyValue(def)

	default:
		return copyValue(raw)
	}
}

// normalizeListItem normalizes one list entry against the field's item schema.
// Unknown item keys are preserved; declared keys fill from ItemDefaults.
func normalizeListItem(f FieldSpec, item map[string]any) map[string]any {
	out := copyMap(item)
	for _, inner := range f.ItemFields {
		raw, present := out[inner.Key]
		if !present || raw == nil {
			out[inner.Key] = copyValue(f.ItemDefaults[inner.Key])
			continue
		}
		out[inner.Key] = normalizeField(inner, raw, f.ItemDefaults[inner.Key])
	}
	for k, v := range f.ItemDefaults {
		if cur, present := out[k]; !present || cur == nil {
			out[k] = copyValue(v)
		}
	}
	return out
}

// normalizeNavlinks normalizes a non-null navlinks value: an ordered list of
// page slugs. Entries are slugified, the reserved "__login" marker resolves
// to the login slug, empties and duplicates drop. Anything that is not a
// list comes back as an explicit empty selection.
func normalizeNavlinks(raw any) []any {
	items, ok := raw.([]any)
	if !ok {
		return []any{}
	}
	out := make([]any, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		norm := slug.Make(strings.TrimSpace(s))
		if norm == "" {
			norm = strings.TrimSpace(s)
		}
		if strings.TrimSpace(s) == "__login" {
			norm = "login"
		}
		if norm == "" || seen[norm] {
			continue
		}
		out = append(out, norm)
		seen[norm] = true
	}
	return out
}

// clampNumber applies the field's Min/Max bounds and snaps to Step.
func clampNumber(f FieldSpec, n float64) float64 {
	if f.Step != nil && *f.Step > 0 {
		anchor := 0.0
		if f.Min != nil {
			anchor = *f.Min
		}
		n = anchor + math.Round((n-anchor)/(*f.Step))*(*f.Step)
	}
	if f.Min != nil && n < *f.Min {
		n = *f.Min
	}
	if f.Max != nil && n > *f.Max {
		n = *f.Max
	}
	return n
}

// stringValue coerces scalars that have an obvious string form.
func stringValue(raw any) (string, bool) {
	switch v := raw.(type) {
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	default:
		return "", false
	}
}

// numberValue coerces values that carry a number losslessly. Bools never do.
func numberValue(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// boolValue coerces values that carry a bool losslessly. Numbers never do.
func boolValue(raw any) (bool, bool) {
	switch v := raw.(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return false, false
}

// slugListValue coerces sluglist values: lists keep their string entries,
// a bare string splits on commas.
func slugListValue(raw any) ([]any, bool) {
	switch v := raw.(type) {
	case []any:
		out := make([]any, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				continue
			}
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out, true
	case string:
		out := make([]any, 0, 4)
		for part := range strings.SplitSeq(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, true
	default:
		return nil, false
	}
}
