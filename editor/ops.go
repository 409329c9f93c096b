// Package editor is the edit controller around block props: the single
// prop-update entry point every builder mutation funnels through, inline
// rich-text commit sessions, and the structured sub-editor operations for
// list, checkboxes, sluglist and navlinks fields. All operations are
// copy-on-write - the input block is never mutated and results come back
// renormalized.
package editor

import (
	"fmt"
	"slices"

	"pbc/schema"
)

// SetProp patches a single prop and returns the renormalized block. It is
// total: unknown keys become free-form props the blueprint preserves.
//
// Setting logo_text on a block whose blueprint seeds logo_text_auto also
// flips logo_text_auto off in the same patch, so a typed brand text stops
// tracking the site name.
func SetProp(reg *schema.Registry, b schema.Block, key string, value any) schema.Block {
	patch := map[string]any{key: value}
	if key == "logo_text" {
		if bp, ok := reg.Blueprint(b.Type); ok {
			if _, auto := bp.Defaults["logo_text_auto"]; auto {
				patch["logo_text_auto"] = false
			}
		}
	}
	return applyPatch(reg, b, patch)
}

// ListAppend appends one item to a list field: the blueprint's item
// defaults overlaid with the given overrides. On error the input block
// comes back unchanged.
func ListAppend(reg *schema.Registry, b schema.Block, key string, overrides map[string]any) (schema.Block, error) {
	f, err := fieldOfType(reg, b, key, schema.FieldTypeList)
	if err != nil {
		return b, err
	}
	item := make(map[string]any, len(f.ItemDefaults)+len(overrides))
	for k, v := range f.ItemDefaults {
		item[k] = v
	}
	for k, v := range overrides {
		item[k] = v
	}
	items := append(slices.Clone(listItems(b, key)), item)
	return applyPatch(reg, b, map[string]any{key: items}), nil
}

// ListRemove drops the item at index; the remainder keeps its order.
func ListRemove(reg *schema.Registry, b schema.Block, key string, index int) (schema.Block, error) {
	if _, err := fieldOfType(reg, b, key, schema.FieldTypeList); err != nil {
		return b, err
	}
	items := listItems(b, key)
	if index < 0 || index >= len(items) {
		return b, fmt.Errorf("list %q has %d item(s), no index %d", key, len(items), index)
	}
	out := slices.Delete(slices.Clone(items), index, index+1)
	return applyPatch(reg, b, map[string]any{key: out}), nil
}

// ListMove moves the item at from so it ends up at index to.
func ListMove(reg *schema.Registry, b schema.Block, key string, from, to int) (schema.Block, error) {
	if _, err := fieldOfType(reg, b, key, schema.FieldTypeList); err != nil {
		return b, err
	}
	items := listItems(b, key)
	for _, i := range []int{from, to} {
		if i < 0 || i >= len(items) {
			return b, fmt.Errorf("list %q has %d item(s), no index %d", key, len(items), i)
		}
	}
	out := slices.Clone(items)
	item := out[from]
	out = slices.Delete(out, from, from+1)
	out = slices.Insert(out, to, item)
	return applyPatch(reg, b, map[string]any{key: out}), nil
}

// CheckboxToggle flips one option's membership in a checkboxes field. The
// stored selection always follows the blueprint's option order.
func CheckboxToggle(reg *schema.Registry, b schema.Block, key, option string) (schema.Block, error) {
	f, err := fieldOfType(reg, b, key, schema.FieldTypeCheckboxes)
	if err != nil {
		return b, err
	}
	if !slices.ContainsFunc(f.Options, func(o schema.Option) bool { return o.Value == option }) {
		return b, fmt.Errorf("field %q has no option %q", key, option)
	}
	selected := make(map[string]bool, len(f.Options))
	for _, item := range listItems(b, key) {
		if s, ok := item.(string); ok {
			selected[s] = true
		}
	}
	selected[option] = !selected[option]
	out := make([]any, 0, len(f.Options))
	for _, opt := range f.Options {
		if selected[opt.Value] {
			out = append(out, opt.Value)
		}
	}
	return applyPatch(reg, b, map[string]any{key: out}), nil
}

// OptionState is one renderable option of a checkboxes field.
type OptionState struct {
	Option   schema.Option
	Selected bool
	Disabled bool
}

// CheckboxOptions lists a checkboxes field's options in blueprint order
// with their current selection and availability. Options the backed
// predicate rejects render disabled; a nil predicate leaves all enabled.
// Options whose backing site value is unset stay visible - the operator
// sees what could be shown once the value is filled in.
func CheckboxOptions(reg *schema.Registry, b schema.Block, key string, backed func(option string) bool) ([]OptionState, error) {
	f, err := fieldOfType(reg, b, key, schema.FieldTypeCheckboxes)
	if err != nil {
		return nil, err
	}
	selected := make(map[string]bool, len(f.Options))
	for _, item := range listItems(b, key) {
		if s, ok := item.(string); ok {
			selected[s] = true
		}
	}
	out := make([]OptionState, 0, len(f.Options))
	for _, opt := range f.Options {
		out = append(out, OptionState{
			Option:   opt,
			Selected: selected[opt.Value],
			Disabled: backed != nil && !backed(opt.Value),
		})
	}
	return out, nil
}

// CheckboxSelectAll replaces the selection with every enabled option, in
// blueprint order. Disabled options stay out of the selection.
func CheckboxSelectAll(reg *schema.Registry, b schema.Block, key string, backed func(option string) bool) (schema.Block, error) {
	f, err := fieldOfType(reg, b, key, schema.FieldTypeCheckboxes)
	if err != nil {
		return b, err
	}
	out := make([]any, 0, len(f.Options))
	for _, opt := range f.Options {
		if backed != nil && !backed(opt.Value) {
			continue
		}
		out = append(out, opt.Value)
	}
	return applyPatch(reg, b, map[string]any{key: out}), nil
}

// SlugListSet replaces a sluglist field's value with the given entries.
func SlugListSet(reg *schema.Registry, b schema.Block, key string, slugs []string) (schema.Block, error) {
	if _, err := fieldOfType(reg, b, key, schema.FieldTypeSluglist); err != nil {
		return b, err
	}
	return applyPatch(reg, b, map[string]any{key: anyStrings(slugs)}), nil
}

// NavSet replaces a navlinks selection with an explicit ordered choice.
// Entries normalize like every navlinks value: slugified, the reserved
// __login marker resolving to login, empties and duplicates dropping.
func NavSet(reg *schema.Registry, b schema.Block, key string, slugs []string) (schema.Block, error) {
	if _, err := fieldOfType(reg, b, key, schema.FieldTypeNavlinks); err != nil {
		return b, err
	}
	return applyPatch(reg, b, map[string]any{key: anyStrings(slugs)}), nil
}

// NavClear records an explicit empty selection: render no links at all.
func NavClear(reg *schema.Registry, b schema.Block, key string) (schema.Block, error) {
	if _, err := fieldOfType(reg, b, key, schema.FieldTypeNavlinks); err != nil {
		return b, err
	}
	return applyPatch(reg, b, map[string]any{key: []any{}}), nil
}

// NavReset removes the selection entirely, so links derive from the page
// tree again.
func NavReset(reg *schema.Registry, b schema.Block, key string) (schema.Block, error) {
	if _, err := fieldOfType(reg, b, key, schema.FieldTypeNavlinks); err != nil {
		return b, err
	}
	out := b.Clone()
	delete(out.Props, key)
	return reg.NormalizeBlock(out), nil
}

func applyPatch(reg *schema.Registry, b schema.Block, patch map[string]any) schema.Block {
	out := b.Clone()
	if out.Props == nil {
		out.Props = make(map[string]any, len(patch))
	}
	for k, v := range patch {
		out.Props[k] = v
	}
	return reg.NormalizeBlock(out)
}

func fieldOfType(reg *schema.Registry, b schema.Block, key string, want schema.FieldType) (schema.FieldSpec, error) {
	bp, ok := reg.Blueprint(b.Type)
	if !ok {
		return schema.FieldSpec{}, fmt.Errorf("unknown block type %q", b.Type)
	}
	f, ok := bp.Field(key)
	if !ok {
		return schema.FieldSpec{}, fmt.Errorf("block type %q has no field %q", b.Type, key)
	}
	if f.Type != want {
		return schema.FieldSpec{}, fmt.Errorf("field %q of %q is %s, not %s", key, b.Type, f.Type, want)
	}
	return f, nil
}

func listItems(b schema.Block, key string) []any {
	items, _ := b.Props[key].([]any)
	return items
}

func anyStrings(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
