package editor

import (
	"fmt"
	"slices"

	"pbc/schema"
	"pbc/styles"
)

// SetBaseStyle replaces a block's base style in one update. The value is
// normalized on the way in; the zero value sets every field to inherit.
func SetBaseStyle(reg *schema.Registry, b schema.Block, v styles.StyleValue) schema.Block {
	return applyPatch(reg, b, map[string]any{"style": styles.Normalize(v).Map()})
}

// ResetBaseStyle removes the block's base style entirely, so the block
// inherits the theme at every field.
func ResetBaseStyle(reg *schema.Registry, b schema.Block) schema.Block {
	out := b.Clone()
	delete(out.Props, "style")
	return reg.NormalizeBlock(out)
}

// SetStyleTarget replaces one declared style target of the block. Keys the
// blueprint does not declare are an error.
func SetStyleTarget(reg *schema.Registry, b schema.Block, key string, v styles.StyleValue) (schema.Block, error) {
	if err := styleTargetDeclared(reg, b, key); err != nil {
		return b, err
	}
	targets, _ := b.Props["style_targets"].(map[string]any)
	out := make(map[string]any, len(targets)+1)
	for k, tv := range targets {
		out[k] = tv
	}
	out[key] = styles.Normalize(v).Map()
	return applyPatch(reg, b, map[string]any{"style_targets": out}), nil
}

// ResetStyleTarget restores every field of one target to the inherit state
// in a single update.
func ResetStyleTarget(reg *schema.Registry, b schema.Block, key string) (schema.Block, error) {
	if err := styleTargetDeclared(reg, b, key); err != nil {
		return b, err
	}
	targets, _ := b.Props["style_targets"].(map[string]any)
	out := make(map[string]any, len(targets))
	for k, tv := range targets {
		if k == key {
			continue
		}
		out[k] = tv
	}
	return applyPatch(reg, b, map[string]any{"style_targets": out}), nil
}

func styleTargetDeclared(reg *schema.Registry, b schema.Block, key string) error {
	bp, ok := reg.Blueprint(b.Type)
	if !ok {
		return fmt.Errorf("unknown block type %q", b.Type)
	}
	if !slices.ContainsFunc(bp.StyleTargets, func(t schema.StyleTarget) bool { return t.Key == key }) {
		return fmt.Errorf("block type %q has no style target %q", b.Type, key)
	}
	return nil
}
