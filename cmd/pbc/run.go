package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"pbc/document"
	"pbc/schema"
	"pbc/state"
)

// loadDocument reads a page document in the authoring API shape and applies
// it onto a fresh draft, so the result is always normalized and validated.
func loadDocument(reg *schema.Registry, path string) (*document.PageDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read page document: %w", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("page document '%s' is not valid JSON: %w", path, err)
	}
	doc := document.New("")
	if err := document.ApplyPayload(reg, doc, payload); err != nil {
		return nil, fmt.Errorf("page document '%s' is malformed: %w", path, err)
	}
	return doc, nil
}

// writeOutput stores data at path honoring the overwrite setting; empty path
// means STDOUT.
func writeOutput(env *state.LocalEnv, path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if !env.Overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("destination '%s' already exists, use --overwrite", path)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("unable to write destination '%s': %w", path, err)
	}
	return nil
}

func sourceArgument(cmd *cli.Command) (string, error) {
	src := cmd.Args().Get(0)
	if src == "" {
		return "", fmt.Errorf("no source document specified")
	}
	return src, nil
}

func runNormalize(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	env.Overwrite = cmd.Bool("overwrite")

	src, err := sourceArgument(cmd)
	if err != nil {
		return err
	}

	reg := schema.NewRegistry()
	doc, err := loadDocument(reg, src)
	if err != nil {
		return err
	}

	if cmd.Bool("tree") {
		return writeOutput(env, cmd.Args().Get(1), []byte(document.Dump(reg, doc)))
	}

	data, err := json.MarshalIndent(doc.Serialize(), "", "  ")
	if err != nil {
		return fmt.Errorf("unable to serialize normalized document: %w", err)
	}
	data = append(data, '\n')

	dst := cmd.Args().Get(1)
	if dst != "" {
		env.Log.Info("Writing normalized document", zap.String("source", src), zap.String("destination", dst))
	}
	return writeOutput(env, dst, data)
}

// replaceExt swaps the extension of path for ext (with dot).
func replaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
