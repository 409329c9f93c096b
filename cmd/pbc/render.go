package main

import (
	"context"
	"fmt"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"pbc/archive"
	"pbc/assets"
	"pbc/document"
	"pbc/export"
	"pbc/preview"
	"pbc/schema"
	"pbc/state"
)

// logSink routes scheduler outcomes into the program log. The CLI drives
// renders through Flush, so results are handled at the call site and the
// sink only has to keep the record straight.
type logSink struct {
	log *zap.Logger
}

func (s logSink) PreviewReady(res preview.Result) {
	s.log.Debug("Preview rendered", zap.Int("size", len(res.HTML)))
}

func (s logSink) PreviewFailed(err error) {
	s.log.Debug("Preview failed", zap.Error(err))
}

// render performs a one-shot round trip through the rendering service.
func render(ctx context.Context, env *state.LocalEnv, src string) (*renderOutcome, error) {
	reg := schema.NewRegistry()
	doc, err := loadDocument(reg, src)
	if err != nil {
		return nil, err
	}

	sched := preview.NewScheduler(env.Cfg.Preview, env.Client, logSink{log: env.Log}, env.Log)
	defer sched.Close()

	sched.Schedule(doc)
	res, err := sched.Flush(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to render page '%s': %w", doc.Slug, err)
	}
	return &renderOutcome{doc: doc, res: res}, nil
}

type renderOutcome struct {
	doc *document.PageDocument
	res preview.Result
}

func runPreview(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	env.Overwrite = cmd.Bool("overwrite")

	src, err := sourceArgument(cmd)
	if err != nil {
		return err
	}

	out, err := render(ctx, env, src)
	if err != nil {
		return err
	}

	dst := cmd.String("output")
	if dst == "" {
		dst = replaceExt(src, ".html")
	}
	env.Log.Info("Writing rendered page", zap.String("slug", out.doc.Slug), zap.String("destination", dst))
	return writeOutput(env, dst, []byte(out.res.HTML))
}

func runExport(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	env.Overwrite = cmd.Bool("overwrite")

	src, err := sourceArgument(cmd)
	if err != nil {
		return err
	}

	out, err := render(ctx, env, src)
	if err != nil {
		return err
	}

	lib, err := assets.NewClient(env.Cfg.Assets, env.Client, env.Log)
	if err != nil {
		return fmt.Errorf("unable to prepare asset client: %w", err)
	}

	dst := cmd.Args().Get(1)
	if dst == "" {
		dst = export.OutputPath(out.doc, src, env)
	}

	if err := export.Build(ctx, env, lib, out.doc, out.res, dst); err != nil {
		return err
	}

	// read the finished bundle back so damaged output never goes unnoticed
	count, err := archive.Verify(dst)
	if err != nil {
		return fmt.Errorf("bundle '%s' failed verification: %w", dst, err)
	}
	env.Log.Info("Exported page bundle", zap.String("slug", out.doc.Slug), zap.String("destination", dst), zap.Int("entries", count))
	return nil
}
