package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"pbc/schema"
	"pbc/snapshot"
	"pbc/state"
)

func openSnapshots(env *state.LocalEnv) (*snapshot.Store, error) {
	store, err := snapshot.Open(env.Cfg.Snapshot, env.Log)
	if err != nil {
		return nil, fmt.Errorf("unable to open snapshot database: %w", err)
	}
	return store, nil
}

func runSnapshotPut(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)

	src, err := sourceArgument(cmd)
	if err != nil {
		return err
	}

	doc, err := loadDocument(schema.NewRegistry(), src)
	if err != nil {
		return err
	}

	store, err := openSnapshots(env)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, store.Close())
	}()

	entry, err := store.Put(ctx, doc.Slug, doc)
	if err != nil {
		return err
	}
	env.Log.Info("Stored snapshot", zap.String("slug", entry.Slug), zap.String("id", entry.ID), zap.Time("taken", entry.TakenAt))
	return nil
}

func runSnapshotLatest(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)
	env.Overwrite = true // recovery output is explicit user intent

	pageSlug := cmd.Args().Get(0)
	if pageSlug == "" {
		return fmt.Errorf("no page slug specified")
	}

	store, err := openSnapshots(env)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, store.Close())
	}()

	doc, entry, err := store.Latest(ctx, pageSlug)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc.Serialize(), "", "  ")
	if err != nil {
		return fmt.Errorf("unable to serialize recovered document: %w", err)
	}
	data = append(data, '\n')

	env.Log.Info("Recovered snapshot", zap.String("slug", entry.Slug), zap.String("id", entry.ID), zap.Time("taken", entry.TakenAt))
	return writeOutput(env, cmd.String("output"), data)
}

func runSnapshotList(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)

	pageSlug := cmd.Args().Get(0)
	if pageSlug == "" {
		return fmt.Errorf("no page slug specified")
	}

	store, err := openSnapshots(env)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, store.Close())
	}()

	entries, err := store.List(ctx, pageSlug, int(cmd.Int("limit")))
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		env.Log.Info("No snapshots stored", zap.String("slug", pageSlug))
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TAKEN\tID")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\n", e.TakenAt.Format(time.RFC3339), e.ID)
	}
	return w.Flush()
}

func runSnapshotPrune(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)

	pageSlug := cmd.Args().Get(0)
	if pageSlug == "" {
		return fmt.Errorf("no page slug specified")
	}

	store, err := openSnapshots(env)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, store.Close())
	}()

	dropped, err := store.Prune(ctx, pageSlug, int(cmd.Int("keep")))
	if err != nil {
		return err
	}
	env.Log.Info("Pruned snapshots", zap.String("slug", pageSlug), zap.Int("dropped", dropped))
	return nil
}
