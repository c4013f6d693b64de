// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ik5/audslice/ckptstore"
	"github.com/ik5/audslice/formats/wav"
	"github.com/ik5/audslice/sampling"
)

type options struct {
	cfg sampling.Config

	steps        int64
	saveInterval int64
	keep         int
	db           string
	resumeStep   int64

	progressInterval int64
	dumpDir          string
	dumpEvery        int64
	logLevel         slog.Level
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var (
		o        options
		logLevel string
	)

	fs := flag.NewFlagSet("audslice", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&o.cfg.CatalogPath, "catalog", "", "tab-separated `file` of id/path lines (required)")
	fs.IntVar(&o.cfg.WindowCount, "n-win", 1000, "output windows per slice")
	fs.IntVar(&o.cfg.ReceptiveField, "rf", 1021, "receptive field in samples")
	fs.IntVar(&o.cfg.BatchSize, "batch", 8, "slices per batch")
	fs.IntVar(&o.cfg.SampleRate, "rate", 16000, "target sample rate in Hz")
	fs.Float64Var(&o.cfg.FracUsePerm, "frac", 0.1, "share of each buffer's slice positions drawn before reloading, in (0, 1]")
	fs.Int64Var(&o.cfg.BufferTimesteps, "buf", 10_000_000, "requested buffer size in samples")
	fs.Uint64Var(&o.cfg.Seed, "seed", 1, "random seed")

	fs.Int64Var(&o.steps, "steps", 1000, "run until this step")
	fs.Int64Var(&o.saveInterval, "save-interval", 100, "save a checkpoint every N steps; 0 disables")
	fs.IntVar(&o.keep, "keep", 0, "keep only the newest N checkpoints; 0 keeps all")
	fs.StringVar(&o.db, "db", "", "SQLite checkpoint `database`")
	fs.Int64Var(&o.resumeStep, "resume-step", 0, "resume from the checkpoint of this step; -1 for the latest")

	fs.Int64Var(&o.progressInterval, "progress-interval", 100, "log progress every N steps; 0 disables")
	fs.StringVar(&o.dumpDir, "dump", "", "write batches as WAV files into `dir`")
	fs.Int64Var(&o.dumpEvery, "dump-every", 0, "dump every N steps; 0 dumps only the first batch of the run")
	fs.StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		return o, err
	}

	switch {
	case fs.NArg() > 0:
		return o, fmt.Errorf("unexpected arguments: %v", fs.Args())
	case o.cfg.CatalogPath == "":
		return o, errors.New("-catalog is required")
	case o.resumeStep < -1:
		return o, fmt.Errorf("-resume-step %d: want a step or -1", o.resumeStep)
	case o.resumeStep != 0 && o.db == "":
		return o, errors.New("-resume-step needs -db")
	case o.saveInterval < 0 || o.progressInterval < 0 || o.dumpEvery < 0 || o.keep < 0:
		return o, errors.New("intervals and -keep must not be negative")
	}

	if err := o.logLevel.UnmarshalText([]byte(logLevel)); err != nil {
		return o, fmt.Errorf("-log-level: %w", err)
	}
	return o, nil
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: o.logLevel}))

	p, err := sampling.NewFromFile(o.cfg, sampling.WithLogger(log))
	if err != nil {
		return err
	}

	var store *ckptstore.Store
	if o.db != "" {
		if store, err = ckptstore.Open(o.db); err != nil {
			return err
		}
		defer store.Close()
	}

	var step int64
	if o.resumeStep != 0 {
		rec, err := loadResume(ctx, store, o.resumeStep)
		if err != nil {
			return err
		}
		if err := p.Restore(rec.Checkpoint); err != nil {
			return fmt.Errorf("resume step %d: %w", rec.Step, err)
		}
		step = rec.Step
	}

	log.Info("sampling",
		"catalog", o.cfg.CatalogPath,
		"slice_len", o.cfg.SliceLen(),
		"capacity", p.Capacity(),
		"slices_per_buffer", p.SlicesPerBuffer(),
		"from_step", step,
		"to_step", o.steps)

	first := step + 1
	for step < o.steps {
		if err := ctx.Err(); err != nil {
			log.Info("interrupted", "step", step)
			return nil
		}

		b, err := p.Next()
		if err != nil {
			return fmt.Errorf("step %d: %w", step+1, err)
		}
		step++

		if o.dumpDir != "" && (step == first || (o.dumpEvery > 0 && step%o.dumpEvery == 0)) {
			if err := dumpBatch(o.dumpDir, step, o.cfg.SampleRate, b); err != nil {
				return err
			}
		}

		if store != nil && o.saveInterval > 0 && step%o.saveInterval == 0 {
			if err := saveCheckpoint(ctx, store, p, step, o.keep); err != nil {
				return err
			}
			log.Debug("checkpoint saved", "step", step)
		}

		if o.progressInterval > 0 && step%o.progressInterval == 0 {
			st := p.Stats()
			log.Info("progress",
				"step", step,
				"epoch", st.Epoch,
				"buffers", st.Buffers,
				"slices", st.Slices)
		}
	}

	log.Info("done", "step", step, "epoch", p.Stats().Epoch)
	return nil
}

func loadResume(ctx context.Context, store *ckptstore.Store, step int64) (ckptstore.Record, error) {
	if step == -1 {
		rec, err := store.Latest(ctx)
		if err != nil {
			return ckptstore.Record{}, fmt.Errorf("resume latest: %w", err)
		}
		return rec, nil
	}

	rec, err := store.Load(ctx, step)
	if err != nil {
		return ckptstore.Record{}, fmt.Errorf("resume step %d: %w", step, err)
	}
	return rec, nil
}

func saveCheckpoint(ctx context.Context, store *ckptstore.Store, p *sampling.Pipeline, step int64, keep int) error {
	ckpt, ok := p.Checkpoint()
	if !ok {
		return fmt.Errorf("step %d: no checkpoint available", step)
	}
	if err := store.Save(ctx, step, ckpt); err != nil {
		return err
	}
	if keep > 0 {
		if _, err := store.Prune(ctx, keep); err != nil {
			return err
		}
	}
	return nil
}

func dumpBatch(dir string, step int64, sampleRate int, b sampling.Batch) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dump dir: %w", err)
	}

	for i, s := range b.Slices {
		name := fmt.Sprintf("step%06d_%02d_id%d.wav", step, i, b.IDs[i])
		if err := writeWAV(filepath.Join(dir, name), sampleRate, s); err != nil {
			return err
		}
	}
	return nil
}

func writeWAV(path string, sampleRate int, samples []float32) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := wav.WriteFloat(f, sampleRate, samples); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
