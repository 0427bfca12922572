package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"subweave/internal/compositor"
	"subweave/internal/config"
	"subweave/internal/queue"
	"subweave/internal/services/translate"
	"subweave/internal/staging"
	"subweave/internal/subtitle"
	"subweave/internal/transcribe"
	"subweave/internal/workflow"
)

// staleStagingAge is how long an item directory may sit untouched before a
// new run treats it as abandoned.
const staleStagingAge = 7 * 24 * time.Hour

func newRunCommand(ctx *commandContext) *cobra.Command {
	var sourceLang string
	var targetLang string

	cmd := &cobra.Command{
		Use:   "run [video...]",
		Short: "Enqueue videos and process the queue until done",
		Long: "Enqueue the given video files and process every actionable queue item " +
			"through transcription, translation, and subtitle burn-in. With no " +
			"arguments, pending items already in the queue are processed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				lock := flock.New(filepath.Join(cfg.Paths.LogDir, "subweave.lock"))
				ok, err := lock.TryLock()
				if err != nil {
					return fmt.Errorf("acquire run lock: %w", err)
				}
				if !ok {
					return errors.New("another subweave run is already in progress")
				}
				defer func() { _ = lock.Unlock() }()

				source := langOrDefault(sourceLang, cfg.Translation.SourceLanguage)
				target := langOrDefault(targetLang, cfg.Translation.TargetLanguage)
				if source == target {
					return fmt.Errorf("source and target language are both %q", source)
				}

				enqueued, err := enqueueVideos(cmd.Context(), store, args, source, target)
				if err != nil {
					return err
				}
				for _, item := range enqueued {
					fmt.Fprintf(cmd.OutOrStdout(), "Queued %s (%s -> %s)\n", item.Title, item.SourceLanguage, item.TargetLanguage)
				}

				logger, err := newLogger(cfg)
				if err != nil {
					return fmt.Errorf("init logging: %w", err)
				}

				// Sweep leftovers from runs that died mid-pipeline. Current
				// items are protected by the run lock plus the age cutoff.
				if swept, err := staging.CleanStale(cfg, staleStagingAge, logger); err != nil {
					logger.Warn("staging cleanup failed", "error", err)
				} else if len(swept.Removed) > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "Removed %d stale staging dir(s)\n", len(swept.Removed))
				}

				client := translate.NewClient(translate.Config{
					APIKey:         cfg.Translation.APIKey,
					BaseURL:        cfg.Translation.BaseURL,
					Model:          cfg.Translation.Model,
					Referer:        cfg.Translation.Referer,
					Title:          cfg.Translation.Title,
					TimeoutSeconds: cfg.Translation.TimeoutSeconds,
				})
				transcriber := transcribe.NewService(transcribe.Config{
					Model:       cfg.Transcription.WhisperXModel,
					CUDAEnabled: cfg.Transcription.CUDAEnabled,
					VADMethod:   cfg.Transcription.VADMethod,
					HFToken:     cfg.Transcription.HFToken,
				})

				manager := workflow.NewManager(cfg, store, logger)
				manager.ConfigureStages(workflow.StageSet{
					Transcriber: transcribe.NewStage(store, cfg, transcriber, logger),
					Translator:  subtitle.NewStage(store, cfg, client, logger),
					Compositor:  compositor.NewStage(store, cfg, logger),
				})

				if err := manager.RunUntilIdle(cmd.Context()); err != nil {
					return fmt.Errorf("run queue: %w", err)
				}

				return reportRunResults(cmd, store)
			})
		},
	}

	cmd.Flags().StringVar(&sourceLang, "source", "", "Source language override (ISO code, empty = config default)")
	cmd.Flags().StringVar(&targetLang, "target", "", "Target language override (ISO code, empty = config default)")
	return cmd
}

func langOrDefault(flag, fallback string) string {
	if trimmed := strings.ToLower(strings.TrimSpace(flag)); trimmed != "" {
		return trimmed
	}
	return fallback
}

// enqueueVideos validates each path and inserts a pending queue item per
// video. Paths already queued in a non-terminal state are skipped.
func enqueueVideos(ctx context.Context, store *queue.Store, paths []string, source, target string) ([]*queue.Item, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	existing, err := store.List(ctx)
	if err != nil {
		return nil, err
	}
	active := make(map[string]struct{}, len(existing))
	for _, item := range existing {
		if !item.IsTerminal() {
			active[item.SourcePath] = struct{}{}
		}
	}

	items := make([]*queue.Item, 0, len(paths))
	for _, path := range paths {
		abs, err := config.ExpandPath(path)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("source video %s: %w", path, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("source video %s is a directory", path)
		}
		if _, ok := active[abs]; ok {
			continue
		}
		item, err := store.NewVideo(ctx, abs, deriveTitle(abs), source, target)
		if err != nil {
			return nil, fmt.Errorf("enqueue %s: %w", path, err)
		}
		active[abs] = struct{}{}
		items = append(items, item)
	}
	return items, nil
}

// reportRunResults prints the per-video outcome table. The command fails
// only when nothing completed, so one bad video never hides the others.
func reportRunResults(cmd *cobra.Command, store *queue.Store) error {
	items, err := store.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
		return nil
	}

	rows := make([][]string, 0, len(items))
	completed := 0
	failed := 0
	for _, item := range items {
		detail := item.FinalFile
		switch item.Status {
		case queue.StatusCompleted:
			completed++
			if item.TranslationFailures > 0 {
				detail = fmt.Sprintf("%s (%d segments kept source text)", item.FinalFile, item.TranslationFailures)
			}
		case queue.StatusFailed:
			failed++
			detail = item.ErrorMessage
		default:
			detail = item.ProgressMessage
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", item.ID),
			item.Title,
			string(item.Status),
			detail,
		})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderTable(
		[]string{"ID", "Title", "Status", "Detail"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
	))

	if failed > 0 && completed == 0 {
		return fmt.Errorf("all %d videos failed", failed)
	}
	return nil
}
