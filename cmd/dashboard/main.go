package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"sapdash/internal/app"
	"sapdash/internal/config"
	"sapdash/internal/exporter"
	"sapdash/internal/infrastructure"
	"sapdash/internal/store"
)

func main() {
	dump := flag.String("dump", "", "write every stored event as CSV to this file (- for stdout) and exit")
	bom := flag.Bool("bom", false, "prefix the -dump output with a UTF-8 BOM")
	flag.Parse()

	if *dump != "" {
		if err := runDump(context.Background(), *dump, *bom); err != nil {
			slog.Error("Event dump failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		return
	}

	application, err := app.NewApplication()
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	err = application.Run(context.Background())
	if err != nil {
		slog.Error("Application error", slog.String("error", err.Error()))
	}
	_ = infrastructure.CloseLogFile()
	if err != nil {
		os.Exit(1)
	}
}

func runDump(ctx context.Context, target string, bom bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var st store.EventStore
	if cfg.Storage.Driver == "memory" {
		st = store.NewMemoryStore()
	} else {
		st, err = store.NewSQLiteStore(cfg.Storage.Path)
		if err != nil {
			return err
		}
	}
	defer st.Close()

	out := io.Writer(os.Stdout)
	if target != "-" {
		f, err := os.Create(target)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	n, err := dumpEvents(ctx, st, out, bom)
	if err != nil {
		return err
	}
	slog.Info("Events dumped", slog.Int("events", n), slog.String("target", target))
	return nil
}

// dumpEvents writes every event in st, newest first.
func dumpEvents(ctx context.Context, st store.EventStore, w io.Writer, bom bool) (int, error) {
	total, err := st.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	if total == 0 {
		return 0, exporter.WriteEventsCSV(w, nil, bom)
	}
	events, err := st.Recent(ctx, int(total))
	if err != nil {
		return 0, fmt.Errorf("list events: %w", err)
	}
	return len(events), exporter.WriteEventsCSV(w, events, bom)
}
