package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// QuoteMode selects how embedded double quotes are written.
type QuoteMode int

const (
	// QuoteRaw wraps each field in quotes and leaves embedded quotes alone.
	QuoteRaw QuoteMode = iota
	// QuoteRFC4180 wraps each field in quotes and doubles embedded quotes.
	QuoteRFC4180
)

// ParseQuoteMode maps "raw" and "rfc4180" to a QuoteMode. Empty means QuoteRaw.
func ParseQuoteMode(s string) (QuoteMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "raw":
		return QuoteRaw, nil
	case "rfc4180", "escaped":
		return QuoteRFC4180, nil
	}
	return QuoteRaw, fmt.Errorf("unknown csv quoting %q", s)
}

func (m QuoteMode) String() string {
	if m == QuoteRFC4180 {
		return "rfc4180"
	}
	return "raw"
}

// BuildCSV builds the export buffer for rows.
func BuildCSV(rows [][]string, mode QuoteMode) string {
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		fields := make([]string, 0, len(row))
		for _, cell := range row {
			fields = append(fields, quoteField(cell, mode))
		}
		lines = append(lines, strings.Join(fields, ","))
	}
	return strings.Join(lines, "\n")
}

func quoteField(s string, mode QuoteMode) string {
	if mode == QuoteRFC4180 {
		s = strings.ReplaceAll(s, `"`, `""`)
	}
	return `"` + s + `"`
}

// Exporter reads the events table and hands its contents to a Downloader.
type Exporter struct {
	source     TableSource
	downloader *Downloader
	mode       QuoteMode
	class      string
	logger     *slog.Logger
}

// NewExporter creates an Exporter for the events table.
func NewExporter(source TableSource, downloader *Downloader, mode QuoteMode, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		source:     source,
		downloader: downloader,
		mode:       mode,
		class:      EventsTableClass,
		logger:     logger.With(slog.String("component", "dashboard.exporter")),
	}
}

// ExportTableToCSV exports the current events table as CSV. An empty
// filename means DefaultFilename.
func (e *Exporter) ExportTableToCSV(ctx context.Context, filename string) error {
	table, err := e.readTable(ctx)
	if err != nil {
		return err
	}
	payload := BuildCSV(table.Rows, e.mode)

	e.logger.InfoContext(ctx, "exporting table",
		slog.String("format", "csv"),
		slog.String("quoting", e.mode.String()),
		slog.Int("rows", len(table.Rows)))

	return e.downloader.Download(ctx, payload, filename)
}

// ExportTable exports the current events table with enc. An empty filename
// means "export" plus the encoder's extension.
func (e *Exporter) ExportTable(ctx context.Context, filename string, enc Encoder) error {
	table, err := e.readTable(ctx)
	if err != nil {
		return err
	}
	content, err := enc.Encode(table.Rows)
	if err != nil {
		return fmt.Errorf("encode table: %w", err)
	}
	if filename == "" {
		filename = "export" + enc.Extension()
	}

	e.logger.InfoContext(ctx, "exporting table",
		slog.String("format", strings.TrimPrefix(enc.Extension(), ".")),
		slog.Int("rows", len(table.Rows)))

	return e.downloader.DownloadBytes(ctx, content, filename, enc.MediaType())
}

func (e *Exporter) readTable(ctx context.Context) (Table, error) {
	if e.source == nil {
		return Table{}, ErrNoSurface
	}
	table, err := e.source.Table(ctx, e.class)
	if err != nil {
		if errors.Is(err, ErrTableNotFound) {
			return Table{}, fmt.Errorf("%s: %w", e.class, err)
		}
		return Table{}, fmt.Errorf("read table %s: %w", e.class, err)
	}
	return table, nil
}
