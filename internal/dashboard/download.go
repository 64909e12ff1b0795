package dashboard

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"
)

const (
	// DefaultFilename is used when a download is requested without a name.
	DefaultFilename = "export.csv"
	// MediaTypeCSV is the media type of CSV downloads.
	MediaTypeCSV = "text/csv"
)

// Downloader wraps payloads as temporary resources and triggers their save.
type Downloader struct {
	registry ResourceRegistry
	saver    Saver
	logger   *slog.Logger
}

// NewDownloader creates a Downloader.
func NewDownloader(registry ResourceRegistry, saver Saver, logger *slog.Logger) *Downloader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Downloader{
		registry: registry,
		saver:    saver,
		logger:   logger.With(slog.String("component", "dashboard.downloader")),
	}
}

// Download saves payload as a CSV file. An empty filename means DefaultFilename.
func (d *Downloader) Download(ctx context.Context, payload, filename string) error {
	return d.DownloadBytes(ctx, []byte(payload), filename, MediaTypeCSV)
}

// DownloadBytes registers content under a temporary handle, triggers the
// save and releases the handle whether or not the save succeeded.
func (d *Downloader) DownloadBytes(ctx context.Context, content []byte, filename, mediaType string) error {
	if filename == "" {
		filename = DefaultFilename
	}
	res, err := d.registry.Create(content, mediaType, filename)
	if err != nil {
		return fmt.Errorf("create resource: %w", err)
	}
	defer d.registry.Release(res.Handle)

	d.logger.InfoContext(ctx, "download triggered",
		slog.String("filename", res.Filename),
		slog.String("media_type", res.MediaType),
		slog.String("size", humanize.Bytes(uint64(len(res.Content)))))

	if err := d.saver.Save(ctx, res); err != nil {
		return fmt.Errorf("save %s: %w", res.Filename, err)
	}
	return nil
}
