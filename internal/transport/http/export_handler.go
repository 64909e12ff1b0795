package http

import (
	"context"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"

	"sapdash/internal/dashboard"
	apierrors "sapdash/internal/errors"
	"sapdash/internal/exporter"
	"sapdash/internal/metrics"
	customMiddleware "sapdash/internal/middleware"
	"sapdash/pkg/contracts/domain"
)

type exportRequestKey struct{}

// exportRequest carries the response and listing of one export through the
// exporter, which only sees a context.
type exportRequest struct {
	w       http.ResponseWriter
	filter  domain.EventFilter
	written bool
}

func withExportRequest(ctx context.Context, req *exportRequest) context.Context {
	return context.WithValue(ctx, exportRequestKey{}, req)
}

func exportRequestFrom(ctx context.Context) (*exportRequest, bool) {
	req, ok := ctx.Value(exportRequestKey{}).(*exportRequest)
	return req, ok
}

func exportFilter(ctx context.Context) domain.EventFilter {
	if req, ok := exportRequestFrom(ctx); ok {
		return req.filter
	}
	return domain.EventFilter{}
}

// ResponseSaver returns a dashboard.Saver that sends the resource as an
// attachment on the response of the export request in ctx.
func ResponseSaver() dashboard.Saver {
	return dashboard.SaverFunc(func(ctx context.Context, res *dashboard.Resource) error {
		req, ok := exportRequestFrom(ctx)
		if !ok {
			return dashboard.ErrNoSurface
		}
		header := req.w.Header()
		header.Set("Content-Type", res.MediaType)
		header.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": res.Filename}))
		header.Set("Content-Length", strconv.Itoa(len(res.Content)))
		header.Set("Cache-Control", "no-store")

		req.written = true
		req.w.WriteHeader(http.StatusOK)
		_, err := req.w.Write(res.Content)
		return err
	})
}

// ExportHandler serves downloads of the events table.
type ExportHandler struct {
	exporter     *dashboard.Exporter
	mode         dashboard.QuoteMode
	bom          bool
	params       *customMiddleware.QueryParamValidator
	metrics      *metrics.Metrics
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewExportHandler creates an export handler. mode and bom are the CSV
// defaults; the exporter must save through ResponseSaver.
func NewExportHandler(exp *dashboard.Exporter, mode dashboard.QuoteMode, bom bool, m *metrics.Metrics, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{
		exporter:     exp,
		mode:         mode,
		bom:          bom,
		params:       customMiddleware.NewQueryParamValidator(errorHandler),
		metrics:      m,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("handler", "export")),
	}
}

// ExportCSV handles GET /export.csv
func (h *ExportHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "csv", h.mode)
}

// Export handles GET /api/events/export
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	format, ok := h.params.ValidateEnum(w, r, "format", []string{"csv", "xlsx"}, "csv")
	if !ok {
		return
	}
	quoting, ok := h.params.ValidateEnum(w, r, "quoting", []string{"raw", "rfc4180"}, h.mode.String())
	if !ok {
		return
	}
	mode, err := dashboard.ParseQuoteMode(quoting)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidParameter("quoting", err))
		return
	}
	h.export(w, r, format, mode)
}

func (h *ExportHandler) export(w http.ResponseWriter, r *http.Request, format string, mode dashboard.QuoteMode) {
	f, err := filterFrom(r.URL.Query())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	req := &exportRequest{w: w, filter: f}
	ctx := withExportRequest(r.Context(), req)
	filename := exportFilename(r.URL.Query().Get("filename"))

	switch {
	case format == "xlsx":
		err = h.exporter.ExportTable(ctx, filename, exporter.NewXLSXEncoder())
	case mode == h.mode && !h.bom:
		err = h.exporter.ExportTableToCSV(ctx, filename)
	default:
		err = h.exporter.ExportTable(ctx, filename, exporter.NewCSVEncoder(mode, h.bom))
	}
	h.metrics.Export(format, err)

	if err == nil {
		return
	}
	if req.written {
		h.logger.ErrorContext(ctx, "export interrupted", slog.String("error", err.Error()))
		return
	}
	if errors.Is(err, dashboard.ErrTableNotFound) || errors.Is(err, dashboard.ErrNoSurface) {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.errorHandler.HandleError(w, r, errors.Join(apierrors.ErrExportFailed, err))
}

// exportFilename keeps the base name of a client supplied filename. Empty
// or unusable names select the exporter's default.
func exportFilename(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, `\`, "/"))
	if name == "" {
		return ""
	}
	base := path.Base(name)
	if base == "." || base == "/" || base == ".." {
		return ""
	}
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == '"' {
			return -1
		}
		return r
	}, base)
}
