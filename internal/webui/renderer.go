package webui

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"sapdash/internal/dashboard"
	"sapdash/pkg/contracts/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Static returns the page's stylesheet and script, rooted at "static".
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// EventRow is one row of the events table.
type EventRow struct {
	ID          int64
	OrderID     string
	Integration string
	Status      string
	StatusClass string
	Message     string
	Error       string
	Retries     int
	TimeAgo     string
	Payload     string
	CanRetry    bool
}

// StatsView holds the statistics cards, already formatted.
type StatsView struct {
	Total       string
	Success     string
	Failed      string
	Pending     string
	SuccessRate string
}

// PageData is the input of the dashboard template.
type PageData struct {
	Events       []EventRow
	Failed       []EventRow
	Stats        StatsView
	SearchQuery  string
	FilterStatus string
	Statuses     []string
	ExportURL    string
	ExportXLSX   string
	MaxRetries   int
	AutoRefresh  bool
	GeneratedAt  time.Time
}

// NewPageData builds the template input for a listing.
func NewPageData(list, failed []domain.IntegrationEvent, stats domain.DashboardStats, filter domain.EventFilter, now time.Time) PageData {
	statuses := make([]string, 0, len(domain.EventStatuses))
	for _, s := range domain.EventStatuses {
		statuses = append(statuses, string(s))
	}
	return PageData{
		Events: rows(list, now),
		Failed: rows(failed, now),
		Stats: StatsView{
			Total:       dashboard.FormatNumber(stats.TotalEvents),
			Success:     dashboard.FormatNumber(stats.SuccessCount),
			Failed:      dashboard.FormatNumber(stats.FailedCount),
			Pending:     dashboard.FormatNumber(stats.PendingCount),
			SuccessRate: stats.SuccessRate,
		},
		SearchQuery:  filter.OrderID,
		FilterStatus: string(filter.Status),
		Statuses:     statuses,
		ExportURL:    ExportURL(filter, "csv"),
		ExportXLSX:   ExportURL(filter, "xlsx"),
		MaxRetries:   domain.MaxRetries,
		GeneratedAt:  now,
	}
}

// ExportURL is the export endpoint for the listing selected by filter.
func ExportURL(filter domain.EventFilter, format string) string {
	q := url.Values{}
	q.Set("format", format)
	if filter.OrderID != "" {
		q.Set("orderId", filter.OrderID)
	}
	if filter.Status != "" {
		q.Set("status", string(filter.Status))
	}
	return "/api/events/export?" + q.Encode()
}

func rows(list []domain.IntegrationEvent, now time.Time) []EventRow {
	out := make([]EventRow, 0, len(list))
	for i := range list {
		e := &list[i]
		out = append(out, EventRow{
			ID:          e.ID,
			OrderID:     e.OrderID,
			Integration: e.IntegrationName,
			Status:      string(e.Status),
			StatusClass: strings.ToLower(string(e.Status)),
			Message:     e.Message,
			Error:       e.ErrorDetails,
			Retries:     e.RetryCount,
			TimeAgo:     e.TimeAgo(now),
			Payload:     e.Payload,
			CanRetry:    e.CanRetry(),
		})
	}
	return out
}

// Renderer executes the dashboard template.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render writes the dashboard page.
func (r *Renderer) Render(w io.Writer, data PageData) error {
	if err := r.tmpl.ExecuteTemplate(w, "dashboard.html", data); err != nil {
		return fmt.Errorf("render dashboard: %w", err)
	}
	return nil
}
