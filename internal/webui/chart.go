package webui

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"sapdash/internal/dashboard"
	"sapdash/pkg/contracts/domain"
)

// SummaryChart draws the integration and status breakdown of the events.
type SummaryChart struct {
	summary []domain.IntegrationSummary
	stats   domain.DashboardStats
}

// NewSummaryChart creates a chart page for the given data.
func NewSummaryChart(summary []domain.IntegrationSummary, stats domain.DashboardStats) *SummaryChart {
	return &SummaryChart{summary: summary, stats: stats}
}

// IntegrationBar returns the events-per-integration bar chart.
func (c *SummaryChart) IntegrationBar() *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Events by integration",
			Subtitle: fmt.Sprintf("%d integrations, %s events", len(c.summary), dashboard.FormatCount(c.stats.TotalEvents)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "420px"}),
	)

	names := make([]string, 0, len(c.summary))
	values := make([]opts.BarData, 0, len(c.summary))
	for _, s := range c.summary {
		name := s.IntegrationName
		if name == "" {
			name = "(none)"
		}
		names = append(names, name)
		values = append(values, opts.BarData{Name: name, Value: s.Count})
	}
	bar.SetXAxis(names).AddSeries("Events", values)
	return bar
}

// StatusPie returns the status breakdown pie chart.
func (c *SummaryChart) StatusPie() *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Events by status",
			Subtitle: "Success rate " + c.stats.SuccessRate + "%",
		}),
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "420px"}),
	)
	pie.AddSeries("status", []opts.PieData{
		{Name: string(domain.EventStatusSuccess), Value: c.stats.SuccessCount},
		{Name: string(domain.EventStatusFailed), Value: c.stats.FailedCount},
		{Name: string(domain.EventStatusPending), Value: c.stats.PendingCount},
	}, charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{b}: {c}"}))
	return pie
}

// Render writes a standalone HTML page with both charts.
func (c *SummaryChart) Render(w io.Writer) error {
	page := components.NewPage()
	page.PageTitle = "Integration summary"
	page.AddCharts(c.IntegrationBar(), c.StatusPie())
	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	return nil
}
