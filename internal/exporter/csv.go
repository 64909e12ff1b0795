package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"sapdash/internal/dashboard"
	"sapdash/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVEncoder encodes table rows in the dashboard CSV format.
type CSVEncoder struct {
	Mode dashboard.QuoteMode
	// BOMPrefix adds a UTF-8 BOM so Excel recognizes the encoding.
	BOMPrefix bool
}

// NewCSVEncoder creates a CSV encoder.
func NewCSVEncoder(mode dashboard.QuoteMode, bom bool) *CSVEncoder {
	return &CSVEncoder{Mode: mode, BOMPrefix: bom}
}

func (e *CSVEncoder) Encode(rows [][]string) ([]byte, error) {
	body := dashboard.BuildCSV(rows, e.Mode)
	if !e.BOMPrefix {
		return []byte(body), nil
	}
	return append(append([]byte(nil), utf8BOM...), body...), nil
}

func (e *CSVEncoder) MediaType() string { return dashboard.MediaTypeCSV }

func (e *CSVEncoder) Extension() string { return ".csv" }

// EventHeaders are the columns written by WriteEventsCSV.
var EventHeaders = []string{
	"id", "order_id", "integration", "status", "message", "error_details",
	"retry_count", "payload_format", "created_at", "updated_at",
}

// WriteEventsCSV writes events as RFC 4180 CSV with a header row.
func WriteEventsCSV(w io.Writer, events []domain.IntegrationEvent, bom bool) error {
	if bom {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(EventHeaders); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, e := range events {
		record := []string{
			strconv.FormatInt(e.ID, 10),
			e.OrderID,
			e.IntegrationName,
			string(e.Status),
			e.Message,
			e.ErrorDetails,
			strconv.Itoa(e.RetryCount),
			string(e.PayloadFormat),
			formatTime(e.CreatedAt),
			formatTime(e.UpdatedAt),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
