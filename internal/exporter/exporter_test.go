package exporter

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"sapdash/internal/dashboard"
	"sapdash/pkg/contracts/domain"
)

var tableRows = [][]string{
	{"ID", "Order ID", "Status"},
	{"1", "PO-00001", `say "hi"`},
	{"2", "PO-00002, late", "FAILED"},
}

func TestCSVEncoder(t *testing.T) {
	tests := []struct {
		name string
		enc  *CSVEncoder
		want string
	}{
		{"raw", NewCSVEncoder(dashboard.QuoteRaw, false),
			`"ID","Order ID","Status"` + "\n" + `"1","PO-00001","say "hi""` + "\n" + `"2","PO-00002, late","FAILED"`},
		{"rfc4180", NewCSVEncoder(dashboard.QuoteRFC4180, false),
			`"ID","Order ID","Status"` + "\n" + `"1","PO-00001","say ""hi"""` + "\n" + `"2","PO-00002, late","FAILED"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.enc.Encode(tableRows)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}

	bom, err := NewCSVEncoder(dashboard.QuoteRaw, true).Encode([][]string{{"a"}})
	require.NoError(t, err)
	assert.Equal(t, append([]byte{0xEF, 0xBB, 0xBF}, `"a"`...), bom)

	enc := NewCSVEncoder(dashboard.QuoteRaw, false)
	assert.Equal(t, "text/csv", enc.MediaType())
	assert.Equal(t, ".csv", enc.Extension())
}

func TestRFC4180OutputParses(t *testing.T) {
	out, err := NewCSVEncoder(dashboard.QuoteRFC4180, false).Encode(tableRows)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, tableRows, records)
}

func TestXLSXEncoder(t *testing.T) {
	out, err := NewXLSXEncoder().Encode(tableRows)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Equal(t, tableRows, rows)

	enc := NewXLSXEncoder()
	assert.Equal(t, ".xlsx", enc.Extension())
	assert.Equal(t, MediaTypeXLSX, enc.MediaType())
}

func TestXLSXEncoderEmpty(t *testing.T) {
	out, err := NewXLSXEncoder().Encode(nil)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestWriteEventsCSV(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	events := []domain.IntegrationEvent{
		{ID: 1, OrderID: "PO-1", Status: domain.EventStatusFailed, Message: "a, b", ErrorDetails: "Network error",
			IntegrationName: "Order-to-SAP", RetryCount: 2, PayloadFormat: domain.PayloadFormatJSON, CreatedAt: created},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteEventsCSV(&buf, events, true))
	require.True(t, bytes.HasPrefix(buf.Bytes(), utf8BOM))

	records, err := csv.NewReader(bytes.NewReader(buf.Bytes()[3:])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, EventHeaders, records[0])
	assert.Equal(t, []string{"1", "PO-1", "Order-to-SAP", "FAILED", "a, b", "Network error", "2", "JSON",
		"2024-05-01T12:00:00Z", ""}, records[1])
}
