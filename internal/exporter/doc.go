// Package exporter encodes the dashboard's events table for download.
//
// CSVEncoder produces the dashboard CSV format (every field quoted, rows
// joined by "\n") with an optional UTF-8 byte order mark for Excel.
// XLSXEncoder writes a single "Events" sheet with a bold header row using
// excelize. Both satisfy dashboard.Encoder.
//
// WriteEventsCSV streams stored events straight to a writer with
// encoding/csv, for offline dumps that do not go through the page table.
package exporter
