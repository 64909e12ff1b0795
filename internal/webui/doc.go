// Package webui renders the dashboard page and reads it back.
//
// Renderer executes the embedded dashboard template: statistics cards,
// search and status filter forms, the events table (class "events-table")
// and the failed events panel. HTMLTableSource implements
// dashboard.TableSource by parsing rendered HTML with golang.org/x/net/html,
// so an export always reflects exactly what the page shows. SummaryChart
// draws events per integration and per status with go-echarts.
package webui
