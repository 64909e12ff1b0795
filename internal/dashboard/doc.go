// Package dashboard contains the page helpers used by the integration event
// dashboard: number formatting, transient notifications, table export and file
// download, plus the optional periodic refresh.
//
// None of the helpers touch a page directly. The page is reached through the
// Surface, TableSource, ResourceRegistry and Saver interfaces, which the HTTP
// and WebSocket layers implement.
//
// # Export format
//
// The export buffer is one line per table row, rows separated by "\n" with no
// trailing newline. Every field is wrapped in double quotes and fields are
// joined with ",". In QuoteRaw mode embedded quotes are written as-is, so a
// cell containing e"f becomes "e"f". QuoteRFC4180 doubles embedded quotes
// instead ("e""f"). QuoteRaw is the default because existing consumers parse
// the raw form.
package dashboard
