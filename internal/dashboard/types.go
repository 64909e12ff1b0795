package dashboard

import (
	"context"
	"errors"
)

// EventsTableClass is the class of the page table that gets exported.
const EventsTableClass = "events-table"

// Severity classifies a notification's presentation. The set is open; the
// constants below are the ones the stylesheet ships rules for.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

var (
	// ErrTableNotFound is returned when the page has no table with the requested class.
	ErrTableNotFound = errors.New("table not found")
	// ErrNoSurface is returned when a helper is used without a page surface.
	ErrNoSurface = errors.New("ui surface unavailable")
)

// Element is a node appended to the page.
type Element struct {
	ID    string `json:"id"`
	Class string `json:"class"`
	Text  string `json:"text"`
}

// Surface is the part of the page the helpers may mutate.
type Surface interface {
	Append(ctx context.Context, el Element) error
	Remove(ctx context.Context, id string) error
}

// Table holds the rendered text of every cell, row by row, in document order.
type Table struct {
	Rows [][]string
}

// TableSource locates a table on the page by class.
type TableSource interface {
	Table(ctx context.Context, class string) (Table, error)
}

// Resource is a downloadable payload registered under a temporary handle.
type Resource struct {
	Handle    string
	Filename  string
	MediaType string
	Content   []byte
}

// ResourceRegistry hands out temporary resource handles.
type ResourceRegistry interface {
	Create(content []byte, mediaType, filename string) (*Resource, error)
	Release(handle string)
	Active() int
}

// Saver triggers the save action for a resource.
type Saver interface {
	Save(ctx context.Context, res *Resource) error
}

// SaverFunc adapts a function to Saver.
type SaverFunc func(ctx context.Context, res *Resource) error

// Save calls f(ctx, res).
func (f SaverFunc) Save(ctx context.Context, res *Resource) error {
	return f(ctx, res)
}

// Encoder turns table rows into a file payload.
type Encoder interface {
	Encode(rows [][]string) ([]byte, error)
	MediaType() string
	Extension() string
}
