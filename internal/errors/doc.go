// Package errors renders failures as RFC 7807 problem documents.
//
// Handlers return plain errors; ErrorHandler.HandleError maps the service
// and dashboard sentinels, validator field errors and *APIError values to a
// status code and problem type.
package errors
