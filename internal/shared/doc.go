// Package shared holds code used across packages that belongs to no single
// layer. Its testutil subpackage provides a log recorder and integration
// event fixtures for tests:
//
//	logger, logs := testutil.NewTestLogger(t)
//	svc := services.NewEventService(st, bus, logger)
//	...
//	testutil.AssertLogContains(t, logs, slog.LevelInfo, "retry published")
package shared
