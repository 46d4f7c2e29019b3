// Package logging assembles structured slog loggers and formatting helpers used
// across slidecast.
//
// It owns the console and JSON handlers, fans records out to the terminal and
// the persistent log file, and exposes context-aware helpers so stage code can
// tag log lines with run ids, stages, slide indexes, and correlation ids. The
// package also provides a no-op logger for tests and wiring code that cannot
// fail.
package logging
