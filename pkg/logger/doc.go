// Package logger provides the structured logging interface used across emojiharvest.
//
// It wraps zerolog with a small interface so harvest code can attach fields
// (source, section, harvest_id) without depending on zerolog directly, and so
// tests can swap in NewTestLogger or NewNopLogger.
//
// Basic usage:
//
//	err := logger.Initialize(&cfg.Logging)
//	logger.WithField("source", "slack").Info("Harvest started")
//
// While the TUI owns the terminal, console output is disabled with
// InitializeWithOutput(cfg, nil) and only the log file, if any, is written.
package logger
