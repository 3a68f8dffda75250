// Package log provides Sapling's structured logging facade.
//
// # Overview
//
// The package exposes a small Logger interface with leveled methods and a
// Field type for structured context. Storage packages stay logger-free and
// return errors; the Repository handle and the CLI are the intended users.
//
// Quick start
//
//	l := log.NewLogger(
//	    log.WithLevel(log.InfoLevel),
//	    log.WithFormatter(&log.TextFormatter{}),
//	    log.WithOutput(log.NewConsoleOutput()),
//	)
//	l = l.With(log.Component("repo"), log.Str("repo_name", "fbsource"))
//	l.Info("batch saved", log.Int("changesets", 3))
//
// # Interop
//
// RedirectStdLog routes standard library log output (used by Pebble) through
// a Logger so all process output shares one format.
package log
