// Package logger provides a structured logging facility based on Zap.
//
// New builds a development logger for the debug level and a production logger
// otherwise, with console or JSON encoding. When Config.File is set, a JSON copy of
// every entry is teed into a size-rotated file managed by lumberjack.
//
// # Context Awareness
//
// WithRun tags entries with the run id and operation so one run's state transitions
// can be followed across the log. WithRayID does the same for HTTP requests, using
// the ray id set by the rayid middleware.
package logger
