// Package logger provides a small wrapper around zap to offer:
//   - a fallback sugared logger with a console encoder,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing for the --log-level flag,
//   - convenience functions (Infof, WarnKV, etc.).
//
// Commands build their own logger, put it into the context and hand the
// context to the pipeline; the pipeline never configures logging itself.
package logger
