// Package logger wraps zap for the generator:
//   - a global sugared logger with a console encoder,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing and configuration,
//   - leveled helpers (Info, InfoKV, DebugKV, ErrorKV, ...).
//
// Services take a context and log through the logger stored in it.
package logger
