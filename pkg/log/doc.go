// Package log provides structured logging for cairn using zerolog.
//
// A single global Logger is configured once via Init; every component
// derives its own child logger via WithComponent so log lines carry a
// component field without repeating it at every call site.
package log
