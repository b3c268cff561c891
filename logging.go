package main

import (
	"log"
	"sync/atomic"
)

var debugLogging atomic.Bool

// debugf writes to l only when --debug is on.
func debugf(l *log.Logger, format string, args ...any) {
	if !debugLogging.Load() {
		return
	}
	l.Printf("DEBUG "+format, args...)
}
