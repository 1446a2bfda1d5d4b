// Package monitoring holds the diagnostic logger shared by the pipeline
// stages.
package monitoring

import (
	"log"
	"time"

	"github.com/banshee-data/pixelstream/internal/timeutil"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Timed logs the start of stage and returns a func that logs its duration
// as measured by clock. A nil clock uses the wall clock.
//
//	defer monitoring.Timed(clock, "exchange")()
func Timed(clock timeutil.Clock, stage string) func() {
	clock = timeutil.Or(clock)
	start := clock.Now()
	Logf("%s: started", stage)
	return func() {
		Logf("%s: finished in %v", stage, clock.Since(start).Round(time.Millisecond))
	}
}
