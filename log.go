package kftrack

import "log"

// Logf is the package diagnostic logger.  It defaults to log.Printf but may
// be replaced by SetLogger
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger.  Passing nil mutes logging
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
