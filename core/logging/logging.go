// Package logging is a small tag-prefixed wrapper around the standard log
// package, matching the bracketed "[level] (component)" tags the teacher's
// own packages (core/vm/vm.go, core/node/node.go) log with, e.g.
// "[info] (vm) terminating", "[error] (node) unexpected message type %T".
package logging

import "log"

// Debugf logs a debug-level message tagged with component.
func Debugf(component, format string, args ...interface{}) {
	log.Printf("[debug] ("+component+") "+format, args...)
}

// Infof logs an info-level message tagged with component.
func Infof(component, format string, args ...interface{}) {
	log.Printf("[info] ("+component+") "+format, args...)
}

// Errorf logs an error-level message tagged with component.
func Errorf(component, format string, args ...interface{}) {
	log.Printf("[error] ("+component+") "+format, args...)
}
