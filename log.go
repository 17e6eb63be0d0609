package main

import (
	"fmt"
	"os"
)

// LOG and DEBUG gate the diagnostic output. Everything goes to stderr so
// stdout stays clean for the output document.
var LOG, DEBUG bool

func logln(a ...interface{}) {
	if LOG {
		fmt.Fprintln(os.Stderr, a...)
	}
}

func logf(format string, a ...interface{}) {
	if LOG {
		fmt.Fprintf(os.Stderr, format, a...)
	}
}

func debugf(format string, a ...interface{}) {
	if DEBUG {
		fmt.Fprintf(os.Stderr, format, a...)
	}
}
