// Package debug provides env-var gated tracing for the chez packages.
//
// Set CHEZ_DEBUG_VALIDATE, CHEZ_DEBUG_RESOLVE, or CHEZ_DEBUG_DERIVE to a
// truthy value to trace the corresponding subsystem on stderr.
package debug

import (
	"fmt"
	"os"
	"strconv"
)

type debug struct {
	Validate bool
	Resolve  bool
	Derive   bool
}

var d *debug

func init() {
	d = &debug{}
	d.Validate = boolEnv("CHEZ_DEBUG_VALIDATE")
	d.Resolve = boolEnv("CHEZ_DEBUG_RESOLVE")
	d.Derive = boolEnv("CHEZ_DEBUG_DERIVE")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Validate() bool {
	return d.Validate
}
func Resolve() bool {
	return d.Resolve
}
func Derive() bool {
	return d.Derive
}

func Logf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format, args...)
}
