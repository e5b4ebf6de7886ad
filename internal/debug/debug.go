package debug

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Build flag for debug mode - can be overridden at build time
// go build -ldflags "-X github.com/pqgrep/pqgrep/internal/debug.EnableDebug=true"
var EnableDebug = "false"

// debugOutput is the writer for debug output (defaults to stderr when enabled)
var debugOutput io.Writer = os.Stderr

// verbose is set at runtime from the --verbose flag
var verbose = false

// debugMutex protects access to debug output
var debugMutex sync.Mutex

// SetVerbose enables debug output for this invocation regardless of the
// DEBUG environment variable.
func SetVerbose(enabled bool) {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	verbose = enabled
}

// SetDebugOutput sets a custom writer for debug output.
// Pass nil to disable debug output entirely.
func SetDebugOutput(w io.Writer) {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	debugOutput = w
}

// IsDebugEnabled returns true if debug mode is enabled
func IsDebugEnabled() bool {
	debugMutex.Lock()
	v := verbose
	debugMutex.Unlock()
	if v {
		return true
	}

	// Check build flag first
	if EnableDebug == "true" {
		return true
	}

	// Allow runtime override via environment variable
	if os.Getenv("DEBUG") == "1" || os.Getenv("DEBUG") == "true" {
		return true
	}

	return false
}

// getDebugWriter returns the writer for debug output, or nil if none is configured
func getDebugWriter() io.Writer {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	return debugOutput
}

// Printf prints debug information only when debug mode is enabled and output is configured
func Printf(format string, args ...interface{}) {
	if !IsDebugEnabled() {
		return
	}
	w := getDebugWriter()
	if w == nil {
		return
	}
	fmt.Fprintf(w, "[DEBUG] "+format, args...)
}

// LogWalk logs file discovery activity
func LogWalk(format string, args ...interface{}) {
	Printf("[WALK] "+format, args...)
}

// LogSource logs source open/read activity
func LogSource(format string, args ...interface{}) {
	Printf("[SOURCE] "+format, args...)
}

// LogPipeline logs per-file pipeline activity
func LogPipeline(format string, args ...interface{}) {
	Printf("[PIPELINE] "+format, args...)
}
