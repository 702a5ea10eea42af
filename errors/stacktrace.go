package errors

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

// stackTracer is implemented by errors created with the pkg/errors package.
type stackTracer interface {
	error
	StackTrace() errors.StackTrace
}

// stackTrace returns the first found stack trace frame set carried by given
// error or any error it wraps. It returns nil if no stack trace information
// is found.
func stackTrace(err error) errors.StackTrace {
	for {
		if st, ok := err.(stackTracer); ok {
			return st.StackTrace()
		}

		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return nil
		}
	}
}

// trimInternal removes the stack trace frames that belong to this package as
// well as the runtime frames added when recovering from a panic. Those frames
// carry no information that a client of this package would need.
func trimInternal(st errors.StackTrace) errors.StackTrace {
	for len(st) > 0 && matchesFile(st[0],
		// Frames from this package where errors are created.
		"errors/errors.go",
		"errors/field.go",
		// Runtime frames are added on panics.
		"/runtime/",
		// Coverage tests define functions in _test directories.
		"/_test/") {
		st = st[1:]
	}
	for l := len(st) - 1; l > 0 && matchesFile(st[l], "/runtime/"); l-- {
		st = st[:l]
	}
	return st
}

func matchesFile(f errors.Frame, substrs ...string) bool {
	file, _ := fileLine(f)
	for _, sub := range substrs {
		if strings.Contains(file, sub) {
			return true
		}
	}
	return false
}

func fileLine(f errors.Frame) (string, int) {
	pc := uintptr(f) - 1
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "unknown", 0
	}
	return fn.FileLine(pc)
}

func writeSimpleFrame(s io.Writer, f errors.Frame) {
	file, line := fileLine(f)
	// Cut the file path at "github.com/" to keep the output short.
	chunks := strings.SplitN(file, "github.com/", 2)
	if len(chunks) == 2 {
		file = chunks[1]
	}
	fmt.Fprintf(s, " [%s:%d]", file, line)
}

// Format works like pkg/errors, with additions.
// %s is just the error message
// %+v is the full stack trace
// %v appends a compressed [filename:line] where the error was created
func (e *wrappedError) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		st := trimInternal(stackTrace(e))
		fmt.Fprintf(s, "%+v\n", st)
		fmt.Fprint(s, e.Error())
		return
	}

	fmt.Fprint(s, e.Error())

	if verb == 'v' {
		if st := trimInternal(stackTrace(e)); len(st) > 0 {
			writeSimpleFrame(s, st[0])
		}
	}
}
