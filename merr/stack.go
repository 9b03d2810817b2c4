package merr

import (
	"fmt"
	"path/filepath"
	"runtime"
)

// MaxStackSize bounds the number of stack frames captured when an error is
// wrapped.
var MaxStackSize = 50

// Stacktrace is a captured call stack.
type Stacktrace struct {
	frames []uintptr
}

func newStacktrace(skip int) Stacktrace {
	pcs := make([]uintptr, MaxStackSize)
	n := runtime.Callers(skip+2, pcs)
	return Stacktrace{frames: pcs[:n]}
}

// Frame returns the top-most frame of the stack.
func (s Stacktrace) Frame() runtime.Frame {
	frame, _ := runtime.CallersFrames(s.frames).Next()
	return frame
}

// String renders the top-most frame as "pkg/file.go:line".
func (s Stacktrace) String() string {
	if len(s.frames) == 0 {
		return ""
	}
	frame := s.Frame()
	file, dir := filepath.Base(frame.File), filepath.Dir(frame.File)
	dir = filepath.Base(dir)
	return fmt.Sprintf("%s/%s:%d", dir, file, frame.Line)
}
