// Package mlog is a small structured logger. Every log line is a JSON
// object carrying a severity, a human description, and a set of annotations
// pulled from the context.Context(s) passed alongside the message (see the
// mctx package).
package mlog

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/meilisearch/MeiliES/mctx"
	"github.com/meilisearch/MeiliES/merr"
)

// Level describes the severity of a log Message.
type Level struct {
	s string
	i int
}

// String gives the textual form of the Level, e.g. "INFO".
func (l Level) String() string { return l.s }

// Int gives the severity of the Level, lower being more severe. A Level
// with a negative Int halts the process after being logged.
func (l Level) Int() int { return l.i }

// Predefined Levels, ordered from least to most severe.
var (
	DebugLevel = Level{s: "DEBUG", i: 40}
	InfoLevel  = Level{s: "INFO", i: 30}
	WarnLevel  = Level{s: "WARN", i: 20}
	ErrorLevel = Level{s: "ERROR", i: 10}
	FatalLevel = Level{s: "FATAL", i: -1}
)

// LevelFromString parses one of the predefined Levels (case-insensitively),
// returning false if s doesn't name one.
func LevelFromString(s string) (Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DebugLevel, true
	case "INFO":
		return InfoLevel, true
	case "WARN":
		return WarnLevel, true
	case "ERROR":
		return ErrorLevel, true
	case "FATAL":
		return FatalLevel, true
	default:
		return Level{}, false
	}
}

// Message is a single entry to be logged. Contexts are merged together
// (later entries taking precedence on key collision) to produce the
// annotations attached to the logged line.
type Message struct {
	Level       Level
	Description string
	Contexts    []context.Context
}

// Logger writes Messages as JSON lines to an io.Writer. All methods are
// safe for concurrent use.
type Logger struct {
	l    sync.Mutex
	enc     *json.Encoder
	maxI    int
	now     func() time.Time
	ns      []string
	exit    func(code int)
	baseCtx []context.Context
}

// NewLogger returns a Logger writing to os.Stderr at InfoLevel.
func NewLogger() *Logger {
	return &Logger{
		enc:  json.NewEncoder(os.Stderr),
		maxI: InfoLevel.Int(),
		now:  time.Now,
		exit: os.Exit,
	}
}

// NewLoggerTo returns a Logger writing JSON lines to w.
func NewLoggerTo(w io.Writer) *Logger {
	return &Logger{
		enc:  json.NewEncoder(w),
		maxI: InfoLevel.Int(),
		now:  time.Now,
		exit: os.Exit,
	}
}

// SetMaxLevel sets the maximum (least severe) Level which will be written.
func (l *Logger) SetMaxLevel(lvl Level) {
	l.l.Lock()
	defer l.l.Unlock()
	l.maxI = lvl.Int()
}

// WithNamespace returns a clone of l which tags every Message with name, in
// addition to any namespace already carried.
func (l *Logger) WithNamespace(name string) *Logger {
	l.l.Lock()
	defer l.l.Unlock()
	return &Logger{
		enc:     l.enc,
		maxI:    l.maxI,
		now:     l.now,
		exit:    l.exit,
		ns:      append(append([]string{}, l.ns...), name),
		baseCtx: l.baseCtx,
	}
}

// withBaseContext returns a clone of l which includes ctx in every Message
// it logs, in addition to any base Context already carried.
func (l *Logger) withBaseContext(ctx context.Context) *Logger {
	l.l.Lock()
	defer l.l.Unlock()
	return &Logger{
		enc:     l.enc,
		maxI:    l.maxI,
		now:     l.now,
		exit:    l.exit,
		ns:      l.ns,
		baseCtx: append(append([]context.Context{}, l.baseCtx...), ctx),
	}
}

type lineJSON struct {
	Time        string            `json:"time"`
	Level       string            `json:"level"`
	Namespace   []string          `json:"ns,omitempty"`
	Description string            `json:"descr"`
	Annotations map[string]string `json:"annotations,omitempty"`
}

// Log writes msg if its Level is severe enough to pass the Logger's max
// Level. A FatalLevel Message terminates the process after being written.
func (l *Logger) Log(msg Message) {
	l.l.Lock()
	maxI, ns, enc, exit := l.maxI, l.ns, l.enc, l.exit
	l.l.Unlock()

	if msg.Level.Int() > maxI {
		return
	}

	l.l.Lock()
	baseCtx := l.baseCtx
	l.l.Unlock()

	aa := mctx.EvaluateAnnotations(nil, baseCtx...)
	aa = mctx.EvaluateAnnotations(aa, msg.Contexts...)
	line := lineJSON{
		Time:        l.now().UTC().Format(time.RFC3339Nano),
		Level:       msg.Level.String(),
		Namespace:   ns,
		Description: msg.Description,
		Annotations: aa.StringMap(),
	}

	l.l.Lock()
	_ = enc.Encode(line)
	l.l.Unlock()

	if msg.Level.Int() < 0 {
		exit(1)
	}
}

func mkMsg(lvl Level, descr string, ctxs []context.Context) Message {
	return Message{Level: lvl, Description: descr, Contexts: ctxs}
}

func mkErrMsg(lvl Level, descr string, err error, ctxs []context.Context) Message {
	all := append(append([]context.Context{}, ctxs...), merr.Context(err))

	var e merr.Error
	if errors.As(err, &e) {
		descr = descr + ": " + e.Err.Error()
	} else {
		descr = descr + ": " + err.Error()
	}
	return mkMsg(lvl, descr, all)
}

// Debug logs a DebugLevel Message.
func (l *Logger) Debug(descr string, ctxs ...context.Context) {
	l.Log(mkMsg(DebugLevel, descr, ctxs))
}

// Info logs an InfoLevel Message.
func (l *Logger) Info(descr string, ctxs ...context.Context) {
	l.Log(mkMsg(InfoLevel, descr, ctxs))
}

// Warn logs a WarnLevel Message describing err.
func (l *Logger) Warn(descr string, err error, ctxs ...context.Context) {
	l.Log(mkErrMsg(WarnLevel, descr, err, ctxs))
}

// Error logs an ErrorLevel Message describing err.
func (l *Logger) Error(descr string, err error, ctxs ...context.Context) {
	l.Log(mkErrMsg(ErrorLevel, descr, err, ctxs))
}

// Fatal logs a FatalLevel Message, then exits the process.
func (l *Logger) Fatal(descr string, ctxs ...context.Context) {
	l.Log(mkMsg(FatalLevel, descr, ctxs))
}
