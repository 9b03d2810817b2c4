// Package merr extends the builtin error type with embedded stacktraces and
// contextual annotations (via mctx), so that an error surfaced at a command
// boundary still carries enough detail for the server's own logs.
//
// As is recommended for Go generally, errors.Is and errors.As should be used
// for equality checking against merr-wrapped errors.
package merr

import (
	"context"
	"errors"
	"strings"

	"github.com/meilisearch/MeiliES/mctx"
)

// Error wraps another error with a captured stacktrace and a Context of
// annotations collected at each point the error was wrapped.
type Error struct {
	Err        error
	Ctx        context.Context
	Stacktrace Stacktrace
}

// Error implements the error interface, rendering the wrapped message
// followed by its annotations.
func (e Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Err.Error())

	aa := mctx.EvaluateAnnotations(nil, e.Ctx)
	aa["errSrc"] = e.Stacktrace.String()
	for _, kv := range aa.StringSlice(true) {
		sb.WriteString("\n\t* ")
		sb.WriteString(kv[0])
		sb.WriteString(": ")
		sb.WriteString(kv[1])
	}
	return sb.String()
}

// Unwrap implements the interface used by errors.Is/errors.As.
func (e Error) Unwrap() error {
	return e.Err
}

// WrapSkip is like Wrap but allows skipping extra stack frames when
// capturing the stacktrace, for helpers built on top of Wrap.
func WrapSkip(err error, skip int, ctxs ...context.Context) error {
	if err == nil {
		return nil
	}

	merged := mctx.Annotated()
	for _, ctx := range ctxs {
		merged = mctx.Annotate(merged, flattenAnnotations(ctx)...)
	}

	var e Error
	if errors.As(err, &e) {
		e.Err = err
		e.Ctx = mctx.Annotate(e.Ctx, flattenAnnotations(merged)...)
		return e
	}

	return Error{
		Err:        err,
		Ctx:        merged,
		Stacktrace: newStacktrace(skip + 1),
	}
}

func flattenAnnotations(ctx context.Context) []interface{} {
	if ctx == nil {
		return nil
	}
	aa := mctx.EvaluateAnnotations(nil, ctx)
	kvs := make([]interface{}, 0, len(aa)*2)
	for k, v := range aa {
		kvs = append(kvs, k, v)
	}
	return kvs
}

// Wrap wraps err, attaching a stacktrace (if err isn't already an Error)
// and merging in annotations from ctxs.
//
// Wrapping a nil error returns nil.
func Wrap(err error, ctxs ...context.Context) error {
	return WrapSkip(err, 1, ctxs...)
}

// New is a shortcut for Wrap(errors.New(msg), ctxs...).
func New(msg string, ctxs ...context.Context) error {
	return WrapSkip(errors.New(msg), 1, ctxs...)
}

// Context returns the annotated Context embedded in err by Wrap/New, or
// context.Background() if err wasn't wrapped by this package.
func Context(err error) context.Context {
	var e Error
	if errors.As(err, &e) && e.Ctx != nil {
		return e.Ctx
	}
	return context.Background()
}
