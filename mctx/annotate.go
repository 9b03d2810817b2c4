package mctx

import (
	"context"
	"fmt"
	"sort"
)

type annotationKey struct{}

type annotation struct {
	key, value interface{}
	prev       *annotation
}

// Annotate takes in one or more key/value pairs (an even number of
// arguments) and returns a Context carrying them alongside whatever
// annotations ctx already carried. Later calls take precedence over earlier
// ones for the same key.
func Annotate(ctx context.Context, kvs ...interface{}) context.Context {
	if len(kvs)%2 != 0 {
		panic("mctx.Annotate called with an odd number of arguments")
	} else if len(kvs) == 0 {
		return ctx
	}

	prev, _ := ctx.Value(annotationKey{}).(*annotation)
	for i := 0; i < len(kvs); i += 2 {
		prev = &annotation{key: kvs[i], value: kvs[i+1], prev: prev}
	}
	return context.WithValue(ctx, annotationKey{}, prev)
}

// Annotated is a shortcut for Annotate(context.Background(), kvs...).
func Annotated(kvs ...interface{}) context.Context {
	return Annotate(context.Background(), kvs...)
}

// Annotations is an unordered set of key/value pairs extracted from a
// Context (or a set of Contexts) via Annotate; StringSlice can sort them.
type Annotations map[interface{}]interface{}

// EvaluateAnnotations merges the annotations carried by each of ctxs into
// out (which may be nil) and returns it. Annotations from later Contexts in
// ctxs take precedence over earlier ones on key collision.
func EvaluateAnnotations(out Annotations, ctxs ...context.Context) Annotations {
	if out == nil {
		out = Annotations{}
	}
	for _, ctx := range ctxs {
		if ctx == nil {
			continue
		}
		var chain []*annotation
		for a, _ := ctx.Value(annotationKey{}).(*annotation); a != nil; a = a.prev {
			chain = append(chain, a)
		}
		// chain is newest-first; walk it oldest-first so newest wins.
		for i := len(chain) - 1; i >= 0; i-- {
			out[chain[i].key] = chain[i].value
		}
	}
	return out
}

// StringMap formats every key/value in the Annotations via fmt.Sprint.
func (aa Annotations) StringMap() map[string]string {
	out := make(map[string]string, len(aa))
	for k, v := range aa {
		out[fmt.Sprint(k)] = fmt.Sprint(v)
	}
	return out
}

// StringSlice is like StringMap but returns key/value tuples, optionally
// sorted by key.
func (aa Annotations) StringSlice(sorted bool) [][2]string {
	m := aa.StringMap()
	out := make([][2]string, 0, len(m))
	for k, v := range m {
		out = append(out, [2]string{k, v})
	}
	if sorted {
		sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	}
	return out
}
