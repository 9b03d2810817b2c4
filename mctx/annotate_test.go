package mctx

import (
	"context"
	. "testing"

	"github.com/meilisearch/MeiliES/mtest/massert"
)

func TestAnnotate(t *T) {
	ctx := Annotated("a", 1, "b", 2)
	aa := EvaluateAnnotations(nil, ctx)
	massert.Fatal(t, massert.All(
		massert.Equal(1, aa["a"]),
		massert.Equal(2, aa["b"]),
	))

	// a later Annotate call overrides an earlier key
	ctx = Annotate(ctx, "a", 3)
	aa = EvaluateAnnotations(nil, ctx)
	massert.Fatal(t, massert.Equal(3, aa["a"]))
}

func TestAnnotateNoKVsIsNoop(t *T) {
	ctx := context.Background()
	var kvs []interface{}
	if Annotate(ctx, kvs...) != ctx {
		t.Fatal("Annotate with no kvs should return ctx unchanged")
	}
}

func TestAnnotatePanicsOnOddArgs(t *T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on odd number of arguments")
		}
	}()
	Annotate(context.Background(), "a")
}

func TestEvaluateAnnotationsMultipleContexts(t *T) {
	ctx1 := Annotated("a", 1, "b", 2)
	ctx2 := Annotated("b", 3, "c", 4)

	aa := EvaluateAnnotations(nil, ctx1, ctx2)
	massert.Fatal(t, massert.All(
		massert.Equal(1, aa["a"]),
		massert.Equal(3, aa["b"]), // ctx2 takes precedence
		massert.Equal(4, aa["c"]),
	))
}

func TestAnnotationsStringSliceSorted(t *T) {
	aa := Annotations{"b": 2, "a": 1}
	got := aa.StringSlice(true)
	massert.Fatal(t, massert.Equal([][2]string{{"a", "1"}, {"b", "2"}}, got))
}
