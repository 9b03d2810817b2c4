package mrun

import (
	"context"
	"errors"
	"testing"

	"github.com/meilisearch/MeiliES/mcmp"
	"github.com/meilisearch/MeiliES/mtest/massert"
)

// TestHookOrder guards against reintroducing a breadth-first-by-Component
// walk: hooks registered anywhere in the tree must run in one global order
// on Init, and in the exact reverse of that order on Shutdown, regardless
// of which Component they were attached to or how deeply it's nested.
func TestHookOrder(t *testing.T) {
	var out []int
	mkHook := func(i int) Hook {
		return func(context.Context) error {
			out = append(out, i)
			return nil
		}
	}

	cmp := new(mcmp.Component)
	InitHook(cmp, mkHook(1))
	InitHook(cmp, mkHook(2))

	cmpA := cmp.Child("a")
	InitHook(cmpA, mkHook(3))

	InitHook(cmp, mkHook(4))

	cmpB := cmp.Child("b")
	InitHook(cmpB, mkHook(5))
	cmpB1 := cmpB.Child("1")
	InitHook(cmpB1, mkHook(6))

	InitHook(cmp, mkHook(7))

	massert.Fatal(t, massert.All(
		massert.Nil(Init(context.Background(), cmp)),
		massert.Equal([]int{1, 2, 3, 4, 5, 6, 7}, out),
	))

	out = nil
	ShutdownHook(cmp, mkHook(1))
	ShutdownHook(cmp, mkHook(2))
	ShutdownHook(cmpA, mkHook(3))
	ShutdownHook(cmp, mkHook(4))
	ShutdownHook(cmpB, mkHook(5))
	ShutdownHook(cmpB1, mkHook(6))
	ShutdownHook(cmp, mkHook(7))

	massert.Fatal(t, massert.All(
		massert.Nil(Shutdown(context.Background(), cmp)),
		massert.Equal([]int{7, 6, 5, 4, 3, 2, 1}, out),
	))
}

func TestInitStopsOnError(t *testing.T) {
	var out []int
	mkHook := func(i int, err error) Hook {
		return func(context.Context) error {
			out = append(out, i)
			return err
		}
	}

	cmp := new(mcmp.Component)
	boom := errors.New("boom")
	InitHook(cmp, mkHook(1, nil))
	InitHook(cmp, mkHook(2, boom))
	InitHook(cmp, mkHook(3, nil))

	massert.Fatal(t, massert.All(
		massert.Equal(boom, Init(context.Background(), cmp)),
		massert.Equal([]int{1, 2}, out),
	))
}

func TestShutdownRunsEveryHookDespiteErrors(t *testing.T) {
	var out []int
	mkHook := func(i int, err error) Hook {
		return func(context.Context) error {
			out = append(out, i)
			return err
		}
	}

	cmp := new(mcmp.Component)
	boom := errors.New("boom")
	ShutdownHook(cmp, mkHook(1, nil))
	ShutdownHook(cmp, mkHook(2, boom))
	ShutdownHook(cmp, mkHook(3, nil))

	massert.Fatal(t, massert.All(
		massert.Equal(boom, Shutdown(context.Background(), cmp)),
		massert.Equal([]int{3, 2, 1}, out),
	))
}
