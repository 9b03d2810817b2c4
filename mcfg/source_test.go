package mcfg

import (
	"fmt"
	"strings"
	. "testing"
	"time"

	"github.com/meilisearch/MeiliES/mcmp"
	"github.com/meilisearch/MeiliES/mtest/mchk"
)

// TestPopulateFromEnv checks Populate against SourceEnv, driven by mchk: for
// a growing sequence of int parameters named p1, p2, ..., every second one
// given an env var and the rest left to their defaults, Populate must end up
// with every parameter holding the value its env var (or, absent one, its
// default) says it should.
func TestPopulateFromEnv(t *T) {
	type state struct {
		cmp  *mcmp.Component
		env  []string
		want map[string]int
		ptrs map[string]*int
	}

	type params struct {
		name   string
		useEnv bool
		envVal int
		defVal int
	}

	chk := mchk.Checker{
		Init: func() mchk.State {
			return state{
				cmp:  new(mcmp.Component),
				want: map[string]int{},
				ptrs: map[string]*int{},
			}
		},
		Next: func(ss mchk.State) mchk.Action {
			s := ss.(state)
			n := len(s.want) + 1
			return mchk.Action{Params: params{
				name:   fmt.Sprintf("p%d", n),
				useEnv: n%2 == 0,
				envVal: n * 7,
				defVal: n,
			}}
		},
		Apply: func(ss mchk.State, a mchk.Action) (mchk.State, error) {
			s := ss.(state)
			p := a.Params.(params)

			ptr := Int(s.cmp, p.name, ParamDefault(p.defVal))
			s.ptrs[p.name] = ptr

			want := p.defVal
			if p.useEnv {
				s.env = append(s.env, strings.ToUpper(p.name)+"="+fmt.Sprint(p.envVal))
				want = p.envVal
			}
			s.want[p.name] = want

			src := &SourceEnv{Env: s.env}
			if err := Populate(s.cmp, src); err != nil {
				return s, err
			}
			for name, wantVal := range s.want {
				if got := *s.ptrs[name]; got != wantVal {
					return s, fmt.Errorf("param %s: got %d, want %d", name, got, wantVal)
				}
			}
			return s, nil
		},
		MaxLength: 20,
	}

	if err := chk.RunFor(2 * time.Second); err != nil {
		t.Fatal(err)
	}
}

// TestPopulateRequiredMissing asserts that Populate errors when a Required
// parameter has no Source value and no default.
func TestPopulateRequiredMissing(t *T) {
	cmp := new(mcmp.Component)
	String(cmp, "must-set", ParamRequired())
	if err := Populate(cmp, nil); err == nil {
		t.Fatal("expected error for missing required param")
	}
}

// TestPopulateNestedComponent asserts that a param registered on a child
// Component is addressable, and populated, via its full dashed path.
func TestPopulateNestedComponent(t *T) {
	cmp := new(mcmp.Component)
	child := cmp.Child("net")
	addr := String(child, "addr", ParamDefault("default"))

	src := &SourceEnv{Env: []string{"NET_ADDR=localhost:1234"}}
	if err := Populate(cmp, src); err != nil {
		t.Fatal(err)
	}
	if *addr != "localhost:1234" {
		t.Fatalf("got %q, want %q", *addr, "localhost:1234")
	}
}
