package m

import (
	"context"
	"testing"

	"github.com/meilisearch/MeiliES/mcfg"
	"github.com/meilisearch/MeiliES/mrun"
)

func TestRootComponentDefaultLogLevel(t *testing.T) {
	cmp := RootComponent()
	cmp.SetValue(cmpKeyCfgSrc, mcfg.Source(&mcfg.SourceEnv{Env: nil}))

	if err := mrun.Init(context.Background(), cmp); err != nil {
		t.Fatal(err)
	}
}

func TestRootComponentInvalidLogLevelFails(t *testing.T) {
	cmp := RootComponent()
	cmp.SetValue(cmpKeyCfgSrc, mcfg.Source(&mcfg.SourceEnv{Env: []string{"LOG_LEVEL=bogus"}}))

	if err := mrun.Init(context.Background(), cmp); err == nil {
		t.Fatal("expected Init to fail on an invalid log-level")
	}
}

func TestRootServiceComponentUsesEnvAndCLI(t *testing.T) {
	cmp := RootServiceComponent()

	src, ok := cmp.Value(cmpKeyCfgSrc).(mcfg.Source)
	if !ok {
		t.Fatal("expected a configuration Source to be set")
	}
	srcs, ok := src.(mcfg.Sources)
	if !ok || len(srcs) != 2 {
		t.Fatalf("expected RootServiceComponent to chain two Sources, got %#v", src)
	}
	if _, ok := srcs[0].(*mcfg.SourceEnv); !ok {
		t.Fatalf("expected first Source to be SourceEnv, got %T", srcs[0])
	}

	if infoLog, _ := cmp.Value(cmpKeyInfoLog).(bool); !infoLog {
		t.Fatal("expected RootServiceComponent to mark debug logs as info-level")
	}
}
