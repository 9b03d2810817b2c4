package mlog

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/meilisearch/MeiliES/mctx"
)

func newTestLogger(buf *bytes.Buffer) *Logger {
	l := NewLoggerTo(buf)
	l.now = func() time.Time { return time.Unix(0, 0).UTC() }
	l.exit = func(int) {}
	return l
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []lineJSON {
	t.Helper()
	dec := json.NewDecoder(buf)
	var lines []lineJSON
	for dec.More() {
		var l lineJSON
		if err := dec.Decode(&l); err != nil {
			t.Fatal(err)
		}
		lines = append(lines, l)
	}
	return lines
}

func TestLoggerWritesJSONLine(t *testing.T) {
	buf := new(bytes.Buffer)
	l := newTestLogger(buf)
	l.Info("hello", mctx.Annotated("k", "v"))

	lines := decodeLines(t, buf)
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	if lines[0].Level != "INFO" || lines[0].Description != "hello" {
		t.Fatalf("unexpected line: %+v", lines[0])
	}
	if lines[0].Annotations["k"] != "v" {
		t.Fatalf("missing annotation: %+v", lines[0].Annotations)
	}
}

func TestSetMaxLevelFilters(t *testing.T) {
	buf := new(bytes.Buffer)
	l := newTestLogger(buf)
	l.SetMaxLevel(WarnLevel)

	l.Debug("should not appear")
	l.Info("should not appear either")
	l.Warn("should appear", errors.New("boom"))

	lines := decodeLines(t, buf)
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	if lines[0].Level != "WARN" {
		t.Fatalf("unexpected level: %s", lines[0].Level)
	}
}

func TestWithNamespaceAccumulates(t *testing.T) {
	buf := new(bytes.Buffer)
	l := newTestLogger(buf).WithNamespace("a").WithNamespace("b")
	l.Info("msg")

	lines := decodeLines(t, buf)
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	want := []string{"a", "b"}
	if len(lines[0].Namespace) != 2 || lines[0].Namespace[0] != want[0] || lines[0].Namespace[1] != want[1] {
		t.Fatalf("got namespace %v, want %v", lines[0].Namespace, want)
	}
}

func TestWithBaseContextMerges(t *testing.T) {
	buf := new(bytes.Buffer)
	l := newTestLogger(buf).withBaseContext(mctx.Annotated("base", "1"))
	l.Info("msg", mctx.Annotated("extra", "2"))

	lines := decodeLines(t, buf)
	if lines[0].Annotations["base"] != "1" || lines[0].Annotations["extra"] != "2" {
		t.Fatalf("missing merged annotations: %+v", lines[0].Annotations)
	}
}

func TestFatalCallsExitNotOSExit(t *testing.T) {
	buf := new(bytes.Buffer)
	l := newTestLogger(buf)
	exited := false
	l.exit = func(code int) { exited = true }

	l.Fatal("dying")
	if !exited {
		t.Fatal("expected injected exit func to be called")
	}
}
