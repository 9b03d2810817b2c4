package mnet

import (
	"context"
	"net"
	"testing"

	"github.com/meilisearch/MeiliES/mcmp"
	"github.com/meilisearch/MeiliES/mrun"
)

func TestInstListenerInitAndShutdown(t *testing.T) {
	cmp := new(mcmp.Component)
	l := InstListener(cmp, ListenerDefaultAddr("127.0.0.1:0"))

	if err := mrun.Init(context.Background(), cmp); err != nil {
		t.Fatal(err)
	}
	if l.Listener == nil {
		t.Fatal("expected Listener to be populated after Init")
	}
	addr := l.Listener.Addr().String()

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatal(err)
	}
	conn.Close()

	if err := mrun.Shutdown(context.Background(), cmp); err != nil {
		t.Fatal(err)
	}

	if _, err := net.Dial("tcp", addr); err == nil {
		t.Fatal("expected dial to fail after Shutdown closed the listener")
	}
}

func TestInstListenerCloseOnShutdownFalse(t *testing.T) {
	cmp := new(mcmp.Component)
	l := InstListener(cmp, ListenerDefaultAddr("127.0.0.1:0"), ListenerCloseOnShutdown(false))

	if err := mrun.Init(context.Background(), cmp); err != nil {
		t.Fatal(err)
	}
	addr := l.Listener.Addr().String()

	if err := mrun.Shutdown(context.Background(), cmp); err != nil {
		t.Fatal(err)
	}

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("expected listener to remain open: %v", err)
	}
	conn.Close()
	l.Close()
}

func TestInstListenerHostPort(t *testing.T) {
	cmp := new(mcmp.Component)
	l := InstListenerHostPort(cmp, "127.0.0.1", "0")

	if err := mrun.Init(context.Background(), cmp); err != nil {
		t.Fatal(err)
	}
	defer mrun.Shutdown(context.Background(), cmp)

	if l.Listener == nil {
		t.Fatal("expected Listener to be populated after Init")
	}
	host, _, err := net.SplitHostPort(l.Listener.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	if host != "127.0.0.1" {
		t.Fatalf("got host %q, want 127.0.0.1", host)
	}
}
