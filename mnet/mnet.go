// Package mnet extends the standard package with extra functionality which is
// commonly useful
package mnet

import (
	"context"
	"net"
	"strings"

	"github.com/meilisearch/MeiliES/mcfg"
	"github.com/meilisearch/MeiliES/mcmp"
	"github.com/meilisearch/MeiliES/mctx"
	"github.com/meilisearch/MeiliES/merr"
	"github.com/meilisearch/MeiliES/mlog"
	"github.com/meilisearch/MeiliES/mrun"
)

// Listener is returned by InstListener and InstListenerHostPort and simply
// wraps a net.Listener.
type Listener struct {
	// One of these will be populated during the start hook, depending on the
	// protocol configured.
	net.Listener
	net.PacketConn

	cmp *mcmp.Component
}

type listenerOpts struct {
	proto           string
	defaultAddr     string
	closeOnShutdown bool
}

func (lOpts listenerOpts) isPacketConn() bool {
	proto := strings.ToLower(lOpts.proto)
	return strings.HasPrefix(proto, "udp") ||
		proto == "unixgram" ||
		strings.HasPrefix(proto, "ip")
}

// ListenerOpt is a value which adjusts the behavior of InstListener and
// InstListenerHostPort.
type ListenerOpt func(*listenerOpts)

// ListenerProtocol adjusts the protocol which the Listener uses. The default is
// "tcp".
func ListenerProtocol(proto string) ListenerOpt {
	return func(opts *listenerOpts) {
		opts.proto = proto
	}
}

// ListenerCloseOnShutdown sets the Listener's behavior when mrun's Shutdown
// event is triggered on its Component. If true the Listener will call Close on
// itself, if false it will do nothing.
//
// Defaults to true.
func ListenerCloseOnShutdown(closeOnShutdown bool) ListenerOpt {
	return func(opts *listenerOpts) {
		opts.closeOnShutdown = closeOnShutdown
	}
}

// ListenerDefaultAddr adjusts the defaultAddr which the Listener will use. The
// addr will still be configurable via mcfg regardless of what this is set to.
// The default is ":0".
func ListenerDefaultAddr(defaultAddr string) ListenerOpt {
	return func(opts *listenerOpts) {
		opts.defaultAddr = defaultAddr
	}
}

// InstListener instantiates a Listener which will be initialized when the Init
// event is triggered on the given Component, and closed when the Shutdown event
// is triggered on it (unless ListenerCloseOnShutdown(false) was given).
func InstListener(cmp *mcmp.Component, opts ...ListenerOpt) *Listener {
	lOpts := listenerOpts{
		proto:           "tcp",
		defaultAddr:     ":0",
		closeOnShutdown: true,
	}
	for _, opt := range opts {
		opt(&lOpts)
	}

	cmp = cmp.Child("net")
	l := &Listener{cmp: cmp}

	addr := mcfg.String(cmp, "listen-addr",
		mcfg.ParamDefault(lOpts.defaultAddr),
		mcfg.ParamUsage(
			strings.ToUpper(lOpts.proto)+" address to listen on in format "+
				"[host]:port. If port is 0 then a random one will be chosen",
		),
	)

	mrun.InitHook(cmp, func(context.Context) error {
		var err error

		cmp.Annotate("proto", lOpts.proto, "addr", *addr)

		if lOpts.isPacketConn() {
			l.PacketConn, err = net.ListenPacket(lOpts.proto, *addr)
			cmp.Annotate("addr", l.PacketConn.LocalAddr().String())
		} else {
			l.Listener, err = net.Listen(lOpts.proto, *addr)
			cmp.Annotate("addr", l.Listener.Addr().String())
		}
		if err != nil {
			return merr.Wrap(err, cmp.Context())
		}

		mlog.From(cmp).Info("listening")
		return nil
	})

	// TODO track connections and wait for them to complete before shutting
	// down?
	mrun.ShutdownHook(cmp, func(context.Context) error {
		if !lOpts.closeOnShutdown {
			return nil
		}
		mlog.From(cmp).Info("shutting down listener")
		return l.Close()
	})

	return l
}

// InstListenerHostPort is like InstListener but exposes separate --hostname
// and --port parameters instead of a single combined listen-addr, for
// commands whose CLI surface names them individually.
func InstListenerHostPort(cmp *mcmp.Component, defaultHost, defaultPort string, opts ...ListenerOpt) *Listener {
	lOpts := listenerOpts{
		proto:           "tcp",
		closeOnShutdown: true,
	}
	for _, opt := range opts {
		opt(&lOpts)
	}

	// hostname and port are registered on cmp itself, not on the "net"
	// child, so that their flags are --hostname and --port.
	host := mcfg.String(cmp, "hostname",
		mcfg.ParamDefault(defaultHost),
		mcfg.ParamUsage("Host address to listen on."))
	port := mcfg.String(cmp, "port",
		mcfg.ParamDefault(defaultPort),
		mcfg.ParamUsage("Port to listen on."))

	cmp = cmp.Child("net")
	l := &Listener{cmp: cmp}

	mrun.InitHook(cmp, func(context.Context) error {
		var err error
		addr := net.JoinHostPort(*host, *port)

		cmp.Annotate("proto", lOpts.proto, "addr", addr)

		if lOpts.isPacketConn() {
			l.PacketConn, err = net.ListenPacket(lOpts.proto, addr)
			cmp.Annotate("addr", l.PacketConn.LocalAddr().String())
		} else {
			l.Listener, err = net.Listen(lOpts.proto, addr)
			cmp.Annotate("addr", l.Listener.Addr().String())
		}
		if err != nil {
			return merr.Wrap(err, cmp.Context())
		}

		mlog.From(cmp).Info("listening")
		return nil
	})

	mrun.ShutdownHook(cmp, func(context.Context) error {
		if !lOpts.closeOnShutdown {
			return nil
		}
		mlog.From(cmp).Info("shutting down listener")
		return l.Close()
	})

	return l
}

// Accept wraps a call to Accept on the underlying net.Listener, providing debug
// logging.
func (l *Listener) Accept() (net.Conn, error) {
	conn, err := l.Listener.Accept()
	if err != nil {
		return conn, err
	}
	mlog.From(l.cmp).Debug("connection accepted",
		mctx.Annotated("remoteAddr", conn.RemoteAddr().String()))
	return conn, nil
}

// Close wraps a call to Close on the underlying net.Listener, logging an
// info-level line.
func (l *Listener) Close() error {
	mlog.From(l.cmp).Info("listener closing")
	if l.Listener != nil {
		return l.Listener.Close()
	}
	return l.PacketConn.Close()
}

