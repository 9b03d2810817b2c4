// Command meilies-publish connects to a MeiliES server and issues a
// single publish command built from its three positional arguments
// (stream, event name, event data), printing the server's reply.
package main

import (
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/meilisearch/MeiliES/mcfg"
	"github.com/meilisearch/MeiliES/mcmp"
	"github.com/meilisearch/MeiliES/merr"
	"github.com/meilisearch/MeiliES/resp"
)

// splitFlagsAndPositional separates the leading --flag/--flag=value
// arguments (understood by mcfg) from the trailing positional arguments.
// The first argument that doesn't start with "--" (and isn't the value of
// a preceding flag) begins the positional run.
func splitFlagsAndPositional(args []string) (flags, positional []string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "--") {
			return args[:i], args[i:]
		}
		flags = append(flags, arg)
		if !strings.Contains(arg, "=") && i+1 < len(args) {
			i++
			flags = append(flags, args[i])
		}
	}
	return flags, nil
}

func main() {
	flagArgs, posArgs := splitFlagsAndPositional(os.Args[1:])
	if len(posArgs) != 3 {
		fmt.Fprintln(os.Stderr, "usage: meilies-publish [--hostname host] [--port port] <stream> <event-name> <event-data>")
		os.Exit(1)
	}

	cmp := new(mcmp.Component)
	host := mcfg.String(cmp, "hostname", mcfg.ParamDefault("127.0.0.1"))
	port := mcfg.String(cmp, "port", mcfg.ParamDefault("6480"))
	if err := mcfg.Populate(cmp, mcfg.Sources{&mcfg.SourceCLI{Args: flagArgs}}); err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}

	conn, err := net.Dial("tcp", net.JoinHostPort(*host, *port))
	if err != nil {
		fmt.Fprintln(os.Stderr, merr.Wrap(err))
		os.Exit(1)
	}
	defer conn.Close()

	req := resp.Arr(
		resp.BulkStr("publish"),
		resp.BulkStr(posArgs[0]),
		resp.BulkStr(posArgs[1]),
		resp.BulkStr(posArgs[2]),
	)
	if err := resp.NewEncoder(conn).Encode(req); err != nil {
		fmt.Fprintln(os.Stderr, merr.Wrap(err))
		os.Exit(1)
	}

	reply, err := resp.NewDecoder(conn).Decode()
	if err != nil {
		fmt.Fprintln(os.Stderr, merr.Wrap(err))
		os.Exit(1)
	}

	if reply.Kind == resp.Error {
		fmt.Fprintln(os.Stderr, reply.String())
		os.Exit(1)
	}
	fmt.Println(reply.String())
}
