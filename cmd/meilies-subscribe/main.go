// Command meilies-subscribe connects to a MeiliES server and issues a
// subscribe command built from its positional stream-subscription
// arguments, printing every record it receives until reading from the
// connection fails (e.g. the server closes it). It does not exit on its own
// when bounded subscriptions reach end-of-stream.
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
// arguments (understood by mcfg) from the trailing positional
// subscription arguments. The first argument that doesn't start with "--"
// (and isn't the value of a preceding flag) begins the positional run.
func splitFlagsAndPositional(args []string) (flags, positional []string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "--") {
			return args[:i], args[i:]
		}
		flags = append(flags, arg)
		if !strings.Contains(arg, "=") && arg != "--help" && i+1 < len(args) {
			i++
			flags = append(flags, args[i])
		}
	}
	return flags, nil
}

func main() {
	flagArgs, subArgs := splitFlagsAndPositional(os.Args[1:])
	if len(subArgs) == 0 {
		fmt.Fprintln(os.Stderr, "usage: meilies-subscribe [--hostname host] [--port port] <sub> [<sub> ...]")
		os.Exit(1)
	}

	cmp := new(mcmp.Component)
	host := mcfg.String(cmp, "hostname", mcfg.ParamDefault("127.0.0.1"))
	port := mcfg.String(cmp, "port", mcfg.ParamDefault("6480"))
	if err := mcfg.Populate(cmp, mcfg.Sources{&mcfg.SourceCLI{Args: flagArgs}}); err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}

	args := make([]resp.Value, 0, len(subArgs)+1)
	args = append(args, resp.BulkStr("subscribe"))
	for _, sub := range subArgs {
		args = append(args, resp.BulkStr(sub))
	}

	conn, err := net.Dial("tcp", net.JoinHostPort(*host, *port))
	if err != nil {
		fmt.Fprintln(os.Stderr, merr.Wrap(err))
		os.Exit(1)
	}
	defer conn.Close()

	enc := resp.NewEncoder(conn)
	if err := enc.Encode(resp.Arr(args...)); err != nil {
		fmt.Fprintln(os.Stderr, merr.Wrap(err))
		os.Exit(1)
	}

	dec := resp.NewDecoder(conn)
	for {
		v, err := dec.Decode()
		if err != nil {
			fmt.Fprintln(os.Stderr, merr.Wrap(err))
			os.Exit(1)
		}
		printRecord(v)
	}
}

func printRecord(v resp.Value) {
	if v.Kind != resp.Array || len(v.Elems) == 0 {
		fmt.Println(v.String())
		return
	}
	parts := make([]string, len(v.Elems))
	for i, elem := range v.Elems {
		parts[i] = elem.String()
	}
	fmt.Println(strings.Join(parts, " "))
}
