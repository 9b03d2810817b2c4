package mcfg

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"sort"
	"strings"
)

// SourceCLI is a Source which parses configuration from the command line.
//
// CLI options are generated by joining a Param's FullName with dashes and
// prefixing it with "--", e.g. a Param whose FullName is "net-addr" is
// given on the command line as --net-addr.
//
// If "-h" is seen, a help page is printed to stderr and the process exits.
//
// Boolean params are special-cased: --some-flag with no value sets it to
// true, while --some-flag=false (or =0, or empty) sets it to false.
type SourceCLI struct {
	Args []string // if nil, os.Args[1:] is used

	DisableHelpPage bool
}

const (
	cliKeyPrefix = "--"
	cliValSep    = "="
	cliHelpArg   = "-h"
)

// Parse implements the Source interface.
func (cli *SourceCLI) Parse(params []Param) ([]ParamValue, error) {
	args := cli.Args
	if args == nil {
		args = os.Args[1:]
	}

	byArg := map[string]Param{}
	for _, p := range params {
		byArg[cliKeyPrefix+p.FullName()] = p
	}

	printHelpAndExit := func() {
		cli.printHelp(os.Stderr, byArg)
		os.Stderr.Sync()
		os.Exit(1)
	}

	pvs := make([]ParamValue, 0, len(args))
	var (
		p          Param
		pOk        bool
		pvStrVal   string
		pvStrValOk bool
	)
	for _, arg := range args {
		if pOk {
			pvStrVal = arg
			pvStrValOk = true
		} else if !cli.DisableHelpPage && arg == cliHelpArg {
			printHelpAndExit()
		} else {
			for key, candidate := range byArg {
				if arg == key {
					p, pOk = candidate, true
					break
				}
				prefix := key + cliValSep
				if strings.HasPrefix(arg, prefix) {
					p, pOk = candidate, true
					pvStrVal, pvStrValOk = strings.TrimPrefix(arg, prefix), true
					break
				}
			}
			if !pOk {
				return nil, fmt.Errorf("unexpected config parameter %q", arg)
			}
		}

		if p.IsBool && !pvStrValOk {
			pvStrVal, pvStrValOk = "true", true
		} else if !pvStrValOk {
			continue
		}

		pvs = append(pvs, ParamValue{Param: p, Value: fuzzyParse(p, pvStrVal)})
		p, pOk, pvStrVal, pvStrValOk = Param{}, false, "", false
	}
	if pOk && !pvStrValOk {
		return nil, fmt.Errorf("param %s expected a value", p.FullName())
	}

	return pvs, nil
}

func (cli *SourceCLI) printHelp(w io.Writer, byArg map[string]Param) {
	type pEntry struct {
		arg string
		Param
	}

	pA := make([]pEntry, 0, len(byArg))
	for arg, p := range byArg {
		pA = append(pA, pEntry{arg: arg, Param: p})
	}
	sort.Slice(pA, func(i, j int) bool {
		if pA[i].Required != pA[j].Required {
			return pA[i].Required
		}
		return pA[i].arg < pA[j].arg
	})

	fmtDefaultVal := func(ptr interface{}) string {
		if ptr == nil {
			return ""
		}
		val := reflect.Indirect(reflect.ValueOf(ptr))
		zero := reflect.Zero(val.Type())
		if reflect.DeepEqual(val.Interface(), zero.Interface()) {
			return ""
		} else if val.Type().Kind() == reflect.String {
			return fmt.Sprintf("%q", val.Interface())
		}
		return fmt.Sprint(val.Interface())
	}

	fmt.Fprintf(w, "Usage: %s", os.Args[0])
	if len(pA) > 0 {
		fmt.Fprint(w, " [options]")
	}
	fmt.Fprint(w, "\n\n")

	if len(pA) > 0 {
		fmt.Fprint(w, "Options:\n\n")
		for _, p := range pA {
			fmt.Fprintf(w, "\t%s", p.arg)
			if p.IsBool {
				fmt.Fprint(w, " (Flag)")
			} else if p.Required {
				fmt.Fprint(w, " (Required)")
			} else if defVal := fmtDefaultVal(p.Into); defVal != "" {
				fmt.Fprintf(w, " (Default: %s)", defVal)
			}
			fmt.Fprint(w, "\n")
			if usage := strings.TrimSpace(p.Usage); usage != "" {
				if !strings.HasSuffix(usage, ".") {
					usage += "."
				}
				fmt.Fprintln(w, "\t\t"+usage)
			}
			fmt.Fprint(w, "\n")
		}
	}
}
