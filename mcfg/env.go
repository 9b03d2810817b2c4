package mcfg

import (
	"os"
	"strings"
)

// SourceEnv is a Source which parses configuration from the process
// environment.
//
// Env options are generated by joining a Param's FullName on underscores
// instead of dashes and uppercasing it, e.g. a Param whose FullName is
// "net-addr" is expected as the env var NET_ADDR.
type SourceEnv struct {
	// Env holds the key=value pairs to parse. Defaults to os.Environ() if
	// nil.
	Env []string

	// Prefix, if set, must precede every expected env var name (itself
	// uppercased, with dashes replaced by underscores).
	Prefix string
}

func (env *SourceEnv) expectedName(fullName string) string {
	out := strings.Replace(fullName, "-", "_", -1)
	out = strings.ToUpper(out)
	if env.Prefix != "" {
		out = strings.ToUpper(strings.Replace(env.Prefix, "-", "_", -1)) + "_" + out
	}
	return out
}

// Parse implements the Source interface.
func (env *SourceEnv) Parse(params []Param) ([]ParamValue, error) {
	kvs := env.Env
	if kvs == nil {
		kvs = os.Environ()
	}

	byEnvName := map[string]Param{}
	for _, p := range params {
		byEnvName[env.expectedName(p.FullName())] = p
	}

	pvs := make([]ParamValue, 0, len(kvs))
	for _, kv := range kvs {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if p, ok := byEnvName[k]; ok {
			pvs = append(pvs, ParamValue{Param: p, Value: fuzzyParse(p, v)})
		}
	}

	return pvs, nil
}
