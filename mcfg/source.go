package mcfg

import "encoding/json"

// ParamValue is a value parsed for a Param by a Source.
type ParamValue struct {
	Param
	Value json.RawMessage
}

// Source parses ParamValues for the given Params out of some external
// configuration medium (the CLI, the environment, ...). A Param it knows
// nothing about is simply omitted from the result.
type Source interface {
	Parse(params []Param) ([]ParamValue, error)
}

// Sources chains multiple Sources together. Later Sources' values take
// precedence over earlier ones for the same Param.
type Sources []Source

// Parse implements the Source interface.
func (ss Sources) Parse(params []Param) ([]ParamValue, error) {
	byName := map[string]ParamValue{}
	var order []string
	for _, s := range ss {
		pvs, err := s.Parse(params)
		if err != nil {
			return nil, err
		}
		for _, pv := range pvs {
			name := pv.Param.FullName()
			if _, ok := byName[name]; !ok {
				order = append(order, name)
			}
			byName[name] = pv
		}
	}

	out := make([]ParamValue, 0, len(order))
	for _, name := range order {
		out = append(out, byName[name])
	}
	return out, nil
}
