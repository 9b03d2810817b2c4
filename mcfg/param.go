// Package mcfg registers typed configuration parameters against a
// mcmp.Component tree and fills them in from a Source (CLI flags,
// environment variables, or both).
//
// A parameter's full name is derived from its owning Component's Path plus
// its own Name, e.g. a Param named "addr" registered on a Component with
// Path []string{"net"} is addressable on the CLI as --net-addr.
package mcfg

import (
	"strings"

	"github.com/meilisearch/MeiliES/mcmp"
)

// Param describes a single configuration value.
type Param struct {
	Component *mcmp.Component
	Name      string
	Usage     string

	IsBool   bool
	IsString bool
	Required bool

	// Into is a pointer to the value which will be overwritten by Populate.
	// Its pre-Populate contents are also the parameter's default value.
	Into interface{}
}

// FullName joins the Param's Component path and Name into the dash-joined
// form used by the CLI and environment Sources.
func (p Param) FullName() string {
	return strings.Join(append(append([]string{}, p.Component.Path()...), p.Name), "-")
}

type paramsKey struct{}

func addParam(p Param) {
	cmp := p.Component
	existing, _ := cmp.Value(paramsKey{}).([]Param)
	for _, e := range existing {
		if e.Name == p.Name {
			panic("duplicate param name " + p.Name + " on component " + p.FullName())
		}
	}
	cmp.SetValue(paramsKey{}, append(existing, p))
}

func localParams(cmp *mcmp.Component) []Param {
	ps, _ := cmp.Value(paramsKey{}).([]Param)
	return ps
}

// CollectParams gathers every Param registered on cmp and all of its
// descendants.
func CollectParams(cmp *mcmp.Component) []Param {
	var out []Param
	mcmp.BreadthFirstVisit(cmp, func(c *mcmp.Component) bool {
		out = append(out, localParams(c)...)
		return true
	})
	return out
}

type paramSettings struct {
	def      interface{}
	usage    string
	required bool
}

// ParamOption adjusts how a Param is registered; see ParamDefault,
// ParamUsage, and ParamRequired.
type ParamOption func(*paramSettings)

// ParamDefault sets the parameter's default value, used if no Source
// provides one.
func ParamDefault(v interface{}) ParamOption {
	return func(s *paramSettings) { s.def = v }
}

// ParamUsage sets the human-readable usage string shown for this parameter
// in generated help text.
func ParamUsage(usage string) ParamOption {
	return func(s *paramSettings) { s.usage = usage }
}

// ParamRequired marks the parameter as one which must be supplied by a
// Source; Populate returns an error if it isn't.
func ParamRequired() ParamOption {
	return func(s *paramSettings) { s.required = true }
}

func settingsFrom(opts []ParamOption) paramSettings {
	var s paramSettings
	for _, o := range opts {
		o(&s)
	}
	return s
}
