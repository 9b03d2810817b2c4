package mcfg

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/meilisearch/MeiliES/mcmp"
	"github.com/meilisearch/MeiliES/mctx"
	"github.com/meilisearch/MeiliES/merr"
	"github.com/meilisearch/MeiliES/mtime"
)

func register(cmp *mcmp.Component, name string, isBool, isString bool, into interface{}, s paramSettings) {
	addParam(Param{
		Component: cmp,
		Name:      strings.ToLower(name),
		Usage:     s.usage,
		Required:  s.required,
		IsBool:    isBool,
		IsString:  isString,
		Into:      into,
	})
}

// String registers a string parameter on cmp and returns a pointer which
// will hold its value once Populate is called.
func String(cmp *mcmp.Component, name string, opts ...ParamOption) *string {
	s := settingsFrom(opts)
	v := new(string)
	if s.def != nil {
		*v = s.def.(string)
	}
	register(cmp, name, false, true, v, s)
	return v
}

// Int registers an int parameter.
func Int(cmp *mcmp.Component, name string, opts ...ParamOption) *int {
	s := settingsFrom(opts)
	v := new(int)
	if s.def != nil {
		*v = s.def.(int)
	}
	register(cmp, name, false, false, v, s)
	return v
}

// Uint64 registers a uint64 parameter.
func Uint64(cmp *mcmp.Component, name string, opts ...ParamOption) *uint64 {
	s := settingsFrom(opts)
	v := new(uint64)
	if s.def != nil {
		*v = s.def.(uint64)
	}
	register(cmp, name, false, false, v, s)
	return v
}

// Bool registers a boolean (flag-style) parameter.
func Bool(cmp *mcmp.Component, name string, opts ...ParamOption) *bool {
	s := settingsFrom(opts)
	v := new(bool)
	if s.def != nil {
		*v = s.def.(bool)
	}
	register(cmp, name, true, false, v, s)
	return v
}

// Duration registers an mtime.Duration parameter, read from the CLI/env as
// a Go duration string (e.g. "5s").
func Duration(cmp *mcmp.Component, name string, opts ...ParamOption) *mtime.Duration {
	s := settingsFrom(opts)
	v := new(mtime.Duration)
	if s.def != nil {
		*v = s.def.(mtime.Duration)
	}
	register(cmp, name, false, true, v, s)
	return v
}

// JSON registers a parameter whose value is unmarshaled as arbitrary JSON
// into into (which must be a pointer).
func JSON(cmp *mcmp.Component, name string, into interface{}, opts ...ParamOption) {
	s := settingsFrom(opts)
	register(cmp, name, false, false, into, s)
}

// Populate fills in the value of every Param registered on cmp and its
// descendants using src. src may be nil, in which case only default values
// are used (and Populate errors if any Param is Required).
func Populate(cmp *mcmp.Component, src Source) error {
	if src == nil {
		src = Sources(nil)
	}

	params := CollectParams(cmp)

	pvs, err := src.Parse(params)
	if err != nil {
		return merr.Wrap(err, cmp.Context())
	}

	byName := map[string]ParamValue{}
	for _, pv := range pvs {
		byName[pv.Param.FullName()] = pv
	}

	for _, p := range params {
		pv, ok := byName[p.FullName()]
		if !ok {
			if p.Required {
				return merr.New("required parameter not set",
					mctx.Annotated("param", p.FullName()))
			}
			continue
		}
		if err := json.Unmarshal(pv.Value, p.Into); err != nil {
			return merr.Wrap(err, mctx.Annotated("param", p.FullName()))
		}
	}

	return nil
}

// fuzzyParse turns a raw CLI/env string value into a JSON value appropriate
// for the Param's type, so that e.g. a bare "8080" can be unmarshaled into
// an int and "localhost" into a string without the caller having to quote
// it.
func fuzzyParse(p Param, raw string) json.RawMessage {
	if p.IsBool {
		switch raw {
		case "", "0", "false":
			return json.RawMessage("false")
		default:
			return json.RawMessage("true")
		}
	}
	if p.IsString {
		if _, err := strconv.Unquote(raw); err == nil {
			return json.RawMessage(raw)
		}
		b, _ := json.Marshal(raw)
		return b
	}
	return json.RawMessage(raw)
}
