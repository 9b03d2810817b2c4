package mlog

import (
	"github.com/meilisearch/MeiliES/mcmp"
)

type cmpKey int

// SetLogger attaches l to cmp. It (and its descendants) will pick it up via
// From and GetLogger.
func SetLogger(cmp *mcmp.Component, l *Logger) {
	cmp.SetValue(cmpKey(0), l)
}

// DefaultLogger is returned by GetLogger/From when no Logger has been set
// on the Component or any of its ancestors.
var DefaultLogger = NewLogger()

// GetLogger returns the Logger set on cmp or its nearest ancestor, or
// DefaultLogger if none was ever set.
func GetLogger(cmp *mcmp.Component) *Logger {
	if l, ok := cmp.InheritedValue(cmpKey(0)); ok {
		return l.(*Logger)
	}
	return DefaultLogger
}

// From returns GetLogger(cmp), with every subsequent log call additionally
// annotated with cmp's own Context (its tree path and anything Annotate'd
// onto it).
func From(cmp *mcmp.Component) *Logger {
	return GetLogger(cmp).withBaseContext(cmp.Context())
}
