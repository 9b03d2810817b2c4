// Package mctx extends context.Context with annotations: key/value pairs
// meant to be carried alongside request-scoped data for later use in log
// messages and wrapped errors.
//
// Annotations are distinct from context.WithValue in that they are meant to
// be enumerated (e.g. by mlog when writing a log record), not just looked
// up by key.
package mctx
