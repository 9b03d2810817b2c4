// Package mcmp implements a tree of Components, each an addressable point in
// a running program's topology which configuration parameters, loggers, and
// lifecycle hooks can be hung off of.
//
// A server built from this package is expected to have exactly one root
// Component, spawning children for each independently configurable piece
// (its storage engine, its listener, each subscription it drives, ...).
// Configuration parameters, loggers and lifecycle hooks are reached by
// walking this tree; the one package-level fallback is mlog.DefaultLogger,
// used when no Logger was set anywhere on a Component's ancestry.
package mcmp

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/meilisearch/MeiliES/mctx"
)

type child struct {
	*Component
	name string
}

// Component is one node in a program's Component tree. It holds an
// arbitrary key/value namespace (used by other packages to stash config
// Params, loggers, etc) and can spawn named children, each with their own
// blank namespace.
//
// The zero value, or new(Component), is a valid root Component.
//
// All methods are safe for concurrent use.
type Component struct {
	l sync.RWMutex

	path     []string
	parent   *Component
	children []child

	kv  map[interface{}]interface{}
	ctx context.Context
}

// SetValue sets key to value on the Component, overwriting any value
// previously set for that key.
func (c *Component) SetValue(key, value interface{}) {
	c.l.Lock()
	defer c.l.Unlock()
	if c.kv == nil {
		c.kv = make(map[interface{}]interface{}, 1)
	}
	c.kv[key] = value
}

func (c *Component) value(key interface{}) (interface{}, bool) {
	c.l.RLock()
	defer c.l.RUnlock()
	v, ok := c.kv[key]
	return v, ok
}

// Value returns the value set for key on this Component, or nil.
func (c *Component) Value(key interface{}) interface{} {
	v, _ := c.value(key)
	return v
}

// InheritedValue is like Value, but walks up through parent Components if
// the key isn't set on the receiver.
func (c *Component) InheritedValue(key interface{}) (interface{}, bool) {
	if v, ok := c.value(key); ok {
		return v, ok
	} else if c.parent == nil {
		return nil, false
	}
	return c.parent.InheritedValue(key)
}

// Child spawns and returns a new child Component of c, with a fresh
// key/value namespace. Panics if c already has a child with this name.
func (c *Component) Child(name string) *Component {
	c.l.Lock()
	defer c.l.Unlock()
	for _, ch := range c.children {
		if ch.name == name {
			panic(fmt.Sprintf("child with name %q already exists", name))
		}
	}

	path := make([]string, len(c.path), len(c.path)+1)
	copy(path, c.path)
	path = append(path, name)

	childCmp := &Component{path: path, parent: c}
	c.children = append(c.children, child{name: name, Component: childCmp})
	return childCmp
}

// Children returns all Components spawned from c via Child, in the order
// they were created.
func (c *Component) Children() []*Component {
	c.l.RLock()
	defer c.l.RUnlock()
	out := make([]*Component, len(c.children))
	for i := range c.children {
		out[i] = c.children[i].Component
	}
	return out
}

// Parent returns the Component's parent and true, or (nil, false) if c is
// a root Component.
func (c *Component) Parent() (*Component, bool) {
	return c.parent, c.parent != nil
}

// Path returns the sequence of names passed to Child to reach this
// Component from the root. The root Component's Path is empty.
func (c *Component) Path() []string {
	c.l.RLock()
	defer c.l.RUnlock()
	return c.path
}

func (c *Component) pathStr() string {
	path := make([]string, len(c.path))
	copy(path, c.path)
	for i := range path {
		path[i] = strings.ReplaceAll(path[i], "/", `\/`)
	}
	return "/" + strings.Join(path, "/")
}

func (c *Component) getCtx() context.Context {
	if c.ctx == nil {
		c.ctx = mctx.Annotated("component", c.pathStr())
	}
	return c.ctx
}

// Annotate annotates the Component's internal Context in place, so that
// future calls to Context include it.
func (c *Component) Annotate(kvs ...interface{}) {
	c.l.Lock()
	defer c.l.Unlock()
	c.ctx = mctx.Annotate(c.getCtx(), kvs...)
}

// Context returns a Context carrying any annotations made via Annotate,
// plus the Component's path.
func (c *Component) Context() context.Context {
	c.l.Lock()
	defer c.l.Unlock()
	return c.getCtx()
}

// BreadthFirstVisit visits c and its descendants in breadth-first order,
// stopping early if callback returns false.
func BreadthFirstVisit(c *Component, callback func(*Component) bool) {
	queue := []*Component{c}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if !callback(cur) {
			return
		}
		queue = append(queue, cur.Children()...)
	}
}
