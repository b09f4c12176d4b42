package graph

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/born-ml/weave/internal/random"
	"github.com/born-ml/weave/internal/variable"
)

// GraphDef is the immutable structural descriptor of a module's ownership
// graph: topology (sharing included), node types and static configuration,
// independent of the variable values. Paired with one or more States it
// reconstructs a live module via Merge.
type GraphDef struct {
	skeleton Node
	sig      []string
}

func newGraphDef(root Node) *GraphDef {
	c := &cloner{strip: true}
	skeleton := c.cloneNode(root)
	return &GraphDef{skeleton: skeleton, sig: signatureOf(skeleton)}
}

// Equal reports whether two graph definitions describe the same structure:
// same node types at the same paths, same aliasing, and same variable slots
// with the same types.
func (d *GraphDef) Equal(other *GraphDef) bool {
	if other == nil {
		return false
	}
	return slices.Equal(d.sig, other.sig)
}

// String returns a short description of the described graph.
func (d *GraphDef) String() string {
	return fmt.Sprintf("GraphDef(%T, %d entries)", d.skeleton, len(d.sig))
}

// signatureOf flattens a graph's structure into a canonical entry list.
func signatureOf(root Node) []string {
	var sig []string
	w := &walker{
		onNode: func(path string, n Node) {
			sig = append(sig, fmt.Sprintf("node %s %T", path, n))
		},
		onAlias: func(path string, n Node) {
			sig = append(sig, fmt.Sprintf("alias %s %T", path, n))
		},
		onVariable: func(path string, v *variable.Variable) {
			sig = append(sig, fmt.Sprintf("var %s %s", path, v.Type))
		},
		onStreams: func(path string, s *random.Streams) {
			sig = append(sig, fmt.Sprintf("rngs %s", path))
		},
	}
	w.walkNode("", root)
	return sig
}

// cloner deep-copies a module graph through its exported fields.
// Node and variable identity is preserved: a sub-object shared by two
// parents is cloned once and shared by both clones. With strip set,
// variable values are dropped so only structure remains.
type cloner struct {
	strip bool
	nodes map[Node]Node
	vars  map[*variable.Variable]*variable.Variable
}

func (c *cloner) cloneNode(n Node) Node {
	if c.nodes == nil {
		c.nodes = make(map[Node]Node)
	}
	if dup, ok := c.nodes[n]; ok {
		return dup
	}
	rv := reflect.ValueOf(n)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		panic(fmt.Sprintf("graph: node %T must be a pointer to struct", n))
	}
	nv := reflect.New(rv.Type().Elem())
	nv.Elem().Set(rv.Elem())
	dup := nv.Interface().(Node)
	c.nodes[n] = dup
	c.fixFields(nv.Elem())
	return dup
}

func (c *cloner) cloneVariable(v *variable.Variable) *variable.Variable {
	if c.vars == nil {
		c.vars = make(map[*variable.Variable]*variable.Variable)
	}
	if dup, ok := c.vars[v]; ok {
		return dup
	}
	var dup *variable.Variable
	if c.strip {
		dup = variable.New(v.Type, nil)
	} else {
		dup = &variable.Variable{Type: v.Type, Value: v.Value}
	}
	c.vars[v] = dup
	return dup
}

func (c *cloner) fixFields(sv reflect.Value) {
	st := sv.Type()
	for i := 0; i < st.NumField(); i++ {
		sf := st.Field(i)
		if !sf.IsExported() {
			continue
		}
		if sf.Anonymous && sf.Type == reflect.TypeOf(Object{}) {
			continue
		}
		f := sv.Field(i)
		if nf, changed := c.cloneValue(f); changed {
			f.Set(nf)
		}
	}
}

func (c *cloner) cloneValue(v reflect.Value) (reflect.Value, bool) {
	if !v.IsValid() || !v.CanInterface() {
		return v, false
	}
	switch iv := v.Interface().(type) {
	case *variable.Variable:
		if iv == nil {
			return v, false
		}
		return assignable(reflect.ValueOf(c.cloneVariable(iv)), v.Type()), true
	case *random.Streams:
		if iv == nil {
			return v, false
		}
		return assignable(reflect.ValueOf(iv.Clone()), v.Type()), true
	case Node:
		if v.IsNil() {
			return v, false
		}
		return assignable(reflect.ValueOf(c.cloneNode(iv)), v.Type()), true
	}

	switch v.Kind() {
	case reflect.Slice:
		if v.IsNil() {
			return v, false
		}
		ns := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		reflect.Copy(ns, v)
		for i := 0; i < ns.Len(); i++ {
			if nv, changed := c.cloneValue(ns.Index(i)); changed {
				ns.Index(i).Set(nv)
			}
		}
		return ns, true
	case reflect.Map:
		if v.IsNil() {
			return v, false
		}
		nm := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			ev := iter.Value()
			if nv, changed := c.cloneValue(ev); changed {
				ev = nv
			}
			nm.SetMapIndex(iter.Key(), ev)
		}
		return nm, true
	case reflect.Struct:
		ns := reflect.New(v.Type()).Elem()
		ns.Set(v)
		c.fixFields(ns)
		return ns, true
	default:
		return v, false
	}
}

// assignable adapts a concrete clone value to the destination field type
// (needed when the field is an interface like Module).
func assignable(v reflect.Value, t reflect.Type) reflect.Value {
	if v.Type() == t {
		return v
	}
	out := reflect.New(t).Elem()
	out.Set(v)
	return out
}
