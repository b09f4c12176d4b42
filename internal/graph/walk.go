package graph

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/born-ml/weave/internal/random"
	"github.com/born-ml/weave/internal/variable"
)

// walker visits a module's ownership graph through exported fields.
// Every Node is visited exactly once; shared sub-objects report an alias on
// their second and later sightings instead of being descended again.
type walker struct {
	seen       map[Node]bool
	onNode     func(path string, n Node)
	onAlias    func(path string, n Node)
	onVariable func(path string, v *variable.Variable)
	onStreams  func(path string, s *random.Streams)
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

func (w *walker) walkNode(path string, n Node) {
	if w.seen == nil {
		w.seen = make(map[Node]bool)
	}
	if w.seen[n] {
		if w.onAlias != nil {
			w.onAlias(path, n)
		}
		return
	}
	w.seen[n] = true
	if w.onNode != nil {
		w.onNode(path, n)
	}

	rv := reflect.ValueOf(n)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		panic(fmt.Sprintf("graph: node %T must be a pointer to struct", n))
	}
	w.walkFields(path, rv.Elem())
}

func (w *walker) walkFields(path string, sv reflect.Value) {
	st := sv.Type()
	for i := 0; i < st.NumField(); i++ {
		sf := st.Field(i)
		if !sf.IsExported() {
			continue
		}
		if sf.Anonymous && sf.Type == reflect.TypeOf(Object{}) {
			continue
		}
		w.walkValue(joinPath(path, sf.Name), sv.Field(i))
	}
}

func (w *walker) walkValue(path string, v reflect.Value) {
	if !v.IsValid() || !v.CanInterface() {
		return
	}
	switch iv := v.Interface().(type) {
	case *variable.Variable:
		if iv != nil && w.onVariable != nil {
			w.onVariable(path, iv)
		}
		return
	case *random.Streams:
		if iv != nil && w.onStreams != nil {
			w.onStreams(path, iv)
		}
		return
	case Node:
		if !v.IsNil() {
			w.walkNode(path, iv)
		}
		return
	}

	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			w.walkValue(fmt.Sprintf("%s.%d", path, i), v.Index(i))
		}
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return
		}
		keys := make([]string, 0, v.Len())
		for _, k := range v.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		for _, k := range keys {
			w.walkValue(joinPath(path, k), v.MapIndex(reflect.ValueOf(k)))
		}
	case reflect.Struct:
		w.walkFields(path, v)
	case reflect.Interface, reflect.Ptr:
		// Interfaces and pointers not recognized above are static
		// configuration; they do not own graph state.
	}
}
