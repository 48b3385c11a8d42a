package interp

import (
	"reflect"
	"strings"

	"github.com/mattdef/dampen-sub004/pkg/ir"
)

// PathGetter lets a model resolve binding paths itself instead of going
// through reflection. Models that implement it own their lookup semantics.
type PathGetter interface {
	GetPath(p ir.Path) (any, bool)
}

// scope is one frame of the evaluation environment: the root model plus, for
// repeat iterations, the current element.
type scope struct {
	model   any
	item    any
	hasItem bool
	parent  *scope
}

// resolve looks a path up. Paths starting with the reserved "it" segment
// resolve against the nearest enclosing repeat element; everything else
// resolves against the root model.
func (sc *scope) resolve(p ir.Path) (any, bool) {
	if len(p) == 0 {
		return nil, false
	}
	if p.FirstIsItem() {
		for cur := sc; cur != nil; cur = cur.parent {
			if !cur.hasItem {
				continue
			}
			if len(p) == 1 {
				return cur.item, true
			}
			return resolveValue(cur.item, p[1:])
		}
		return nil, false
	}
	return resolveValue(sc.model, p)
}

// resolveValue applies the path steps to a value: struct fields (matched
// case-insensitively against exported names), string-keyed maps, and
// slice/array indexes. Anything else fails resolution.
func resolveValue(v any, p ir.Path) (any, bool) {
	if g, ok := v.(PathGetter); ok {
		return g.GetPath(p)
	}
	cur := reflect.ValueOf(v)
	for _, st := range p {
		for cur.Kind() == reflect.Pointer || cur.Kind() == reflect.Interface {
			if cur.IsNil() {
				return nil, false
			}
			cur = cur.Elem()
		}
		if !cur.IsValid() {
			return nil, false
		}
		if st.IsIndex {
			if cur.Kind() != reflect.Slice && cur.Kind() != reflect.Array {
				return nil, false
			}
			if st.Index >= cur.Len() {
				return nil, false
			}
			cur = cur.Index(st.Index)
			continue
		}
		switch cur.Kind() {
		case reflect.Struct:
			f := cur.FieldByNameFunc(func(name string) bool {
				return strings.EqualFold(name, st.Field)
			})
			if !f.IsValid() || !f.CanInterface() {
				return nil, false
			}
			cur = f
		case reflect.Map:
			if cur.Type().Key().Kind() != reflect.String {
				return nil, false
			}
			mv := cur.MapIndex(reflect.ValueOf(st.Field))
			if !mv.IsValid() {
				return nil, false
			}
			cur = mv
		default:
			return nil, false
		}
	}
	return cur.Interface(), true
}

// Truthy defines how conditionals read non-boolean sources: false/zero/empty
// values are false, nil pointers are false, everything the generator can type
// statically matches this table.
func Truthy(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.String:
		return rv.Len() > 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	return false
}
