package codegen

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/mattdef/dampen-sub004/pkg/ir"
)

// genScope mirrors the interpreter's evaluation environment at generation
// time: the root model accessor plus, inside repeat loops, the loop variable
// and its element type.
type genScope struct {
	expr     string
	typ      reflect.Type
	itemExpr string
	itemType reflect.Type
	parent   *genScope
}

func (sc *genScope) root() *genScope {
	for sc.parent != nil {
		sc = sc.parent
	}
	return sc
}

// resolved is a statically resolved binding: the accessor expression and its
// type.
type resolved struct {
	expr string
	typ  reflect.Type
}

// ResolveError reports a binding path that cannot be statically resolved
// against the target model type. It aborts the build; the generator never
// emits best-effort fallback code.
type ResolveError struct {
	Path   ir.Path
	Loc    ir.Span
	Model  reflect.Type
	Reason string
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("%s: cannot resolve binding %q against %s: %s", e.Loc, e.Path, e.Model, e.Reason)
}

// resolvePath maps a binding path to a direct accessor expression, failing
// when any step does not exist on the statically known type. Field names are
// matched case-insensitively against exported fields, like the interpreter.
func (e *emitter) resolvePath(p ir.Path, sc *genScope, loc ir.Span) (resolved, error) {
	fail := func(reason string) (resolved, error) {
		return resolved{}, &ResolveError{Path: p, Loc: loc, Model: e.modelType, Reason: reason}
	}
	if len(p) == 0 {
		return fail("empty path")
	}

	var cur resolved
	steps := p
	if p.FirstIsItem() {
		frame := sc
		for frame != nil && frame.itemType == nil {
			frame = frame.parent
		}
		if frame == nil {
			return fail(`"it" is only valid inside a repeat template`)
		}
		cur = resolved{expr: frame.itemExpr, typ: frame.itemType}
		steps = p[1:]
	} else {
		r := sc.root()
		cur = resolved{expr: r.expr, typ: r.typ}
	}

	for _, st := range steps {
		t := cur.typ
		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		if st.IsIndex {
			if t.Kind() != reflect.Slice && t.Kind() != reflect.Array {
				return fail(fmt.Sprintf("cannot index %s", t))
			}
			cur = resolved{expr: cur.expr + "[" + strconv.Itoa(st.Index) + "]", typ: t.Elem()}
			continue
		}
		if t.Kind() != reflect.Struct {
			return fail(fmt.Sprintf("cannot access field %q on %s", st.Field, t))
		}
		f, ok := fieldByFold(t, st.Field)
		if !ok {
			return fail(fmt.Sprintf("%s has no field %q", t, st.Field))
		}
		cur = resolved{expr: cur.expr + "." + f.Name, typ: f.Type}
	}
	return cur, nil
}

// fieldByFold finds the unique exported field matching name
// case-insensitively.
func fieldByFold(t reflect.Type, name string) (reflect.StructField, bool) {
	var match reflect.StructField
	count := 0
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if strings.EqualFold(f.Name, name) {
			match = f
			count++
		}
	}
	return match, count == 1
}
