// Package interp walks an IR document against a live model value and emits an
// instruction tree. It is re-invoked on every model mutation; evaluation is
// cache-free by default, with an opt-in subtree retention hook for
// high-frequency interactive widgets.
//
// Resolution failures are never fatal: a binding that does not resolve is
// logged and its attribute falls back to the empty string, the value the
// widget catalog treats as unset whatever the attribute's type.
package interp

import (
	"fmt"
	"log"
	"reflect"
	"strconv"
	"strings"

	"github.com/mattdef/dampen-sub004/pkg/instr"
	"github.com/mattdef/dampen-sub004/pkg/ir"
)

// Interpreter evaluates documents. It runs on the UI-owning loop and is not
// safe for concurrent use; that is the concurrency model, not an oversight.
type Interpreter struct {
	logger   *log.Logger
	retained map[string]struct{}
	cache    map[string]instr.Instruction
}

// New returns an interpreter with an empty retention set.
func New() *Interpreter {
	return &Interpreter{
		retained: make(map[string]struct{}),
		cache:    make(map[string]instr.Instruction),
	}
}

// SetLogger installs a logger for non-fatal binding-resolution failures.
func (it *Interpreter) SetLogger(l *log.Logger) {
	it.logger = l
}

// Retain marks the subtree at the given position key (see Evaluate) for reuse
// across evaluations. A retained subtree is evaluated once and then served
// from cache until Invalidate or Reset drops it.
func (it *Interpreter) Retain(key string) {
	it.retained[key] = struct{}{}
}

// Invalidate drops the cached instructions for a retained subtree so the next
// evaluation recomputes it.
func (it *Interpreter) Invalidate(key string) {
	delete(it.cache, key)
}

// Reset clears the whole retention cache. The reload coordinator calls this
// after every document swap.
func (it *Interpreter) Reset() {
	it.retained = make(map[string]struct{})
	it.cache = make(map[string]instr.Instruction)
}

// Evaluate walks the document depth-first and resolves every binding against
// the model, producing the instruction tree the renderer consumes. Binding
// resolution failures fall back to the empty string and never abort
// evaluation.
//
// Position keys identify subtrees for retention: the root is "0", the j-th
// child of key k is "k.j", and the i-th iteration of a repeat at key k is
// "k[i]".
func (it *Interpreter) Evaluate(doc *ir.Document, model any) *instr.Instruction {
	sc := &scope{model: model}
	out := it.walk(&doc.Root, sc, "0")
	if doc.Root.Kind.IsStructural() {
		return &instr.Instruction{Widget: instr.FragmentWidget, Kids: out}
	}
	return &out[0]
}

// walk returns the instructions a node expands to: one for a widget, zero or
// more for a structural node.
func (it *Interpreter) walk(n *ir.Node, sc *scope, key string) []instr.Instruction {
	switch n.Kind {
	case ir.KindRepeat:
		return it.walkRepeat(n, sc, key)
	case ir.KindConditional:
		return it.walkConditional(n, sc, key)
	default:
		return []instr.Instruction{it.walkWidget(n, sc, key)}
	}
}

func (it *Interpreter) walkRepeat(n *ir.Node, sc *scope, key string) []instr.Instruction {
	tmpl := n.Template()
	v, ok := it.resolve(n.Source, sc, n.Loc)
	if !ok {
		return nil
	}
	coll := reflect.ValueOf(v)
	for coll.Kind() == reflect.Pointer || coll.Kind() == reflect.Interface {
		coll = coll.Elem()
	}
	if !coll.IsValid() || (coll.Kind() != reflect.Slice && coll.Kind() != reflect.Array) {
		it.logf("%s: repeat source %s is not a collection", n.Loc, n.Source)
		return nil
	}
	out := make([]instr.Instruction, 0, coll.Len())
	for i := 0; i < coll.Len(); i++ {
		child := &scope{model: sc.model, item: coll.Index(i).Interface(), hasItem: true, parent: sc}
		iterKey := fmt.Sprintf("%s[%d]", key, i)
		for _, inst := range it.walk(tmpl, child, iterKey) {
			if inst.Key == "" {
				inst.Key = strconv.Itoa(i)
			}
			out = append(out, inst)
		}
	}
	return out
}

func (it *Interpreter) walkConditional(n *ir.Node, sc *scope, key string) []instr.Instruction {
	v, ok := it.resolve(n.Source, sc, n.Loc)
	if !ok || !Truthy(v) {
		return nil
	}
	return it.walk(n.Template(), sc, key+".0")
}

func (it *Interpreter) walkWidget(n *ir.Node, sc *scope, key string) instr.Instruction {
	if _, ok := it.retained[key]; ok {
		if cached, hit := it.cache[key]; hit {
			return cached
		}
	}

	inst := instr.Instruction{
		Widget: n.WidgetName(),
		Style:  n.Style,
	}
	if len(n.Attrs) > 0 {
		inst.Attrs = make(map[string]any, len(n.Attrs))
		for i := range n.Attrs {
			a := &n.Attrs[i]
			inst.Attrs[a.Name] = it.attrValue(a, sc, n.Loc)
		}
	}
	if len(n.Events) > 0 {
		inst.Events = make(map[string]string, len(n.Events))
		for _, eb := range n.Events {
			inst.Events[string(eb.Event)] = eb.Handler
		}
	}
	for i := range n.Kids {
		kidKey := key + "." + strconv.Itoa(i)
		inst.Kids = append(inst.Kids, it.walk(&n.Kids[i], sc, kidKey)...)
	}

	if _, ok := it.retained[key]; ok {
		it.cache[key] = inst
	}
	return inst
}

// attrValue resolves one attribute. A failed binding falls back to the empty
// string, the default the widget catalog treats as "unset".
func (it *Interpreter) attrValue(a *ir.Attr, sc *scope, loc ir.Span) any {
	switch a.Kind {
	case ir.AttrStatic:
		return a.Value
	case ir.AttrBinding:
		v, ok := it.resolve(a.Path, sc, loc)
		if !ok {
			return ""
		}
		return v
	case ir.AttrInterpolated:
		var b strings.Builder
		for _, part := range a.Parts {
			if !part.IsPath() {
				b.WriteString(part.Text)
				continue
			}
			v, ok := it.resolve(part.Path, sc, loc)
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "%v", v)
		}
		return b.String()
	}
	return nil
}

func (it *Interpreter) resolve(p ir.Path, sc *scope, loc ir.Span) (any, bool) {
	v, ok := sc.resolve(p)
	if !ok {
		it.logf("%s: binding %s did not resolve, using default", loc, p)
	}
	return v, ok
}

func (it *Interpreter) logf(format string, args ...any) {
	if it.logger != nil {
		it.logger.Printf(format, args...)
	}
}
