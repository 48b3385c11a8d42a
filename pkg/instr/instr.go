// Package instr defines the instruction tree both execution modes produce: the
// interpreter at runtime, the generated code at compile time. The rendering
// backend consumes it together with a handler-dispatch callback.
package instr

import (
	"reflect"

	"github.com/mattdef/dampen-sub004/pkg/ir"
)

// FragmentWidget wraps sibling instructions produced by a structural document
// root, which otherwise has no single widget to return.
const FragmentWidget = "fragment"

// Instruction is one resolved widget. It is a plain value: attribute values
// are fully resolved, event entries map event kinds to handler names, and Key
// carries the per-iteration identity the renderer uses for diffing.
type Instruction struct {
	Widget string
	Key    string
	Attrs  map[string]any
	Events map[string]string
	Style  ir.StyleProps
	Kids   []Instruction
}

// Equal reports structural equality: same shape, same resolved attribute
// values, same handler bindings, same keys. It is the extensional-equality
// check the two execution modes are held to.
func Equal(a, b *Instruction) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Widget != b.Widget || a.Key != b.Key {
		return false
	}
	if len(a.Kids) != len(b.Kids) {
		return false
	}
	if !reflect.DeepEqual(normalizeMap(a.Attrs), normalizeMap(b.Attrs)) {
		return false
	}
	if !reflect.DeepEqual(normalizeEvents(a.Events), normalizeEvents(b.Events)) {
		return false
	}
	if !reflect.DeepEqual(normalizeMap(map[string]any(a.Style)), normalizeMap(map[string]any(b.Style))) {
		return false
	}
	for i := range a.Kids {
		if !Equal(&a.Kids[i], &b.Kids[i]) {
			return false
		}
	}
	return true
}

func normalizeMap(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	return m
}

func normalizeEvents(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	return m
}

// Count returns the number of instructions in the tree, root included.
func (n *Instruction) Count() int {
	if n == nil {
		return 0
	}
	total := 1
	for i := range n.Kids {
		total += n.Kids[i].Count()
	}
	return total
}

// DispatchFunc routes a widget event back to application code by handler
// name, with an event-kind-specific payload (new text, boolean, numeric
// value, selected option).
type DispatchFunc func(handler string, payload any)

// Renderer is the consuming backend. It turns an instruction tree into actual
// widgets and reports native events through the dispatch callback. Widget
// construction is single-threaded; Render is only ever called from the
// UI-owning loop.
type Renderer interface {
	Render(root *Instruction, dispatch DispatchFunc) error
}
