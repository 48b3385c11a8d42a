// Package renderer contains the terminal backend the dev loop draws through:
// an instruction tree becomes an indented outline, one line per widget. It is
// a diagnostic surface, not a widget toolkit; the real rendering backend
// satisfies the same contract outside this repository.
package renderer

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mattdef/dampen-sub004/pkg/instr"
)

var (
	widgetStyle = lipgloss.NewStyle().Bold(true)
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	eventStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
)

// Text writes instruction trees to a writer. The first write error sticks and
// aborts the rest of the walk.
type Text struct {
	w   io.Writer
	err error
}

// NewText returns a renderer writing to w.
func NewText(w io.Writer) *Text {
	return &Text{w: w}
}

// Render draws the tree as an outline. The dispatch callback is accepted to
// satisfy the renderer contract; a text surface produces no native events.
func (r *Text) Render(root *instr.Instruction, dispatch instr.DispatchFunc) error {
	r.err = nil
	r.node(root, 0)
	return r.err
}

func (r *Text) node(n *instr.Instruction, depth int) {
	if n == nil || r.err != nil {
		return
	}
	line := strings.Repeat("  ", depth) + widgetStyle.Render(n.Widget)
	if n.Key != "" {
		line += keyStyle.Render("#" + n.Key)
	}
	if s := attrSummary(n.Attrs); s != "" {
		line += " " + s
	}
	if s := eventSummary(n.Events); s != "" {
		line += " " + eventStyle.Render(s)
	}
	if _, err := fmt.Fprintln(r.w, line); err != nil {
		r.err = err
		return
	}
	for i := range n.Kids {
		r.node(&n.Kids[i], depth+1)
	}
}

// attrSummary renders attributes in sorted key order so output is stable.
func attrSummary(attrs map[string]any) string {
	if len(attrs) == 0 {
		return ""
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, attrs[k])
	}
	return strings.Join(parts, " ")
}

func eventSummary(events map[string]string) string {
	if len(events) == 0 {
		return ""
	}
	keys := make([]string, 0, len(events))
	for k := range events {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("@%s→%s", k, events[k])
	}
	return strings.Join(parts, " ")
}
