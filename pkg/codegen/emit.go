package codegen

import (
	"fmt"
	"strings"
)

// The emitter writes source that is already in canonical gofmt layout for the
// shapes it produces; the Validator's formatting pass then guarantees it.

// lineWriter accumulates tab-indented source lines.
type lineWriter struct {
	b      strings.Builder
	indent int
}

func (w *lineWriter) pad() {
	for i := 0; i < w.indent; i++ {
		w.b.WriteByte('\t')
	}
}

func (w *lineWriter) raw(s string) {
	w.b.WriteString(s)
}

func (w *lineWriter) linef(format string, args ...any) {
	w.pad()
	fmt.Fprintf(&w.b, format, args...)
	w.b.WriteByte('\n')
}

func (w *lineWriter) String() string {
	return w.b.String()
}

// field is one key in a struct composite literal. Multi-line values end their
// alignment group, the way go/printer lays literals out.
type field struct {
	name  string
	value string
	multi bool
}

// entry is one key in a map composite literal; entries are always single-line.
type entry struct {
	key   string
	value string
}

// structLiteral renders a composite literal whose closing brace sits at depth
// tabs. The first line carries no indentation; the caller places it.
func structLiteral(typeName string, fields []field, depth int) string {
	var b strings.Builder
	b.WriteString(typeName + "{\n")
	tabs := strings.Repeat("\t", depth+1)
	i := 0
	for i < len(fields) {
		j := i
		for j < len(fields) && !fields[j].multi {
			j++
		}
		if j > i {
			width := 0
			for k := i; k < j; k++ {
				if l := len(fields[k].name) + 1; l > width {
					width = l
				}
			}
			for k := i; k < j; k++ {
				cell := fields[k].name + ":"
				b.WriteString(tabs + cell + strings.Repeat(" ", width-len(cell)+1) + fields[k].value + ",\n")
			}
			i = j
			continue
		}
		b.WriteString(tabs + fields[i].name + ": " + fields[i].value + ",\n")
		i++
	}
	b.WriteString(strings.Repeat("\t", depth) + "}")
	return b.String()
}

// mapLiteral renders a map composite literal with keys aligned as one group.
func mapLiteral(typeName string, entries []entry, depth int) string {
	var b strings.Builder
	b.WriteString(typeName + "{\n")
	tabs := strings.Repeat("\t", depth+1)
	width := 0
	for _, en := range entries {
		if l := len(en.key) + 1; l > width {
			width = l
		}
	}
	for _, en := range entries {
		cell := en.key + ":"
		b.WriteString(tabs + cell + strings.Repeat(" ", width-len(cell)+1) + en.value + ",\n")
	}
	b.WriteString(strings.Repeat("\t", depth) + "}")
	return b.String()
}
