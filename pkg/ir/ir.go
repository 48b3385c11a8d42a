// Package ir defines the backend-agnostic intermediate representation produced
// from source markup and consumed by both execution modes: the runtime
// interpreter and the ahead-of-time code generator. A Document is an immutable
// value once constructed; reloads replace it wholesale rather than mutating it.
package ir

import "fmt"

// Kind identifies the node variant.
type Kind uint8

const (
	// Leaf widgets
	KindText Kind = iota
	KindImage
	KindButton
	KindInput
	KindCheckbox
	KindSelect

	// Container widgets
	KindRow
	KindColumn
	KindForm

	// Structural control nodes. Each owns exactly one template subtree.
	KindRepeat
	KindConditional

	// KindCustom is the extension variant: an opaque widget name plus an
	// attribute bag, so new widget kinds never require changing the tree type.
	KindCustom
)

var kindNames = [...]string{
	KindText:        "text",
	KindImage:       "image",
	KindButton:      "button",
	KindInput:       "input",
	KindCheckbox:    "checkbox",
	KindSelect:      "select",
	KindRow:         "row",
	KindColumn:      "column",
	KindForm:        "form",
	KindRepeat:      "repeat",
	KindConditional: "conditional",
	KindCustom:      "custom",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind maps a serialized kind name back to its Kind.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), true
		}
	}
	return 0, false
}

// IsStructural reports whether the kind is a control node (repeat/conditional)
// rather than a widget.
func (k Kind) IsStructural() bool {
	return k == KindRepeat || k == KindConditional
}

// AttrKind identifies how an attribute value is produced.
type AttrKind uint8

const (
	// AttrStatic is a literal value fixed at parse time.
	AttrStatic AttrKind = iota
	// AttrBinding resolves a path into the live model.
	AttrBinding
	// AttrInterpolated is a template string with embedded binding paths.
	AttrInterpolated
)

func (k AttrKind) String() string {
	switch k {
	case AttrStatic:
		return "static"
	case AttrBinding:
		return "binding"
	case AttrInterpolated:
		return "interpolated"
	}
	return fmt.Sprintf("attrkind(%d)", uint8(k))
}

// Attr is a typed attribute value attached to a node. Exactly one of Value,
// Path, or Parts is populated, selected by Kind.
type Attr struct {
	Name  string
	Kind  AttrKind
	Value any       // AttrStatic
	Path  Path      // AttrBinding; non-empty by parser invariant
	Parts []Segment // AttrInterpolated; pre-split by the parser
}

// Segment is one piece of an interpolated template: literal text, or an
// embedded path when Path is non-empty.
type Segment struct {
	Text string `json:"text,omitempty"`
	Path Path   `json:"path,omitempty"`
}

// IsPath reports whether the segment embeds a binding path.
func (s Segment) IsPath() bool { return len(s.Path) > 0 }

// Static builds a literal attribute.
func Static(name string, value any) Attr {
	return Attr{Name: name, Kind: AttrStatic, Value: value}
}

// Bound builds a binding attribute.
func Bound(name string, path Path) Attr {
	return Attr{Name: name, Kind: AttrBinding, Path: path}
}

// Interp builds an interpolated attribute from pre-split segments.
func Interp(name string, parts ...Segment) Attr {
	return Attr{Name: name, Kind: AttrInterpolated, Parts: parts}
}

// EventKind is the renderer-side event class a handler is bound to.
type EventKind string

const (
	EventClick  EventKind = "click"
	EventInput  EventKind = "input"
	EventToggle EventKind = "toggle"
	EventSelect EventKind = "select"
	EventChange EventKind = "change"
	EventSubmit EventKind = "submit"
)

// EventBinding pairs an event kind with a handler name. The name is an opaque
// key looked up in the handler registry at resolution time, never at parse
// time.
type EventBinding struct {
	Event   EventKind `json:"event"`
	Handler string    `json:"handler"`
}

// StyleProps is the opaque style-properties value attached to nodes. Style
// cascade resolution happens outside this core.
type StyleProps map[string]any

// Span is a source location used only for error reporting.
type Span struct {
	File string `json:"file,omitempty"`
	Line int    `json:"line,omitempty"`
	Col  int    `json:"col,omitempty"`
}

func (s Span) String() string {
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Col)
}

// Node is one vertex of the IR tree. The tree is acyclic and finite; nodes are
// plain values and are never shared between Documents.
type Node struct {
	Kind   Kind           `json:"kind"`
	Name   string         `json:"name,omitempty"` // custom widget name, KindCustom only
	Attrs  []Attr         `json:"attrs,omitempty"`
	Events []EventBinding `json:"events,omitempty"`
	Kids   []Node         `json:"kids,omitempty"`
	Style  StyleProps     `json:"style,omitempty"`
	Loc    Span           `json:"loc"`

	// Source backs structural nodes: the collection path for a repeat, the
	// condition path for a conditional. Empty otherwise.
	Source Path `json:"source,omitempty"`
}

// WidgetName is the widget identifier the renderer receives: the kind name,
// or the opaque custom name for extension nodes.
func (n *Node) WidgetName() string {
	if n.Kind == KindCustom {
		return n.Name
	}
	return n.Kind.String()
}

// Template returns the single template subtree of a structural node.
func (n *Node) Template() *Node {
	if !n.Kind.IsStructural() || len(n.Kids) != 1 {
		return nil
	}
	return &n.Kids[0]
}

// Document is a parsed source file: the root node, a format marker, and the
// auxiliary style declarations consumed by style resolution.
type Document struct {
	Version string                `json:"version"`
	Root    Node                  `json:"root"`
	Styles  map[string]StyleProps `json:"styles,omitempty"`
	Themes  map[string]StyleProps `json:"themes,omitempty"`
}

// Validate checks the structural invariants the parser is expected to
// establish before a Document reaches either execution mode. It exists so
// alternate front ends (like the serialized-IR loader) can assert the same
// guarantees.
func (d *Document) Validate() error {
	return validateNode(&d.Root)
}

func validateNode(n *Node) error {
	if n.Kind.IsStructural() {
		if len(n.Kids) != 1 {
			return fmt.Errorf("%s: %s node must own exactly one template subtree, has %d", n.Loc, n.Kind, len(n.Kids))
		}
		if len(n.Source) == 0 {
			return fmt.Errorf("%s: %s node has no source path", n.Loc, n.Kind)
		}
	}
	if n.Kind == KindCustom && n.Name == "" {
		return fmt.Errorf("%s: custom node has no widget name", n.Loc)
	}
	for i := range n.Attrs {
		a := &n.Attrs[i]
		if a.Kind == AttrBinding && len(a.Path) == 0 {
			return fmt.Errorf("%s: attribute %q has an empty binding path", n.Loc, a.Name)
		}
	}
	for i := range n.Kids {
		if err := validateNode(&n.Kids[i]); err != nil {
			return err
		}
	}
	return nil
}

// ParseError is the structured failure the external parser reports. In
// development it feeds the error overlay; at build time it is fatal.
type ParseError struct {
	Message string
	File    string
	Line    int
	Col     int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Col, e.Message)
}

// Parser turns source text into a Document. The textual markup parser lives
// outside this core; the reload coordinator and the build command only depend
// on this contract.
type Parser interface {
	Parse(file string, src []byte) (*Document, *ParseError)
}
