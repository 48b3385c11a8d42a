// Package codegen is the ahead-of-time compiler from IR to Go source. It
// walks the same tree shape as the interpreter but emits code that performs
// the same resolution inline: bindings become field accesses, interpolations
// become fmt expressions, repeats become native loops, and event bindings
// become statically enumerated dispatches through the registry contract. The
// generated builder, run against any model value, produces an instruction
// tree extensionally equal to the interpreter's output for the same document.
package codegen

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/mattdef/dampen-sub004/pkg/instr"
	"github.com/mattdef/dampen-sub004/pkg/ir"
)

const modulePath = "github.com/mattdef/dampen-sub004"

// Options configures one generation run.
type Options struct {
	// Package is the target package name. Generated code accesses model
	// fields directly, so it must be the package the model type lives in.
	Package string

	// Func is the builder function name. Defaults to "BuildUI".
	Func string

	// Model is a prototype value of the model type the document binds
	// against. Only its type is consulted.
	Model any

	// EmitModel also emits the model type declaration, for builds whose
	// model shape was derived from a serialized prototype (see ModelFromJSON).
	EmitModel bool

	// ModelName is the emitted type name when EmitModel is set. Defaults to
	// "Model".
	ModelName string
}

// Artifact is the build product: generated source plus the validity flag the
// Validator sets. Only valid artifacts may be persisted.
type Artifact struct {
	Package string
	Source  []byte
	Valid   bool
}

// Generate compiles a document into a validated artifact. Any failure is
// fatal and no artifact is returned: an unresolvable binding, an unsupported
// construct, or generated text that does not survive re-parsing.
func Generate(doc *ir.Document, opts Options) (*Artifact, error) {
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid document: %w", err)
	}
	if opts.Package == "" {
		return nil, fmt.Errorf("codegen: no target package")
	}
	if opts.Func == "" {
		opts.Func = "BuildUI"
	}
	mt := reflect.TypeOf(opts.Model)
	if mt == nil {
		return nil, fmt.Errorf("codegen: no model prototype")
	}
	for mt.Kind() == reflect.Pointer {
		mt = mt.Elem()
	}
	if mt.Kind() != reflect.Struct {
		return nil, fmt.Errorf("codegen: model prototype must be a struct, got %s", mt)
	}
	typeName := mt.Name()
	if opts.EmitModel {
		typeName = opts.ModelName
		if typeName == "" {
			typeName = "Model"
		}
	}
	if typeName == "" {
		return nil, fmt.Errorf("codegen: model type %s has no name; set EmitModel", mt)
	}

	e := &emitter{opts: opts, modelType: mt, typeName: typeName}
	body, err := e.emitBuilder(doc)
	if err != nil {
		return nil, err
	}

	var src strings.Builder
	src.WriteString("// Code generated by dampen; DO NOT EDIT.\n\n")
	src.WriteString("package " + opts.Package + "\n\n")
	e.writeImports(&src)
	if opts.EmitModel {
		src.WriteString(emitModelType(typeName, mt))
		src.WriteString("\n")
	}
	src.WriteString(body)
	if len(e.handlers) > 0 {
		src.WriteString("\n")
		src.WriteString(e.emitDispatch())
	}

	art := &Artifact{Package: opts.Package, Source: []byte(src.String())}
	if err := Validate(art); err != nil {
		return nil, err
	}
	return art, nil
}

// emitter carries the state of one generation walk.
type emitter struct {
	opts      Options
	modelType reflect.Type
	typeName  string

	needFmt     bool
	needStrconv bool
	needIR      bool
	handlers    map[string]struct{}
	loopDepth   int
}

func (e *emitter) writeImports(src *strings.Builder) {
	var std []string
	if e.needFmt {
		std = append(std, "fmt")
	}
	if e.needStrconv {
		std = append(std, "strconv")
	}
	var local []string
	if len(e.handlers) > 0 {
		local = append(local, modulePath+"/pkg/handler")
	}
	local = append(local, modulePath+"/pkg/instr")
	if e.needIR {
		local = append(local, modulePath+"/pkg/ir")
	}

	src.WriteString("import (\n")
	for _, p := range std {
		src.WriteString("\t" + strconv.Quote(p) + "\n")
	}
	if len(std) > 0 {
		src.WriteString("\n")
	}
	for _, p := range local {
		src.WriteString("\t" + strconv.Quote(p) + "\n")
	}
	src.WriteString(")\n\n")
}

// emitBuilder generates the builder function body.
func (e *emitter) emitBuilder(doc *ir.Document) (string, error) {
	e.handlers = make(map[string]struct{})
	sc := &genScope{expr: "model", typ: e.modelType}

	var b lineWriter
	b.linef("// %s constructs the instruction tree for a %s value. It mirrors the", e.opts.Func, e.typeName)
	b.linef("// interpreter's evaluation of the source document without any runtime parsing.")
	b.linef("func %s(model *%s) *instr.Instruction {", e.opts.Func, e.typeName)
	b.indent++

	root := doc.Root
	if root.Kind.IsStructural() {
		// A structural root has no single widget to return; wrap its
		// expansion in a fragment, exactly as the interpreter does.
		root = ir.Node{Kind: ir.KindCustom, Name: instr.FragmentWidget, Kids: []ir.Node{doc.Root}}
	}
	expr, err := e.widgetExpr(&root, sc, "", b.indent)
	if err != nil {
		return "", err
	}
	b.linef("root := %s", expr)
	b.linef("return &root")
	b.indent--
	b.linef("}")
	return b.String(), nil
}

// widgetExpr renders one widget node as a multi-line composite literal
// expression, aligned the way gofmt would print it. keyExpr, when non-empty,
// is the per-iteration identity expression attached to this instruction.
func (e *emitter) widgetExpr(n *ir.Node, sc *genScope, keyExpr string, depth int) (string, error) {
	if n.Kind.IsStructural() {
		return "", fmt.Errorf("%s: structural node cannot be rendered as an expression", n.Loc)
	}

	var fields []field
	fields = append(fields, field{name: "Widget", value: strconv.Quote(n.WidgetName())})
	if keyExpr != "" {
		fields = append(fields, field{name: "Key", value: keyExpr})
	}

	if len(n.Attrs) > 0 {
		entries := make([]entry, 0, len(n.Attrs))
		for i := range n.Attrs {
			a := &n.Attrs[i]
			expr, err := e.attrExpr(a, sc, n.Loc)
			if err != nil {
				return "", err
			}
			entries = append(entries, entry{key: strconv.Quote(a.Name), value: expr})
		}
		fields = append(fields, field{name: "Attrs", value: mapLiteral("map[string]any", entries, depth+1), multi: true})
	}

	if len(n.Events) > 0 {
		entries := make([]entry, 0, len(n.Events))
		for _, eb := range n.Events {
			e.handlers[eb.Handler] = struct{}{}
			entries = append(entries, entry{key: strconv.Quote(string(eb.Event)), value: strconv.Quote(eb.Handler)})
		}
		fields = append(fields, field{name: "Events", value: mapLiteral("map[string]string", entries, depth+1), multi: true})
	}

	if len(n.Style) > 0 {
		e.needIR = true
		keys := make([]string, 0, len(n.Style))
		for k := range n.Style {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		entries := make([]entry, 0, len(keys))
		for _, k := range keys {
			lit, err := literal(n.Style[k])
			if err != nil {
				return "", fmt.Errorf("%s: style %q: %w", n.Loc, k, err)
			}
			entries = append(entries, entry{key: strconv.Quote(k), value: lit})
		}
		fields = append(fields, field{name: "Style", value: mapLiteral("ir.StyleProps", entries, depth+1), multi: true})
	}

	if len(n.Kids) > 0 {
		kids, err := e.kidsExpr(n, sc, depth+1)
		if err != nil {
			return "", err
		}
		fields = append(fields, field{name: "Kids", value: kids, multi: true})
	}

	return structLiteral("instr.Instruction", fields, depth), nil
}

// kidsExpr renders the children of a widget. When every child is itself a
// widget the result is a plain slice literal; any structural child forces the
// statement form inside an immediately invoked closure.
func (e *emitter) kidsExpr(n *ir.Node, sc *genScope, depth int) (string, error) {
	structural := false
	for i := range n.Kids {
		if n.Kids[i].Kind.IsStructural() {
			structural = true
			break
		}
	}

	if !structural {
		var b lineWriter
		b.indent = depth
		b.raw("[]instr.Instruction{\n")
		for i := range n.Kids {
			expr, err := e.widgetExpr(&n.Kids[i], sc, "", depth+1)
			if err != nil {
				return "", err
			}
			// Elide the element type inside the slice literal.
			expr = strings.TrimPrefix(expr, "instr.Instruction")
			b.indent = depth + 1
			b.linef("%s,", expr)
		}
		b.indent = depth
		b.pad()
		b.raw("}")
		return b.String(), nil
	}

	var b lineWriter
	b.indent = depth
	b.raw("func() []instr.Instruction {\n")
	b.indent = depth + 1
	b.linef("kids := make([]instr.Instruction, 0, %d)", len(n.Kids))
	for i := range n.Kids {
		if err := e.appendStmts(&b, &n.Kids[i], sc, ""); err != nil {
			return "", err
		}
	}
	b.linef("return kids")
	b.indent = depth
	b.pad()
	b.raw("}()")
	return b.String(), nil
}

// appendStmts emits the statements that append a node's expansion to the
// local kids slice: a single append for widgets, a loop for repeats, an if
// for conditionals.
func (e *emitter) appendStmts(b *lineWriter, n *ir.Node, sc *genScope, keyExpr string) error {
	switch n.Kind {
	case ir.KindRepeat:
		return e.repeatStmts(b, n, sc)
	case ir.KindConditional:
		return e.conditionalStmts(b, n, sc, keyExpr)
	default:
		expr, err := e.widgetExpr(n, sc, keyExpr, b.indent)
		if err != nil {
			return err
		}
		b.linef("kids = append(kids, %s)", expr)
		return nil
	}
}

func (e *emitter) repeatStmts(b *lineWriter, n *ir.Node, sc *genScope) error {
	e.needStrconv = true
	src, err := e.resolvePath(n.Source, sc, n.Loc)
	if err != nil {
		return err
	}
	t := src.typ
	if t.Kind() != reflect.Slice && t.Kind() != reflect.Array {
		return &ResolveError{Path: n.Source, Loc: n.Loc, Model: e.modelType, Reason: fmt.Sprintf("repeat source is %s, not a collection", t)}
	}
	idx := fmt.Sprintf("i%d", e.loopDepth)
	item := fmt.Sprintf("it%d", e.loopDepth)
	e.loopDepth++
	defer func() { e.loopDepth-- }()

	inner := &genScope{expr: sc.root().expr, typ: sc.root().typ, itemExpr: item, itemType: t.Elem(), parent: sc}
	b.linef("for %s, %s := range %s {", idx, item, src.expr)
	b.indent++
	if err := e.appendStmts(b, n.Template(), inner, fmt.Sprintf("strconv.Itoa(%s)", idx)); err != nil {
		return err
	}
	b.indent--
	b.linef("}")
	return nil
}

func (e *emitter) conditionalStmts(b *lineWriter, n *ir.Node, sc *genScope, keyExpr string) error {
	src, err := e.resolvePath(n.Source, sc, n.Loc)
	if err != nil {
		return err
	}
	cond, err := truthyExpr(src)
	if err != nil {
		return &ResolveError{Path: n.Source, Loc: n.Loc, Model: e.modelType, Reason: err.Error()}
	}
	b.linef("if %s {", cond)
	b.indent++
	if err := e.appendStmts(b, n.Template(), sc, keyExpr); err != nil {
		return err
	}
	b.indent--
	b.linef("}")
	return nil
}

// attrExpr renders the resolved value of one attribute as a Go expression.
func (e *emitter) attrExpr(a *ir.Attr, sc *genScope, loc ir.Span) (string, error) {
	switch a.Kind {
	case ir.AttrStatic:
		lit, err := literal(a.Value)
		if err != nil {
			return "", fmt.Errorf("%s: attribute %q: %w", loc, a.Name, err)
		}
		return lit, nil
	case ir.AttrBinding:
		r, err := e.resolvePath(a.Path, sc, loc)
		if err != nil {
			return "", err
		}
		return r.expr, nil
	case ir.AttrInterpolated:
		var raw strings.Builder
		var format strings.Builder
		var args []string
		for _, part := range a.Parts {
			if !part.IsPath() {
				raw.WriteString(part.Text)
				format.WriteString(strings.ReplaceAll(part.Text, "%", "%%"))
				continue
			}
			r, err := e.resolvePath(part.Path, sc, loc)
			if err != nil {
				return "", err
			}
			format.WriteString("%v")
			args = append(args, r.expr)
		}
		if len(args) == 0 {
			// No embedded paths: the interpolation collapses to its text.
			return strconv.Quote(raw.String()), nil
		}
		e.needFmt = true
		return fmt.Sprintf("fmt.Sprintf(%s, %s)", strconv.Quote(format.String()), strings.Join(args, ", ")), nil
	}
	return "", fmt.Errorf("%s: attribute %q has unknown kind", loc, a.Name)
}

// truthyExpr renders the condition test for a conditional source, typed by
// the statically known kind so it matches the interpreter's truthiness table.
func truthyExpr(r resolved) (string, error) {
	switch r.typ.Kind() {
	case reflect.Bool:
		return r.expr, nil
	case reflect.String:
		return r.expr + ` != ""`, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return r.expr + " != 0", nil
	case reflect.Slice, reflect.Array, reflect.Map:
		return "len(" + r.expr + ") > 0", nil
	case reflect.Pointer:
		return r.expr + " != nil", nil
	}
	return "", fmt.Errorf("conditional source has untestable type %s", r.typ)
}

// literal renders a static attribute value as a Go literal of the same
// dynamic type, so both modes produce identical attribute values.
func literal(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "nil", nil
	case string:
		return strconv.Quote(x), nil
	case bool:
		return strconv.FormatBool(x), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return fmt.Sprintf("int64(%d)", x), nil
	case float64:
		return fmt.Sprintf("float64(%s)", strconv.FormatFloat(x, 'g', -1, 64)), nil
	}
	return "", fmt.Errorf("unsupported static literal type %T", v)
}

func (e *emitter) emitDispatch() string {
	names := make([]string, 0, len(e.handlers))
	for name := range e.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = strconv.Quote(name)
	}

	var b lineWriter
	b.linef("// DispatchEvent routes a renderer event to the statically known handler names")
	b.linef("// bound by the source document, through the shared registry contract.")
	b.linef("func DispatchEvent(reg *handler.Registry, name string, payload any) bool {")
	b.indent++
	b.linef("switch name {")
	b.linef("case %s:", strings.Join(quoted, ", "))
	b.indent++
	b.linef("return reg.Dispatch(name, payload)")
	b.indent--
	b.linef("}")
	b.linef("return false")
	b.indent--
	b.linef("}")
	return b.String()
}
