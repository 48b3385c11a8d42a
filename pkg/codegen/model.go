package codegen

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"unicode"
)

// ModelFromJSON derives a model prototype from a serialized example value, so
// builds driven by the CLI can statically resolve bindings without the
// application's Go types. JSON objects become structs with exported,
// json-tagged fields, arrays become slices typed by their first element, and
// scalars map to string/bool/float64. Use it with Options.EmitModel so the
// generated file also declares the type.
func ModelFromJSON(src []byte) (any, error) {
	var v any
	if err := json.Unmarshal(src, &v); err != nil {
		return nil, fmt.Errorf("model prototype: %w", err)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("model prototype must be a JSON object, got %T", v)
	}
	t, err := structTypeOf(obj, "model")
	if err != nil {
		return nil, err
	}
	return reflect.New(t).Interface(), nil
}

// NewOf returns a fresh zero instance of a prototype's underlying struct
// type, as a pointer. Reload cycles use it so every restore target has the
// same shape as the original prototype.
func NewOf(prototype any) any {
	t := reflect.TypeOf(prototype)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return reflect.New(t).Interface()
}

func structTypeOf(obj map[string]any, where string) (reflect.Type, error) {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]reflect.StructField, 0, len(keys))
	for _, k := range keys {
		ft, err := typeOfValue(obj[k], where+"."+k)
		if err != nil {
			return nil, err
		}
		name := exportName(k)
		if name == "" {
			return nil, fmt.Errorf("model prototype: key %q at %s cannot become a Go field", k, where)
		}
		fields = append(fields, reflect.StructField{
			Name: name,
			Type: ft,
			Tag:  reflect.StructTag(fmt.Sprintf(`json:%q`, k)),
		})
	}
	return reflect.StructOf(fields), nil
}

func typeOfValue(v any, where string) (reflect.Type, error) {
	switch x := v.(type) {
	case string:
		return reflect.TypeOf(""), nil
	case bool:
		return reflect.TypeOf(false), nil
	case float64:
		return reflect.TypeOf(float64(0)), nil
	case map[string]any:
		return structTypeOf(x, where)
	case []any:
		if len(x) == 0 {
			return nil, fmt.Errorf("model prototype: cannot infer element type of empty array at %s", where)
		}
		elem, err := typeOfValue(x[0], where+"[0]")
		if err != nil {
			return nil, err
		}
		return reflect.SliceOf(elem), nil
	case nil:
		return nil, fmt.Errorf("model prototype: cannot infer type of null at %s", where)
	}
	return nil, fmt.Errorf("model prototype: unsupported value %T at %s", v, where)
}

func exportName(key string) string {
	var b strings.Builder
	up := true
	for _, r := range key {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			up = true
			continue
		}
		if b.Len() == 0 && unicode.IsDigit(r) {
			continue
		}
		if up {
			r = unicode.ToUpper(r)
			up = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// emitModelType renders the declaration of a prototype-derived model type.
// Layout is rough here; the Validator's formatting pass canonicalizes it.
func emitModelType(name string, t reflect.Type) string {
	var b strings.Builder
	fmt.Fprintf(&b, "// %s is the model shape this document binds against, derived from the\n", name)
	b.WriteString("// build's model prototype.\n")
	fmt.Fprintf(&b, "type %s %s\n", name, typeExpr(t, 0))
	return b.String()
}

func typeExpr(t reflect.Type, depth int) string {
	switch t.Kind() {
	case reflect.Struct:
		var b strings.Builder
		b.WriteString("struct {\n")
		tabs := strings.Repeat("\t", depth+1)
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			b.WriteString(tabs + f.Name + " " + typeExpr(f.Type, depth+1))
			if f.Tag != "" {
				b.WriteString(" `" + string(f.Tag) + "`")
			}
			b.WriteString("\n")
		}
		b.WriteString(strings.Repeat("\t", depth) + "}")
		return b.String()
	case reflect.Slice:
		return "[]" + typeExpr(t.Elem(), depth)
	case reflect.Pointer:
		return "*" + typeExpr(t.Elem(), depth)
	default:
		return t.String()
	}
}
