// Package state serializes a live model into a schema-less value tree and
// restores it into a freshly built model whose shape may have changed.
// Hot-reloaded edits routinely add, remove, and retype model fields, so
// restoration is best-effort and schema-tolerant. Snapshots live only for
// the duration of one reload cycle and are never persisted.
package state

import (
	"fmt"
	"reflect"
)

// Value is the snapshot tree: maps, slices, and scalars only.
type Value = any

// FieldWarning records one snapshot field that could not be restored because
// its type or shape no longer matches the model.
type FieldWarning struct {
	Field  string
	Reason string
}

// RestoreReport summarizes one restore attempt. Nothing in it is fatal.
type RestoreReport struct {
	// Restored lists fields carried over from the snapshot.
	Restored []string
	// Dropped lists snapshot fields with no home in the new model shape.
	Dropped []string
	// Warnings lists type/shape mismatches; those fields keep the new
	// model's defaults.
	Warnings []FieldWarning
}

// Clean reports whether every snapshot field found a home unchanged.
func (r *RestoreReport) Clean() bool {
	return len(r.Dropped) == 0 && len(r.Warnings) == 0
}

// Capture serializes a model into a Value tree. Structs become maps keyed by
// exported field name, slices become []any, nil pointers become nil, and
// scalars pass through.
func Capture(model any) Value {
	return capture(reflect.ValueOf(model))
}

func capture(v reflect.Value) Value {
	if !v.IsValid() {
		return nil
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return capture(v.Elem())
	case reflect.Struct:
		out := make(map[string]Value, v.NumField())
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			out[f.Name] = capture(v.Field(i))
		}
		return out
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil
		}
		out := make(map[string]Value, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = capture(iter.Value())
		}
		return out
	case reflect.Slice, reflect.Array:
		out := make([]Value, v.Len())
		for i := 0; i < v.Len(); i++ {
			out[i] = capture(v.Index(i))
		}
		return out
	default:
		return v.Interface()
	}
}

// Restore writes a snapshot into a new model instance, which must be a
// non-nil pointer to a struct. Snapshot fields missing from the model are
// dropped (reported, not fatal); model fields missing from the snapshot keep
// their defaults; incompatible types are dropped with a warning.
func Restore(snap Value, into any) *RestoreReport {
	report := &RestoreReport{}
	target := reflect.ValueOf(into)
	if target.Kind() != reflect.Pointer || target.IsNil() {
		report.Warnings = append(report.Warnings, FieldWarning{Reason: fmt.Sprintf("restore target must be a non-nil pointer, got %T", into)})
		return report
	}
	fields, ok := snap.(map[string]Value)
	if !ok {
		report.Warnings = append(report.Warnings, FieldWarning{Reason: fmt.Sprintf("snapshot root is %T, not a field map", snap)})
		return report
	}
	restoreStruct(fields, target.Elem(), "", report)
	return report
}

func restoreStruct(fields map[string]Value, target reflect.Value, prefix string, report *RestoreReport) {
	for target.Kind() == reflect.Pointer {
		if target.IsNil() {
			target.Set(reflect.New(target.Type().Elem()))
		}
		target = target.Elem()
	}
	if target.Kind() != reflect.Struct {
		report.Warnings = append(report.Warnings, FieldWarning{Field: prefix, Reason: fmt.Sprintf("expected struct, model has %s", target.Kind())})
		return
	}
	t := target.Type()
	seen := make(map[string]bool, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		seen[f.Name] = true
		snapVal, ok := fields[f.Name]
		if !ok {
			continue // new field keeps its default
		}
		assign(snapVal, target.Field(i), join(prefix, f.Name), report)
	}
	for name := range fields {
		if !seen[name] {
			report.Dropped = append(report.Dropped, join(prefix, name))
		}
	}
}

// assign writes one snapshot value into one model field, recursing through
// structs and sequences. On any mismatch the field keeps its default and a
// warning is recorded.
func assign(snapVal Value, target reflect.Value, path string, report *RestoreReport) {
	if snapVal == nil {
		return
	}
	for target.Kind() == reflect.Pointer {
		if target.IsNil() {
			target.Set(reflect.New(target.Type().Elem()))
		}
		target = target.Elem()
	}

	switch target.Kind() {
	case reflect.Struct:
		fields, ok := snapVal.(map[string]Value)
		if !ok {
			report.Warnings = append(report.Warnings, FieldWarning{Field: path, Reason: fmt.Sprintf("snapshot holds %T, model wants a struct", snapVal)})
			return
		}
		restoreStruct(fields, target, path, report)
		return
	case reflect.Slice:
		items, ok := snapVal.([]Value)
		if !ok {
			report.Warnings = append(report.Warnings, FieldWarning{Field: path, Reason: fmt.Sprintf("snapshot holds %T, model wants a slice", snapVal)})
			return
		}
		out := reflect.MakeSlice(target.Type(), len(items), len(items))
		before := len(report.Warnings)
		for i, item := range items {
			assign(item, out.Index(i), fmt.Sprintf("%s[%d]", path, i), report)
		}
		if len(report.Warnings) > before {
			return // element mismatch: keep the default, warnings already recorded
		}
		target.Set(out)
		report.Restored = append(report.Restored, path)
		return
	case reflect.Map:
		fields, ok := snapVal.(map[string]Value)
		if !ok || target.Type().Key().Kind() != reflect.String {
			report.Warnings = append(report.Warnings, FieldWarning{Field: path, Reason: fmt.Sprintf("snapshot holds %T, model wants %s", snapVal, target.Type())})
			return
		}
		out := reflect.MakeMapWithSize(target.Type(), len(fields))
		elem := target.Type().Elem()
		for k, item := range fields {
			ev := reflect.New(elem).Elem()
			before := len(report.Warnings)
			assign(item, ev, path+"."+k, report)
			if len(report.Warnings) > before {
				return
			}
			out.SetMapIndex(reflect.ValueOf(k), ev)
		}
		target.Set(out)
		report.Restored = append(report.Restored, path)
		return
	}

	sv := reflect.ValueOf(snapVal)
	if sv.Type().AssignableTo(target.Type()) {
		target.Set(sv)
		report.Restored = append(report.Restored, path)
		return
	}
	if convertibleScalar(sv.Type(), target.Type()) {
		target.Set(sv.Convert(target.Type()))
		report.Restored = append(report.Restored, path)
		return
	}
	report.Warnings = append(report.Warnings, FieldWarning{Field: path, Reason: fmt.Sprintf("snapshot holds %s, model wants %s", sv.Type(), target.Type())})
}

// convertibleScalar permits numeric widening and narrowing between reloads
// but refuses cross-family conversions like string to int that Go would
// technically allow.
func convertibleScalar(from, to reflect.Type) bool {
	return numericKind(from.Kind()) && numericKind(to.Kind()) && from.ConvertibleTo(to)
}

func numericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func join(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
