package mapping

import (
	"fmt"
	"reflect"
)

// TransformFunc derives the final value for one target field. It receives
// the raw resolved value (nil for "multiple" sources) and the full source
// document, and must not mutate either. Returning an error skips the field
// without aborting the rest of the table.
type TransformFunc func(raw interface{}, doc map[string]interface{}) (interface{}, error)

// FieldSpec describes how to derive one target field from the source
// document. Exactly one of three source semantics applies per entry:
// a dotted document path, the literal sentinel "static" (emit Value), or
// "multiple" (the transform assembles the value from the whole document).
type FieldSpec struct {
	Target    string
	Source    string
	Value     interface{}
	Transform TransformFunc
}

// Table is an ordered collection of field specifications for one target
// entity. Iteration visits every entry in insertion order; duplicate
// targets are not expected and resolve last-write-wins.
type Table []FieldSpec

// Apply maps doc through the table and returns the flat output record plus
// one diagnostic error per field that failed to resolve. A failed or empty
// field is simply absent from the record; processing always continues to
// the end of the table.
func Apply(doc map[string]interface{}, table Table) (map[string]interface{}, []error) {
	record := make(map[string]interface{}, len(table))
	var errs []error

	for _, spec := range table {
		value, err := resolveSpec(doc, spec)
		if err != nil {
			errs = append(errs, fmt.Errorf("field %s: %w", spec.Target, err))
			continue
		}
		if isEmpty(value) {
			continue
		}
		record[spec.Target] = value
	}

	return record, errs
}

// resolveSpec produces the resolved value for a single specification.
// A panicking transform is contained here and reported as a field error.
func resolveSpec(doc map[string]interface{}, spec FieldSpec) (value interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			value = nil
			err = fmt.Errorf("transform panicked: %v", r)
		}
	}()

	switch spec.Source {
	case SourceStatic:
		return spec.Value, nil
	case SourceMultiple:
		if spec.Transform == nil {
			return nil, nil
		}
		return spec.Transform(nil, doc)
	default:
		raw := Resolve(doc, spec.Source)
		if spec.Transform == nil {
			return raw, nil
		}
		return spec.Transform(raw, doc)
	}
}

// isEmpty reports whether a resolved value must be omitted from the output
// record: nil, an empty string, or an empty sequence. Zero and false are
// meaningful values and are kept.
func isEmpty(value interface{}) bool {
	if value == nil {
		return true
	}
	switch v := value.(type) {
	case string:
		return v == ""
	case []interface{}:
		return len(v) == 0
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		return rv.Len() == 0
	}

	return false
}
