// Package mapping implements the declarative field-mapping engine that
// turns a nested source document into a flat CRM field record.
package mapping

import "strings"

// Reserved source sentinels. A FieldSpec whose Source equals one of these
// is not resolved as a document path.
const (
	SourceStatic   = "static"
	SourceMultiple = "multiple"
)

// Resolve walks doc along the dotted path and returns the value found
// there, or nil when any segment is missing, an intermediate value is not
// an object, or the path is empty or one of the reserved sentinels. It
// never panics on malformed documents. Array indexing is not supported;
// traversal is purely over nested objects.
func Resolve(doc map[string]interface{}, path string) interface{} {
	if path == "" || path == SourceStatic || path == SourceMultiple {
		return nil
	}

	var current interface{} = doc
	for _, segment := range strings.Split(path, ".") {
		obj, ok := current.(map[string]interface{})
		if !ok {
			return nil
		}
		current, ok = obj[segment]
		if !ok {
			return nil
		}
	}

	return current
}
