package wire

import (
	"encoding"
	"encoding/json"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

var (
	typeTextUnmarshaler   = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
	typeBinaryUnmarshaler = reflect.TypeOf((*encoding.BinaryUnmarshaler)(nil)).Elem()
	typeJSONUnmarshaler   = reflect.TypeOf((*json.Unmarshaler)(nil)).Elem()
	typeCBORUnmarshaler   = reflect.TypeOf((*cbor.Unmarshaler)(nil)).Elem()
)

// deprecationSource reports whether a key of an entity is deprecated.
// *schema.Manifest satisfies it.
type deprecationSource interface {
	IsDeprecated(entity, key string) bool
}

// fieldInfo is the wire view of one struct field.
type fieldInfo struct {
	name     string
	index    []int
	typ      reflect.Type
	required bool
}

var fieldCache sync.Map // reflect.Type -> []fieldInfo

// fieldsOf returns the wire fields of a struct type. A field is required
// when its tag lacks omitempty and its type is not a pointer.
func fieldsOf(t reflect.Type) []fieldInfo {
	if cached, ok := fieldCache.Load(t); ok {
		return cached.([]fieldInfo)
	}

	var fields []fieldInfo
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() && !sf.Anonymous {
			continue
		}

		tag := sf.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")

		if sf.Anonymous && name == "" {
			ft := sf.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				for _, inner := range fieldsOf(ft) {
					inner.index = append([]int{i}, inner.index...)
					if sf.Type.Kind() == reflect.Pointer {
						inner.required = false
					}
					fields = append(fields, inner)
				}
				continue
			}
		}
		if !sf.IsExported() {
			continue
		}
		if name == "" {
			name = sf.Name
		}

		omitempty := strings.Contains(","+opts+",", ",omitempty,") || strings.Contains(","+opts+",", ",omitzero,")
		fields = append(fields, fieldInfo{
			name:     name,
			index:    []int{i},
			typ:      sf.Type,
			required: !omitempty && sf.Type.Kind() != reflect.Pointer,
		})
	}

	fieldCache.Store(t, fields)
	return fields
}

// isLeaf returns true for types that decode themselves from a scalar.
func isLeaf(t reflect.Type) bool {
	pt := reflect.PointerTo(t)
	if pt.Implements(typeTextUnmarshaler) || pt.Implements(typeBinaryUnmarshaler) ||
		pt.Implements(typeJSONUnmarshaler) || pt.Implements(typeCBORUnmarshaler) {
		return true
	}
	return false
}

// checker walks a generic document tree alongside a Go type.
type checker struct {
	schema     deprecationSource
	deprecated []string
}

// check validates v, the generic decoding of a document, against t.
func (c *checker) check(path string, t reflect.Type, v any) error {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if v == nil {
		if path == "" {
			return malformed("", "document is null")
		}
		return nil
	}
	if isLeaf(t) {
		return nil
	}

	switch t.Kind() {
	case reflect.Struct:
		obj, ok := v.(map[string]any)
		if !ok {
			return malformed(path, "expected object")
		}
		return c.checkObject(path, t, obj)

	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return nil
		}
		arr, ok := v.([]any)
		if !ok {
			return malformed(path, "expected array")
		}
		elem := t.Elem()
		for i, item := range arr {
			p := indexPath(path, i)
			if item == nil {
				if elem.Kind() != reflect.Pointer {
					return malformed(p, "null element")
				}
				continue
			}
			if err := c.check(p, elem, item); err != nil {
				return err
			}
		}
		return nil

	default:
		// Scalars are checked by the typed decode.
		return nil
	}
}

func (c *checker) checkObject(path string, t reflect.Type, obj map[string]any) error {
	fields := fieldsOf(t)

	// The typed decoders fall back to case-insensitive field matching, so a
	// key that only differs from a field name in case would fill that field
	// without being checked here.
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if name, ok := caseVariant(fields, k); ok {
			return malformed(joinPath(path, k), "key differs from field "+name+" only in case")
		}
	}

	for _, f := range fields {
		value, present := obj[f.name]
		p := joinPath(path, f.name)

		if !present || value == nil {
			if f.required {
				if present {
					return malformed(p, "null for required field")
				}
				return malformed(p, "missing required field")
			}
			continue
		}
		if err := c.check(p, f.typ, value); err != nil {
			return err
		}
	}

	if c.schema != nil && t.Name() != "" {
		for _, k := range keys {
			if c.schema.IsDeprecated(t.Name(), k) {
				c.deprecated = append(c.deprecated, t.Name()+"."+k)
			}
		}
	}
	return nil
}

// caseVariant returns the field name that key matches case-insensitively
// but not exactly.
func caseVariant(fields []fieldInfo, key string) (string, bool) {
	for _, f := range fields {
		if f.name == key {
			return "", false
		}
	}
	for _, f := range fields {
		if strings.EqualFold(f.name, key) {
			return f.name, true
		}
	}
	return "", false
}
