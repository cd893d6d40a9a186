package history

import (
	"fmt"
	"reflect"
	"time"

	"github.com/BlackSky-Jose/PolyMarket-trading-AI-model/internal/domain"
)

// Normalize converts an arbitrary payload value into a JSON-storable form.
//
// Primitives and time.Time pass through. String-keyed maps recurse over
// their values, slices and arrays recurse over their elements, and structs
// become a map of their exported fields. Anything else (channels, funcs,
// non-string-keyed maps, zero-field structs) falls back to its fmt string
// form so a write can always be attempted.
func Normalize(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case time.Time:
		return x
	case []byte:
		return string(x)
	case domain.Document:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = Normalize(val)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = Normalize(val)
		}
		return out
	case error:
		return x.Error()
	case fmt.Stringer:
		return x.String()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return rv.Interface()
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return Normalize(rv.Elem().Interface())
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return fmt.Sprint(v)
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = Normalize(iter.Value().Interface())
		}
		return out
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil
		}
		out := make([]any, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out = append(out, Normalize(rv.Index(i).Interface()))
		}
		return out
	case reflect.Struct:
		rt := rv.Type()
		out := make(map[string]any)
		for i := 0; i < rt.NumField(); i++ {
			f := rt.Field(i)
			if !f.IsExported() {
				continue
			}
			out[fieldKey(f)] = Normalize(rv.Field(i).Interface())
		}
		if len(out) == 0 {
			return fmt.Sprint(v)
		}
		return out
	default:
		return fmt.Sprint(v)
	}
}

// fieldKey returns the storage key for a struct field: the json tag name
// when one is declared, otherwise the Go field name.
func fieldKey(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if tag == "" || tag == "-" {
		return f.Name
	}
	for i := 0; i < len(tag); i++ {
		if tag[i] == ',' {
			if i == 0 {
				return f.Name
			}
			return tag[:i]
		}
	}
	return tag
}
