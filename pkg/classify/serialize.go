package classify

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"time"
)

// Data type labels.
const (
	TypeString   = "string"
	TypeNumber   = "number"
	TypeBoolean  = "boolean"
	TypeObject   = "object"
	TypeArray    = "array"
	TypeNull     = "null"
	TypeError    = "error"
	TypeDate     = "date"
	TypeFunction = "function"
	TypeUnknown  = "unknown"
)

// MaxDepth bounds how far nested values are walked.
const MaxDepth = 10

const (
	unserializable = "[Unserializable]"
	circular       = "[Circular]"
	tooDeep        = "[Max depth]"
)

var (
	timeType  = reflect.TypeOf(time.Time{})
	errorType = reflect.TypeOf((*error)(nil)).Elem()
)

func typeOf(v any) string {
	switch x := v.(type) {
	case nil:
		return TypeNull
	case string, []byte:
		return TypeString
	case bool:
		return TypeBoolean
	case error:
		return TypeError
	case time.Time:
		return TypeDate
	case *time.Time:
		if x == nil {
			return TypeNull
		}
		return TypeDate
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return TypeNull
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return TypeNumber
	case reflect.String:
		return TypeString
	case reflect.Bool:
		return TypeBoolean
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return TypeNull
		}
		return TypeArray
	case reflect.Map:
		if rv.IsNil() {
			return TypeNull
		}
		return TypeObject
	case reflect.Struct:
		if rv.Type() == timeType {
			return TypeDate
		}
		return TypeObject
	case reflect.Func:
		return TypeFunction
	}
	return TypeUnknown
}

// serialize renders one logged value as text and reports its nesting depth.
func serialize(v any) (string, int) {
	switch x := v.(type) {
	case nil:
		return "null", 0
	case string:
		return x, 0
	case []byte:
		return string(x), 0
	case error:
		return x.Error(), 0
	case time.Time:
		return x.Format(time.RFC3339), 0
	case fmt.Stringer:
		return x.String(), 0
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct, reflect.Pointer, reflect.Interface:
		w := &walker{seen: make(map[uintptr]bool)}
		tree := w.walk(rv, 0)
		b, err := json.Marshal(tree)
		if err != nil {
			return unserializable, w.deepest
		}
		return string(b), w.deepest
	case reflect.Func:
		return "[Function]", 0
	}
	return fmt.Sprint(v), 0
}

// walker copies a value into plain maps/slices, cutting cycles and deep nesting.
type walker struct {
	seen    map[uintptr]bool
	deepest int
}

func (w *walker) walk(rv reflect.Value, depth int) any {
	if !rv.IsValid() {
		return nil
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		if rv.IsNil() {
			return nil
		}
	}

	if rv.CanInterface() && rv.Type().Implements(errorType) {
		return rv.Interface().(error).Error()
	}

	switch rv.Kind() {
	case reflect.Interface:
		return w.walk(rv.Elem(), depth)

	case reflect.Pointer:
		ptr := rv.Pointer()
		if w.seen[ptr] {
			return circular
		}
		w.seen[ptr] = true
		defer delete(w.seen, ptr)
		return w.walk(rv.Elem(), depth)

	case reflect.Map:
		level, ok := w.enter(depth)
		if !ok {
			return tooDeep
		}
		ptr := rv.Pointer()
		if w.seen[ptr] {
			return circular
		}
		w.seen[ptr] = true
		defer delete(w.seen, ptr)

		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[fmt.Sprint(iter.Key().Interface())] = w.walk(iter.Value(), level)
		}
		return out

	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 && rv.Kind() == reflect.Slice {
			return string(rv.Bytes())
		}
		level, ok := w.enter(depth)
		if !ok {
			return tooDeep
		}
		if rv.Kind() == reflect.Slice && rv.Len() > 0 {
			ptr := rv.Pointer()
			if w.seen[ptr] {
				return circular
			}
			w.seen[ptr] = true
			defer delete(w.seen, ptr)
		}

		out := make([]any, rv.Len())
		for i := range out {
			out[i] = w.walk(rv.Index(i), level)
		}
		return out

	case reflect.Struct:
		if rv.Type() == timeType {
			return rv.Interface().(time.Time).Format(time.RFC3339)
		}
		level, ok := w.enter(depth)
		if !ok {
			return tooDeep
		}

		t := rv.Type()
		out := make(map[string]any, t.NumField())
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			out[fieldName(f)] = w.walk(rv.Field(i), level)
		}
		return out

	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Sprint(f)
		}
		return f

	case reflect.Complex64, reflect.Complex128:
		return fmt.Sprint(rv.Complex())

	case reflect.Func:
		return "[Function]"

	case reflect.Chan, reflect.UnsafePointer:
		return fmt.Sprintf("[%s]", rv.Type())
	}

	if rv.CanInterface() {
		return rv.Interface()
	}
	return fmt.Sprint(rv)
}

// enter records one more level of nesting; false once MaxDepth is exceeded.
func (w *walker) enter(depth int) (int, bool) {
	level := depth + 1
	if level > MaxDepth {
		return level, false
	}
	if level > w.deepest {
		w.deepest = level
	}
	return level, true
}

func fieldName(f reflect.StructField) string {
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
