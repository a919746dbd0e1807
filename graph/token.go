package graph

import (
	"fmt"
	"io"
	"reflect"
	"runtime"
	"sort"
	"strings"

	xxhash "github.com/cespare/xxhash/v2"
)

// Tokened is implemented by values which carry their own stable content
// identity, such as materialization functors holding filesystem handles that
// must not contribute pointer addresses to a token.
type Tokened interface {
	Token() string
}

// Tokenize produces a deterministic hex token from a sequence of values.
// Equal logical inputs always produce equal tokens, across processes, so
// collection names are content-addressed and equivalent sub-graphs can be
// shared or deduplicated by a scheduler.
func Tokenize(vals ...any) string {
	hasher := xxhash.New()
	for _, v := range vals {
		writeToken(hasher, v)
	}
	return fmt.Sprintf("%016x", hasher.Sum64())
}

func writeToken(w io.Writer, v any) {
	switch t := v.(type) {
	case nil:
		fmt.Fprint(w, "<nil>")
	case string:
		fmt.Fprintf(w, "s:%s;", t)
	case []byte:
		fmt.Fprintf(w, "b:%x;", t)
	case bool:
		fmt.Fprintf(w, "t:%v;", t)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		fmt.Fprintf(w, "i:%d;", t)
	case float32, float64:
		fmt.Fprintf(w, "f:%v;", t)
	case Key:
		fmt.Fprintf(w, "k:%s/%d;", t.Name, t.Index)
	case Tokened:
		fmt.Fprintf(w, "o:%s;", t.Token())
	case PartitionFn:
		fmt.Fprintf(w, "fn:%s;", Funcname(t))
	default:
		writeReflectedToken(w, reflect.ValueOf(v))
	}
}

// writeReflectedToken handles compound values: slices and arrays recurse
// element-wise, maps recurse in sorted key order, pointers are dereferenced
// so addresses never leak into tokens, and functions hash by name.
func writeReflectedToken(w io.Writer, rv reflect.Value) {
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		fmt.Fprintf(w, "[%d:", rv.Len())
		for i := 0; i < rv.Len(); i++ {
			writeToken(w, rv.Index(i).Interface())
		}
		fmt.Fprint(w, "]")
	case reflect.Map:
		keys := make([]string, 0, rv.Len())
		elems := make(map[string]reflect.Value, rv.Len())
		for _, k := range rv.MapKeys() {
			ks := fmt.Sprintf("%v", k.Interface())
			keys = append(keys, ks)
			elems[ks] = rv.MapIndex(k)
		}
		sort.Strings(keys)
		fmt.Fprintf(w, "{%d:", rv.Len())
		for _, ks := range keys {
			fmt.Fprintf(w, "%s=", ks)
			writeToken(w, elems[ks].Interface())
		}
		fmt.Fprint(w, "}")
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			fmt.Fprint(w, "<nil>")
			return
		}
		writeReflectedToken(w, rv.Elem())
	case reflect.Func:
		fmt.Fprintf(w, "fn:%s;", funcnameFromValue(rv))
	case reflect.Struct:
		fmt.Fprintf(w, "(%s:", rv.Type().Name())
		for i := 0; i < rv.NumField(); i++ {
			if rv.Field(i).CanInterface() {
				writeToken(w, rv.Field(i).Interface())
			}
		}
		fmt.Fprint(w, ")")
	default:
		fmt.Fprintf(w, "%s:%v;", rv.Type(), rv)
	}
}

// Funcname derives a short, stable display name for a function value, used
// both as the default collection label and as a function's token identity.
func Funcname(fn any) string {
	if fn == nil {
		return "func"
	}
	if t, ok := fn.(Tokened); ok {
		return t.Token()
	}
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func {
		return fmt.Sprintf("%T", fn)
	}
	return funcnameFromValue(rv)
}

func funcnameFromValue(rv reflect.Value) string {
	rf := runtime.FuncForPC(rv.Pointer())
	if rf == nil {
		return "func"
	}
	name := rf.Name()
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	name = strings.TrimSuffix(name, "-fm")
	return name
}
