package request

import (
	"fmt"
	"reflect"
	"strconv"
	"time"
)

// DateFormatter renders a time value for transmission
type DateFormatter func(time.Time) string

// ISODate renders t in UTC with millisecond precision, e.g. 2023-01-01T00:00:00.000Z
func ISODate(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

var timeType = reflect.TypeOf(time.Time{})

// Normalize converts a header, path or query value into its wire form.
//
// Times, or slices whose first element is a time, are rendered with format
// (ISODate when nil). Other slices are stringified element by element with nil
// elements dropped. Scalars become a single value. nil, empty strings and empty
// collections yield nil.
func Normalize(value any, format DateFormatter) []string {
	if value == nil {
		return nil
	}
	if format == nil {
		format = ISODate
	}

	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}

	if rv.Type() == timeType {
		return []string{format(rv.Interface().(time.Time))}
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return single(string(bytesOf(rv)))
		}
		return normalizeSlice(rv, format)
	case reflect.Map:
		if rv.Len() == 0 {
			return nil
		}
	}

	s, ok := stringify(rv, format)
	if !ok {
		return nil
	}
	return single(s)
}

func normalizeSlice(rv reflect.Value, format DateFormatter) []string {
	if rv.Len() == 0 {
		return nil
	}
	out := make([]string, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		if s, ok := stringify(rv.Index(i), format); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// stringify renders one scalar; ok is false for nil values
func stringify(rv reflect.Value, format DateFormatter) (string, bool) {
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return "", false
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return "", false
	}

	if rv.Type() == timeType {
		return format(rv.Interface().(time.Time)), true
	}
	if rv.CanInterface() {
		if s, ok := rv.Interface().(fmt.Stringer); ok {
			return s.String(), true
		}
	}

	switch rv.Kind() {
	case reflect.String:
		return rv.String(), true
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10), true
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 32), true
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), true
	}
	if rv.CanInterface() {
		return fmt.Sprint(rv.Interface()), true
	}
	return "", false
}

func bytesOf(rv reflect.Value) []byte {
	if rv.Kind() == reflect.Slice {
		return rv.Bytes()
	}
	b := make([]byte, rv.Len())
	reflect.Copy(reflect.ValueOf(b), rv)
	return b
}

func single(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}
