package request

import (
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"sort"
	"strings"

	"github.com/google/go-querystring/query"
)

// Pair is a single key-value entry
type Pair struct {
	Key   string
	Value any
}

// Store is an ordered key-value container backing headers, path parameters or
// query parameters. Keys are unique; insertion order is kept.
type Store struct {
	// foldKeys lower-cases keys on every access (headers)
	foldKeys bool
	// multi keeps every value and makes Add accumulate (query parameters)
	multi     bool
	formatErr string

	keys   []string
	values map[string][]string
}

func newHeaderStore() *Store {
	return &Store{foldKeys: true, formatErr: invalidHeadersFormat, values: map[string][]string{}}
}

func newParamStore() *Store {
	return &Store{formatErr: invalidParamsFormat, values: map[string][]string{}}
}

func newQueryStore() *Store {
	return &Store{multi: true, formatErr: invalidQueryFormat, values: map[string][]string{}}
}

func (s *Store) key(name string) string {
	if s.foldKeys {
		return strings.ToLower(name)
	}
	return name
}

// Get returns the value stored under name. Multiple query values are joined with ",".
func (s *Store) Get(name string) (string, bool) {
	values, ok := s.values[s.key(name)]
	if !ok {
		return "", false
	}
	return strings.Join(values, ","), true
}

// Values returns a copy of every value stored under name
func (s *Store) Values(name string) []string {
	return slices.Clone(s.values[s.key(name)])
}

// Has reports whether name is present
func (s *Store) Has(name string) bool {
	_, ok := s.values[s.key(name)]
	return ok
}

// Len returns the number of keys
func (s *Store) Len() int {
	return len(s.keys)
}

// Keys returns the keys in insertion order
func (s *Store) Keys() []string {
	return slices.Clone(s.keys)
}

// Add normalizes value and stores it under key. key is either a string name, in
// which case format optionally renders time values, or a Pair whose own value is
// used. Query stores append to an existing entry; other stores overwrite it.
// Values that normalize to nothing are ignored.
func (s *Store) Add(key any, value any, format ...DateFormatter) error {
	var name string
	switch k := key.(type) {
	case string:
		name = k
	case Pair:
		name, value = k.Key, k.Value
	case *Pair:
		if k == nil {
			return newTypeMismatch(invalidNameType, key)
		}
		name, value = k.Key, k.Value
	default:
		return newTypeMismatch(invalidNameType, key)
	}

	var f DateFormatter
	if len(format) > 0 {
		f = format[0]
	}
	s.put(name, Normalize(value, f), s.multi)
	return nil
}

// Remove deletes the entry named by key, a string or a Pair. Absent keys are ignored.
func (s *Store) Remove(key any) error {
	var name string
	switch k := key.(type) {
	case string:
		name = k
	case Pair:
		name = k.Key
	case *Pair:
		if k == nil {
			return newTypeMismatch(invalidNameType, key)
		}
		name = k.Key
	default:
		return newTypeMismatch(invalidNameType, key)
	}

	name = s.key(name)
	if _, ok := s.values[name]; !ok {
		return nil
	}
	delete(s.values, name)
	s.keys = slices.DeleteFunc(s.keys, func(k string) bool { return k == name })
	return nil
}

// SetAll merges src into the store, replacing the values of keys it names.
// Accepted shapes are a []Pair, a map type (http.Header, url.Values,
// map[string][]string) or a record (map[string]string, map[string]any).
// Map keys are applied in sorted order.
func (s *Store) SetAll(src any) error {
	switch m := src.(type) {
	case []Pair:
		for _, p := range m {
			s.put(p.Key, Normalize(p.Value, nil), false)
		}
	case http.Header:
		putMap(s, m)
	case url.Values:
		putMap(s, m)
	case map[string][]string:
		putMap(s, m)
	case map[string]string:
		putMap(s, m)
	case map[string]any:
		putMap(s, m)
	default:
		return newTypeMismatch(s.formatErr, src)
	}
	return nil
}

// SetStruct merges the fields of a struct tagged with `url:"..."` into the store
func (s *Store) SetStruct(v any) error {
	values, err := query.Values(v)
	if err != nil {
		return fmt.Errorf("failed to encode %T as query values: %w", v, err)
	}
	return s.SetAll(values)
}

func putMap[V any](s *Store, m map[string]V) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		s.put(k, Normalize(m[k], nil), false)
	}
}

func (s *Store) put(name string, values []string, accumulate bool) {
	if len(values) == 0 {
		return
	}
	name = s.key(name)
	if !s.multi {
		values = []string{strings.Join(values, ",")}
	}

	existing, ok := s.values[name]
	if !ok {
		s.keys = append(s.keys, name)
	}
	if ok && accumulate {
		values = append(slices.Clone(existing), values...)
	}
	s.values[name] = values
}

func (s *Store) clone() *Store {
	c := &Store{
		foldKeys:  s.foldKeys,
		multi:     s.multi,
		formatErr: s.formatErr,
		keys:      slices.Clone(s.keys),
		values:    make(map[string][]string, len(s.values)),
	}
	for k, v := range s.values {
		c.values[k] = slices.Clone(v)
	}
	return c
}

// toMap flattens the store into a plain string mapping
func (s *Store) toMap() map[string]string {
	out := make(map[string]string, len(s.keys))
	for _, k := range s.keys {
		out[k] = strings.Join(s.values[k], ",")
	}
	return out
}

func (s *Store) toValues() url.Values {
	out := make(url.Values, len(s.keys))
	for _, k := range s.keys {
		out[k] = slices.Clone(s.values[k])
	}
	return out
}
