package request

import (
	"reflect"

	"github.com/brizzai/auto-request/metrics"
	"github.com/brizzai/auto-request/transport"
)

const contentTypeHeader = "content-type"

// Builder assembles a request step by step. Mutators return the builder so
// calls can be chained; a Builder is not safe for concurrent use.
type Builder struct {
	transport transport.Transport
	metrics   *metrics.Collector

	desc         *Descriptor
	successHooks []SuccessHook
	errorHooks   []ErrorHook

	err error
}

func newBuilder(url string, t transport.Transport, m *metrics.Collector) *Builder {
	return &Builder{
		transport: t,
		metrics:   m,
		desc:      newDescriptor(url),
	}
}

// Err returns the first error recorded by a chained bulk setter
func (b *Builder) Err() error {
	return b.err
}

func (b *Builder) record(err error) *Builder {
	if err != nil && b.err == nil {
		b.err = err
	}
	return b
}

// Transport returns the transport requests are dispatched through
func (b *Builder) Transport() transport.Transport {
	return b.transport
}

// URL returns the base URL
func (b *Builder) URL() string {
	return b.desc.baseURL
}

func (b *Builder) SetURL(url string) *Builder {
	b.desc.baseURL = url
	return b
}

func (b *Builder) Endpoint() string {
	return b.desc.endpoint
}

// SetEndpoint sets the path appended to the base URL. It may contain ":name"
// placeholders filled from the path parameters.
func (b *Builder) SetEndpoint(endpoint string) *Builder {
	b.desc.endpoint = endpoint
	return b
}

func (b *Builder) Method() Method {
	return b.desc.method
}

func (b *Builder) SetMethod(method Method) *Builder {
	b.desc.method = method
	return b
}

// ContentType returns the content-type header
func (b *Builder) ContentType() string {
	v, _ := b.desc.headers.Get(contentTypeHeader)
	return v
}

func (b *Builder) SetContentType(contentType string) *Builder {
	return b.AddHeader(contentTypeHeader, contentType)
}

func (b *Builder) Body() any {
	return b.desc.body
}

func (b *Builder) SetBody(body any) *Builder {
	b.desc.body = body
	return b
}

// HasBody reports whether a non-empty body is set
func (b *Builder) HasBody() bool {
	body := b.desc.body
	if body == nil {
		return false
	}
	rv := reflect.ValueOf(body)
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}

// Headers exposes the header store. Keys are case-insensitive.
func (b *Builder) Headers() *Store {
	return b.desc.headers
}

func (b *Builder) Header(name string) (string, bool) {
	return b.desc.headers.Get(name)
}

func (b *Builder) HasHeader(name string) bool {
	return b.desc.headers.Has(name)
}

// AddHeader sets header name to the normalized value. Time values are rendered
// with format when given.
func (b *Builder) AddHeader(name string, value any, format ...DateFormatter) *Builder {
	return b.record(b.desc.headers.Add(name, value, format...))
}

func (b *Builder) AddHeaderPair(p Pair) *Builder {
	return b.record(b.desc.headers.Add(p, nil))
}

func (b *Builder) RemoveHeader(name string) *Builder {
	return b.record(b.desc.headers.Remove(name))
}

func (b *Builder) RemoveHeaderPair(p Pair) *Builder {
	return b.record(b.desc.headers.Remove(p))
}

// SetHeaders merges a []Pair, http.Header, map[string][]string,
// map[string]string or map[string]any into the headers
func (b *Builder) SetHeaders(src any) *Builder {
	return b.record(b.desc.headers.SetAll(src))
}

// Params exposes the path parameter store
func (b *Builder) Params() *Store {
	return b.desc.params
}

func (b *Builder) Param(name string) (string, bool) {
	return b.desc.params.Get(name)
}

func (b *Builder) HasParam(name string) bool {
	return b.desc.params.Has(name)
}

func (b *Builder) AddParam(name string, value any, format ...DateFormatter) *Builder {
	return b.record(b.desc.params.Add(name, value, format...))
}

func (b *Builder) AddParamPair(p Pair) *Builder {
	return b.record(b.desc.params.Add(p, nil))
}

func (b *Builder) RemoveParam(name string) *Builder {
	return b.record(b.desc.params.Remove(name))
}

func (b *Builder) RemoveParamPair(p Pair) *Builder {
	return b.record(b.desc.params.Remove(p))
}

func (b *Builder) SetParams(src any) *Builder {
	return b.record(b.desc.params.SetAll(src))
}

// Query exposes the query parameter store
func (b *Builder) Query() *Store {
	return b.desc.query
}

func (b *Builder) QueryParam(name string) []string {
	return b.desc.query.Values(name)
}

func (b *Builder) HasQueryParam(name string) bool {
	return b.desc.query.Has(name)
}

// AddQueryParam appends the normalized value to the values already stored under name
func (b *Builder) AddQueryParam(name string, value any, format ...DateFormatter) *Builder {
	return b.record(b.desc.query.Add(name, value, format...))
}

func (b *Builder) AddQueryParamPair(p Pair) *Builder {
	return b.record(b.desc.query.Add(p, nil))
}

func (b *Builder) RemoveQueryParam(name string) *Builder {
	return b.record(b.desc.query.Remove(name))
}

func (b *Builder) RemoveQueryParamPair(p Pair) *Builder {
	return b.record(b.desc.query.Remove(p))
}

// SetQueryParams replaces the values of every key named in src
func (b *Builder) SetQueryParams(src any) *Builder {
	return b.record(b.desc.query.SetAll(src))
}

// SetQueryStruct merges a struct with `url` field tags into the query parameters
func (b *Builder) SetQueryStruct(v any) *Builder {
	return b.record(b.desc.query.SetStruct(v))
}

// AddOnSuccessHook registers a hook run after each successful transport call
func (b *Builder) AddOnSuccessHook(hook SuccessHook) *Builder {
	b.successHooks = append(b.successHooks, hook)
	return b
}

// AddOnErrorHook registers a hook run after each failed transport call
func (b *Builder) AddOnErrorHook(hook ErrorHook) *Builder {
	b.errorHooks = append(b.errorHooks, hook)
	return b
}

// Build snapshots the builder into an executable that yields the raw response
func (b *Builder) Build() (*Executable[*transport.Response], error) {
	return Build[*transport.Response](b)
}
