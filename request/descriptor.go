package request

import (
	"net/url"
	"strings"
)

// Descriptor is the request state an Executable dispatches. Build takes a deep
// copy of the builder, so later builder mutations do not leak into it.
type Descriptor struct {
	baseURL  string
	endpoint string
	method   Method
	headers  *Store
	params   *Store
	query    *Store
	body     any
}

func newDescriptor(baseURL string) *Descriptor {
	return &Descriptor{
		baseURL: baseURL,
		method:  MethodGet,
		headers: newHeaderStore(),
		params:  newParamStore(),
		query:   newQueryStore(),
	}
}

// URL returns the base URL joined with the endpoint, with every path parameter
// substituted in insertion order. Only the first ":name" occurrence is replaced
// and the match is literal, so ":id" also matches inside ":idx".
func (d *Descriptor) URL() string {
	u := d.baseURL
	if d.endpoint != "" {
		u += d.endpoint
	}
	for _, key := range d.params.keys {
		value, _ := d.params.Get(key)
		u = strings.Replace(u, ":"+key, value, 1)
	}
	return u
}

// BaseURL returns the base URL the builder was created with
func (d *Descriptor) BaseURL() string { return d.baseURL }

func (d *Descriptor) Endpoint() string { return d.endpoint }

func (d *Descriptor) Method() Method { return d.method }

func (d *Descriptor) Body() any { return d.body }

// Header looks up a header case-insensitively
func (d *Descriptor) Header(name string) (string, bool) {
	return d.headers.Get(name)
}

func (d *Descriptor) Param(name string) (string, bool) {
	return d.params.Get(name)
}

func (d *Descriptor) QueryParam(name string) []string {
	return d.query.Values(name)
}

// Headers returns a copy of the headers keyed by their lower-cased names
func (d *Descriptor) Headers() map[string]string {
	return d.headers.toMap()
}

// Query returns a copy of the query parameters
func (d *Descriptor) Query() url.Values {
	return d.query.toValues()
}

func (d *Descriptor) clone() *Descriptor {
	return &Descriptor{
		baseURL:  d.baseURL,
		endpoint: d.endpoint,
		method:   d.method,
		headers:  d.headers.clone(),
		params:   d.params.clone(),
		query:    d.query.clone(),
		body:     d.body,
	}
}
