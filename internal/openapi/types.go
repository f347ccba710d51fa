// Package openapi turns the operations of an OpenAPI 3 or Swagger 2 document
// into request builder settings.
package openapi

import (
	"github.com/brizzai/auto-request/request"
	"github.com/getkin/kin-openapi/openapi3"
)

// Operation describes a single path + method of a document. Endpoint is Path
// with every "{name}" placeholder rewritten as ":name", the form the request
// builder substitutes path parameters into.
type Operation struct {
	ID            string
	Method        request.Method
	Path          string
	Endpoint      string
	PathParams    []string
	QueryParams   []string
	RequiredQuery []string
	Accept        string
	ContentType   string
	BodyRequired  bool
	Summary       string
	Description   string
}

// Document is a parsed OpenAPI document
type Document struct {
	doc        *openapi3.T
	operations []*Operation
	byID       map[string]*Operation
}
