package openapi

import (
	"slices"
	"strings"

	"github.com/brizzai/auto-request/request"
)

// Operations returns every operation ordered by path, then method
func (d *Document) Operations() []*Operation {
	return slices.Clone(d.operations)
}

// Operation looks up an operation by its operationId or generated id
func (d *Document) Operation(id string) (*Operation, bool) {
	op, ok := d.byID[id]
	return op, ok
}

// Find looks up an operation by method and path template, e.g. GET /users/{id}
func (d *Document) Find(method request.Method, path string) (*Operation, bool) {
	for _, op := range d.operations {
		if op.Method == method && op.Path == path {
			return op, true
		}
	}
	return nil, false
}

func (d *Document) Title() string {
	if d.doc.Info == nil {
		return ""
	}
	return d.doc.Info.Title
}

func (d *Document) Version() string {
	if d.doc.Info == nil {
		return ""
	}
	return d.doc.Info.Version
}

// ServerURL returns the first server URL declared by the document, without a trailing slash
func (d *Document) ServerURL() string {
	for _, server := range d.doc.Servers {
		if server != nil && server.URL != "" {
			return strings.TrimRight(server.URL, "/")
		}
	}
	return ""
}
