package openapi

import (
	"fmt"
	"strings"

	"github.com/brizzai/auto-request/request"
)

// Apply sets the method, endpoint and negotiated media types of op on b.
// Headers already present on b are kept.
func (op *Operation) Apply(b *request.Builder) *request.Builder {
	b.SetMethod(op.Method).SetEndpoint(op.Endpoint)
	if op.Accept != "" && !b.HasHeader("accept") {
		b.AddHeader("accept", op.Accept)
	}
	if op.ContentType != "" && b.ContentType() == "" {
		b.SetContentType(op.ContentType)
	}
	return b
}

// Check reports the required path parameters, query parameters and body that b lacks
func (op *Operation) Check(b *request.Builder) error {
	var missing []string
	for _, name := range op.PathParams {
		if !b.HasParam(name) {
			missing = append(missing, "path parameter "+name)
		}
	}
	for _, name := range op.RequiredQuery {
		if !b.HasQueryParam(name) {
			missing = append(missing, "query parameter "+name)
		}
	}
	if op.BodyRequired && !b.HasBody() {
		missing = append(missing, "request body")
	}

	if len(missing) > 0 {
		return fmt.Errorf("operation %s is missing %s", op.ID, strings.Join(missing, ", "))
	}
	return nil
}

func (op *Operation) String() string {
	return fmt.Sprintf("%s %s", op.Method, op.Path)
}
