package request

import (
	"fmt"
	"strings"
)

// Method is an HTTP method supported by the builder
type Method string

const (
	MethodGet     Method = "GET"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodPatch   Method = "PATCH"
	MethodDelete  Method = "DELETE"
	MethodHead    Method = "HEAD"
	MethodOptions Method = "OPTIONS"
	MethodLink    Method = "LINK"
	MethodUnlink  Method = "UNLINK"
)

var methods = []Method{
	MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete,
	MethodHead, MethodOptions, MethodLink, MethodUnlink,
}

// ParseMethod resolves a method name case-insensitively
func ParseMethod(name string) (Method, error) {
	upper := Method(strings.ToUpper(strings.TrimSpace(name)))
	for _, m := range methods {
		if m == upper {
			return m, nil
		}
	}
	return "", fmt.Errorf("unsupported HTTP method %q", name)
}

func (m Method) String() string {
	return string(m)
}
