package openapi

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/brizzai/auto-request/internal/logger"
	"github.com/brizzai/auto-request/request"
	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var pathParamPattern = regexp.MustCompile(`\{([^{}]+)\}`)

// Load parses an OpenAPI document from a JSON or YAML file
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read spec file: %w", err)
	}
	return Parse(data)
}

// ParseReader parses an OpenAPI document from a reader
func ParseReader(reader io.Reader) (*Document, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read spec: %w", err)
	}
	return Parse(data)
}

// Parse parses an OpenAPI 3 or Swagger 2 document. Swagger 2 documents are
// converted to OpenAPI 3 first.
func Parse(data []byte) (*Document, error) {
	doc, err := detectAndParseOpenAPI(data)
	if err != nil {
		return nil, err
	}
	return newDocument(doc), nil
}

// detectAndParseOpenAPI attempts to parse data as either OpenAPI 2.0 or 3.0
func detectAndParseOpenAPI(data []byte) (*openapi3.T, error) {
	// YAML is a superset of JSON, so one decoder covers both encodings
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI document: %w", err)
	}

	swaggerVersion, hasSwagger := raw["swagger"]
	openapiVersion, hasOpenAPI := raw["openapi"]

	if !hasSwagger && !hasOpenAPI {
		return nil, fmt.Errorf("document is missing 'swagger' or 'openapi' version field")
	}

	if hasSwagger {
		return convertOpenAPI2to3(raw, swaggerVersion)
	}

	if ver, ok := openapiVersion.(string); !ok || !strings.HasPrefix(ver, "3.") {
		return nil, fmt.Errorf("unsupported OpenAPI version: %v", openapiVersion)
	}

	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(data)
	if err != nil {
		logger.Error("Failed to parse OpenAPI 3.0 spec", zap.Error(err))
		return nil, fmt.Errorf("failed to parse OpenAPI spec: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("failed to parse OpenAPI spec: document is empty")
	}

	logger.Debug("Successfully parsed OpenAPI 3.0 spec")
	return doc, nil
}

// convertOpenAPI2to3 converts an OpenAPI 2.0 specification to OpenAPI 3.0
func convertOpenAPI2to3(raw map[string]any, swaggerVersion any) (*openapi3.T, error) {
	// An unquoted YAML version decodes as a number
	if v, ok := swaggerVersion.(float64); ok && v == 2 {
		raw["swagger"] = "2.0"
	}

	data, err := json.Marshal(jsonCompatible(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OpenAPI 2.0 spec: %w", err)
	}

	var swagger2Doc openapi2.T
	if err := json.Unmarshal(data, &swagger2Doc); err != nil {
		return nil, fmt.Errorf("failed to parse OpenAPI 2.0 spec: %w", err)
	}
	if swagger2Doc.Swagger != "2.0" {
		return nil, fmt.Errorf("unsupported Swagger version: %v", swaggerVersion)
	}

	logger.Debug("Detected OpenAPI 2.0 spec, converting to OpenAPI 3.0")
	convertedDoc, err := openapi2conv.ToV3(&swagger2Doc)
	if err != nil {
		logger.Error("Failed to convert OpenAPI 2.0 to 3.0", zap.Error(err))
		return nil, fmt.Errorf("failed to convert OpenAPI 2.0 to 3.0: %w", err)
	}
	return convertedDoc, nil
}

// jsonCompatible rewrites YAML maps with non-string keys, such as response
// codes, into maps encoding/json accepts
func jsonCompatible(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, item := range t {
			t[k] = jsonCompatible(item)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[fmt.Sprint(k)] = jsonCompatible(item)
		}
		return out
	case []any:
		for i, item := range t {
			t[i] = jsonCompatible(item)
		}
		return t
	default:
		return v
	}
}

func newDocument(doc *openapi3.T) *Document {
	d := &Document{doc: doc, byID: make(map[string]*Operation)}
	if doc.Paths == nil {
		return d
	}

	paths := doc.Paths.Map()
	keys := make([]string, 0, len(paths))
	for path := range paths {
		keys = append(keys, path)
	}
	sort.Strings(keys)

	for _, path := range keys {
		pathItem := paths[path]
		httpMethods := []struct {
			Method    request.Method
			Operation *openapi3.Operation
		}{
			{request.MethodGet, pathItem.Get},
			{request.MethodPost, pathItem.Post},
			{request.MethodPut, pathItem.Put},
			{request.MethodPatch, pathItem.Patch},
			{request.MethodDelete, pathItem.Delete},
			{request.MethodHead, pathItem.Head},
			{request.MethodOptions, pathItem.Options},
		}

		for _, httpMethod := range httpMethods {
			if httpMethod.Operation == nil {
				continue
			}
			op := createOperation(path, httpMethod.Method, pathItem, httpMethod.Operation)
			if _, dup := d.byID[op.ID]; dup {
				logger.Warn("Duplicate operation id, keeping the first",
					zap.String("operation_id", op.ID),
					zap.String("path", path),
					zap.String("method", op.Method.String()))
				continue
			}
			d.operations = append(d.operations, op)
			d.byID[op.ID] = op
		}
	}

	logger.Debug("Collected OpenAPI operations", zap.Int("count", len(d.operations)))
	return d
}

// createOperation collects what the builder needs from a path and operation
func createOperation(path string, method request.Method, pathItem *openapi3.PathItem, operation *openapi3.Operation) *Operation {
	op := &Operation{
		ID:          operation.OperationID,
		Method:      method,
		Path:        path,
		Endpoint:    toEndpoint(path),
		PathParams:  extractPathParams(path),
		Summary:     operation.Summary,
		Description: operation.Description,
		Accept:      responseContentType(operation),
	}
	if op.ID == "" {
		op.ID = generateOperationID(method, path)
	}

	// Path level parameters apply unless the operation overrides them
	seen := map[string]bool{}
	for _, params := range []openapi3.Parameters{operation.Parameters, pathItem.Parameters} {
		for _, param := range params {
			if param.Value == nil || param.Value.In != openapi3.ParameterInQuery || seen[param.Value.Name] {
				continue
			}
			seen[param.Value.Name] = true
			op.QueryParams = append(op.QueryParams, param.Value.Name)
			if param.Value.Required {
				op.RequiredQuery = append(op.RequiredQuery, param.Value.Name)
			}
		}
	}

	if operation.RequestBody != nil && operation.RequestBody.Value != nil {
		op.ContentType = preferredContentType(operation.RequestBody.Value.Content)
		op.BodyRequired = operation.RequestBody.Value.Required
	}

	return op
}

// generateOperationID names operations that have no operationId, e.g. get_users_id
func generateOperationID(method request.Method, path string) string {
	name := strings.TrimPrefix(path, "/")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "{", "")
	name = strings.ReplaceAll(name, "}", "")
	return strings.ToLower(fmt.Sprintf("%s_%s", method, name))
}

// extractPathParams extracts path parameters from a URL path
func extractPathParams(path string) []string {
	var params []string
	for _, match := range pathParamPattern.FindAllStringSubmatch(path, -1) {
		params = append(params, match[1])
	}
	return params
}

func toEndpoint(path string) string {
	return pathParamPattern.ReplaceAllString(path, ":$1")
}

// responseContentType returns the media type of the first successful response
func responseContentType(operation *openapi3.Operation) string {
	if operation.Responses == nil {
		return ""
	}
	responses := operation.Responses.Map()
	codes := make([]string, 0, len(responses))
	for code := range responses {
		codes = append(codes, code)
	}
	// status codes sort before "default", so the lowest declared code wins
	sort.Strings(codes)

	for _, code := range codes {
		response := responses[code]
		if response.Value == nil || len(response.Value.Content) == 0 {
			continue
		}
		return preferredContentType(response.Value.Content)
	}
	return ""
}

// preferredContentType picks application/json when offered, otherwise the
// first media type in lexical order
func preferredContentType(content openapi3.Content) string {
	if len(content) == 0 {
		return ""
	}
	types := make([]string, 0, len(content))
	for contentType := range content {
		types = append(types, contentType)
	}
	if slices.Contains(types, "application/json") {
		return "application/json"
	}
	sort.Strings(types)
	return types[0]
}
