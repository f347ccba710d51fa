package request

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/brizzai/auto-request/transport"
	"gopkg.in/yaml.v3"
)

// decode converts a successful response into T
func decode[T any](resp *transport.Response) (T, error) {
	var out T
	switch target := any(&out).(type) {
	case **transport.Response:
		*target = resp
		return out, nil
	case *string:
		*target = string(resp.Body)
		return out, nil
	case *[]byte:
		*target = resp.Body
		return out, nil
	}

	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return out, nil
	}
	if strings.Contains(strings.ToLower(resp.ContentType()), "yaml") {
		err := yaml.Unmarshal(resp.Body, &out)
		return out, err
	}
	err := json.Unmarshal(resp.Body, &out)
	return out, err
}
