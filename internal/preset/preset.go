// Package preset loads named request definitions from YAML files and applies
// them to request builders.
package preset

import (
	"fmt"
	"os"

	"github.com/brizzai/auto-request/internal/logger"
	"github.com/brizzai/auto-request/request"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Load loads a preset set from a YAML file. An empty path yields an empty set.
func Load(filePath string) (*Set, error) {
	if filePath == "" {
		logger.Debug("No preset file provided")
		return &Set{}, nil
	}

	logger.Info("Loading presets from file", zap.String("file", filePath))
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read preset file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a preset set
func Parse(data []byte) (*Set, error) {
	var set Set
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("invalid preset file: %w", err)
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return &set, nil
}

// Validate checks that presets are named uniquely and use supported methods
func (s *Set) Validate() error {
	seen := make(map[string]bool, len(s.Presets))
	for i, p := range s.Presets {
		if p.Name == "" {
			return fmt.Errorf("preset #%d has no name", i)
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate preset %q", p.Name)
		}
		seen[p.Name] = true

		if p.Method != "" {
			if _, err := request.ParseMethod(p.Method); err != nil {
				return fmt.Errorf("preset %q: %w", p.Name, err)
			}
		}
	}
	return nil
}

// Get returns the preset with the given name
func (s *Set) Get(name string) (*Preset, bool) {
	for i := range s.Presets {
		if s.Presets[i].Name == name {
			return &s.Presets[i], true
		}
	}
	return nil, false
}

// Names returns the preset names in file order
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.Presets))
	for _, p := range s.Presets {
		names = append(names, p.Name)
	}
	return names
}

// Apply copies the preset onto b. Values already present on b under the same
// key are replaced, and retry_on installs a RetryOnStatus error hook.
func (p *Preset) Apply(b *request.Builder) (*request.Builder, error) {
	if p.Method != "" {
		method, err := request.ParseMethod(p.Method)
		if err != nil {
			return b, fmt.Errorf("preset %q: %w", p.Name, err)
		}
		b.SetMethod(method)
	}
	if p.Endpoint != "" {
		b.SetEndpoint(p.Endpoint)
	}

	b.SetHeaders(p.Headers).
		SetParams(p.Params).
		SetQueryParams(p.Query)
	if p.ContentType != "" {
		b.SetContentType(p.ContentType)
	}
	if p.Body != nil {
		b.SetBody(p.Body)
	}

	if len(p.RetryOn) > 0 {
		b.AddOnErrorHook(request.RetryOnStatus(p.RetryOn...))
	}
	if p.RetryOnNetworkError {
		b.AddOnErrorHook(request.RetryOnNetworkError())
	}

	if err := b.Err(); err != nil {
		return b, fmt.Errorf("preset %q: %w", p.Name, err)
	}
	return b, nil
}
