package preset

// Preset is a named, reusable request definition
type Preset struct {
	Name                string            `yaml:"name"`
	Description         string            `yaml:"description,omitempty"`
	Method              string            `yaml:"method,omitempty"`
	Endpoint            string            `yaml:"endpoint,omitempty"`
	Headers             map[string]string `yaml:"headers,omitempty"`
	Params              map[string]any    `yaml:"params,omitempty"`
	Query               map[string]any    `yaml:"query,omitempty"`
	Body                any               `yaml:"body,omitempty"`
	ContentType         string            `yaml:"content_type,omitempty"`
	RetryOn             []int             `yaml:"retry_on,omitempty"`
	RetryOnNetworkError bool              `yaml:"retry_on_network_error,omitempty"`
}

// Set is the content of a preset file
type Set struct {
	BaseURL string   `yaml:"base_url,omitempty"`
	Presets []Preset `yaml:"presets"`
}
