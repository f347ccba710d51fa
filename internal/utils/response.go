package utils

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/brizzai/auto-request/internal/logger"
	"go.uber.org/zap"
)

// FormatBody renders a response body for terminal output. JSON bodies are
// indented; anything else is returned as text.
func FormatBody(contentType string, body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ""
	}
	if !isJSON(contentType, trimmed) {
		return string(body)
	}

	var out bytes.Buffer
	if err := json.Indent(&out, trimmed, "", "  "); err != nil {
		logger.Debug("Failed to indent JSON body", zap.Error(err))
		return string(body)
	}
	return out.String()
}

func isJSON(contentType string, body []byte) bool {
	if strings.Contains(strings.ToLower(contentType), "json") {
		return true
	}
	return contentType == "" && (body[0] == '{' || body[0] == '[')
}
