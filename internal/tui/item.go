package tui

import (
	"strings"

	"github.com/brizzai/auto-request/internal/openapi"
)

// OperationItem wraps an operation for display in the picker
// Implements list.Item
type OperationItem struct {
	Op *openapi.Operation
}

func (i OperationItem) Title() string {
	method := i.Op.Method.String()
	return methodStyle(method).Render(method) + " " + i.Op.Path
}

func (i OperationItem) Description() string {
	if i.Op.Summary != "" {
		return i.Op.ID + " - " + i.Op.Summary
	}
	return i.Op.ID
}

func (i OperationItem) FilterValue() string {
	return strings.Join([]string{i.Op.ID, i.Op.Method.String(), i.Op.Path, i.Op.Summary}, " ")
}
