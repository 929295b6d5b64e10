package tools

import "fmt"

// Error codes attached to ExecutionError for uniform downstream handling.
const (
	CodeUnknownTool = "UNKNOWN_TOOL"
	CodeValidation  = "VALIDATION_ERROR"
	CodeExecution   = "EXECUTION_ERROR"
)

// ExecutionError reports a failed tool run with a categorized code.
type ExecutionError struct {
	ToolID  string `json:"tool_id"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	return fmt.Sprintf("tool %s failed [%s]: %s", e.ToolID, e.Code, e.Message)
}

// ValidationError reports a single argument that did not match the tool's
// parameter schema.
type ValidationError struct {
	Field   string `json:"field"`
	Value   any    `json:"value,omitempty"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid argument %q: %s", e.Field, e.Message)
}
