package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/turnflow/turnflow/logging"
	"github.com/turnflow/turnflow/model"
)

// Func is the implementation of one tool. It receives already-validated
// arguments and returns a JSON-serializable result.
type Func func(ctx context.Context, params map[string]any) (any, error)

// Options configures a Registry.
type Options struct {
	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger
}

type entry struct {
	description string
	parameters  map[string]any
	fn          Func
}

// Registry maps tool ids to schema-validated functions. It implements
// core.ToolExecutor and is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]*entry
	logger logging.Logger
}

// NewRegistry constructs an empty tool registry.
func NewRegistry(optFns ...func(o *Options)) *Registry {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Registry{tools: make(map[string]*entry), logger: opts.Logger}
}

// Register adds a tool under the given id with an explicit parameter schema.
// Registering an id twice is an error.
func (r *Registry) Register(id, description string, parameters map[string]any, fn Func) error {
	if id == "" {
		return fmt.Errorf("tool id must not be empty")
	}
	if fn == nil {
		return fmt.Errorf("tool %s has no implementation", id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[id]; exists {
		return fmt.Errorf("tool %s is already registered", id)
	}
	r.tools[id] = &entry{description: description, parameters: parameters, fn: fn}
	return nil
}

// RegisterFromStruct derives the parameter schema from a struct type via
// SchemaFor and registers the tool.
func (r *Registry) RegisterFromStruct(id, description string, structType any, fn Func) error {
	return r.Register(id, description, SchemaFor(structType), fn)
}

// Definitions exports the registered tools as model-facing definitions,
// sorted by id, for inclusion in LLM adapter requests.
func (r *Registry) Definitions() []model.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]model.ToolDefinition, 0, len(r.tools))
	for id, e := range r.tools {
		defs = append(defs, model.ToolDefinition{
			Name:        id,
			Description: e.description,
			Parameters:  e.parameters,
		})
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Execute implements core.ToolExecutor. Arguments are validated against the
// tool's schema before the function runs; failures come back as
// *ExecutionError with a categorized code.
func (r *Registry) Execute(ctx context.Context, toolID string, params map[string]any) (any, error) {
	r.mu.RLock()
	e, ok := r.tools[toolID]
	r.mu.RUnlock()

	if !ok {
		return nil, &ExecutionError{ToolID: toolID, Code: CodeUnknownTool, Message: "no such tool registered"}
	}

	r.logger.Debug("tool run starting", "tool_id", toolID)
	start := time.Now()

	if e.parameters != nil {
		if err := validateParams(params, e.parameters); err != nil {
			r.logger.Warn("tool argument validation failed", "tool_id", toolID, "error", err)
			return nil, &ExecutionError{
				ToolID:  toolID,
				Code:    CodeValidation,
				Message: err.Error(),
				Details: err,
			}
		}
	}

	result, err := e.fn(ctx, params)
	if err != nil {
		if execErr, ok := err.(*ExecutionError); ok {
			r.logger.Error("tool run failed", "tool_id", toolID, "code", execErr.Code, "error", execErr.Message)
			return nil, execErr
		}
		r.logger.Error("tool run failed", "tool_id", toolID, "error", err)
		return nil, &ExecutionError{ToolID: toolID, Code: CodeExecution, Message: err.Error()}
	}

	r.logger.Info("tool run succeeded", "tool_id", toolID, "duration_ms", time.Since(start).Milliseconds())
	return result, nil
}
