package tools

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrToolNotFound is returned when a requested tool is not in the registry
	ErrToolNotFound = errors.New("tool not found")

	// ErrToolAlreadyRegistered is returned when attempting to register a duplicate tool
	ErrToolAlreadyRegistered = errors.New("tool already registered")

	// ErrInvalidArguments is returned when a call does not match the tool schema
	ErrInvalidArguments = errors.New("invalid arguments")
)

// Tool is something the agent can call by name with JSON-like arguments.
type Tool interface {
	Name() string
	Description() string
	// Schema describes the accepted arguments as a JSON schema fragment.
	Schema() string
	Run(ctx context.Context, args map[string]any) (any, error)
}

// Registry manages the tools available to an agent.
type Registry struct {
	tools map[string]Tool
}

func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) Register(t Tool) error {
	name := t.Name()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("%w: %s", ErrToolAlreadyRegistered, name)
	}
	r.tools[name] = t
	return nil
}

func (r *Registry) Get(name string) (Tool, error) {
	t, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	return t, nil
}

// Names returns the registered tool names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe renders every tool for inclusion in a system prompt.
func (r *Registry) Describe() string {
	if len(r.tools) == 0 {
		return "No tools available\n"
	}

	var b strings.Builder
	for _, name := range r.Names() {
		t := r.tools[name]
		fmt.Fprintf(&b, "---\n\nTool Name: %s\nTool Description: %s\nTool Arguments: %s\n\n", t.Name(), t.Description(), t.Schema())
	}
	b.WriteString("---\n")
	return b.String()
}

// Call looks up and runs a tool.
func (r *Registry) Call(ctx context.Context, name string, args map[string]any) (any, error) {
	t, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	return t.Run(ctx, args)
}
