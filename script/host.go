// Package script connects the engine to a scripting runtime. The engine only
// sees Host; scripts only see Engine.
package script

import (
	"errors"

	"github.com/milk9111/slotengine/levels"
)

var (
	ErrNotLoaded      = errors.New("script: no script loaded")
	ErrUnknownHandler = errors.New("script: unknown handler")
	ErrUnknownType    = errors.New("script: unknown object type")
)

// Host calls into scripts by name.
type Host interface {
	// Call runs the script handler called name.
	Call(name string, args ...any) (any, error)
	// Instantiate creates the script object type obj.Type for a map object.
	Instantiate(obj levels.Object) error
	// Eval runs a source snippet next to the loaded script.
	Eval(src string) error
}

// NopHost ignores every request.
type NopHost struct{}

func (NopHost) Call(string, ...any) (any, error) { return nil, nil }
func (NopHost) Instantiate(levels.Object) error  { return nil }
func (NopHost) Eval(string) error                { return nil }
