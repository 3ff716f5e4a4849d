package dispatcher

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/dshills/folio/internal/dispatcher/execctx"
	"github.com/dshills/folio/internal/dispatcher/handler"
)

// Priority orders handlers of one command. Higher priorities run first.
type Priority int

// Handler priorities.
const (
	PriorityEditor Priority = iota
	PriorityLow
	PriorityNormal
	PriorityHigh
	PriorityCritical
)

// CommandTag identifies a command and the payload type it carries.
type CommandTag[P any] struct {
	name string
}

// NewCommand creates a command tag.
func NewCommand[P any](name string) CommandTag[P] {
	return CommandTag[P]{name: name}
}

// Name returns the command name.
func (t CommandTag[P]) Name() string { return t.name }

// declaration records how a command's payload is decoded for name-based
// dispatch.
type declaration struct {
	payload reflect.Type
	decode  func(raw any) (any, error)
}

// RegisterCommand declares the command so it can be dispatched by name.
// Declaring it again with the same payload type is a no-op.
func RegisterCommand[P any](d *Dispatcher, tag CommandTag[P]) error {
	return d.declare(tag.name, declaration{
		payload: reflect.TypeFor[P](),
		decode:  decodePayload[P],
	})
}

// Register declares the command and adds fn as a handler for it. The
// returned func removes the handler.
func Register[P any](d *Dispatcher, tag CommandTag[P], priority Priority, fn func(payload P, ctx *execctx.ExecutionContext) handler.Result) (func(), error) {
	if err := RegisterCommand(d, tag); err != nil {
		return nil, err
	}
	h := handler.NewHandlerFuncWithPriority(func(cmd handler.Command, ctx *execctx.ExecutionContext) handler.Result {
		p, ok := cmd.Payload.(P)
		if !ok {
			return handler.Errorf("%w: %s got %T", ErrInvalidPayload, cmd.Name, cmd.Payload)
		}
		return fn(p, ctx)
	}, int(priority))

	d.registry.Register(tag.name, h)
	return func() { d.registry.UnregisterHandler(tag.name, h) }, nil
}

// MustRegister is Register for handlers installed at startup, where a
// payload type conflict is a programming error.
func MustRegister[P any](d *Dispatcher, tag CommandTag[P], priority Priority, fn func(payload P, ctx *execctx.ExecutionContext) handler.Result) func() {
	unregister, err := Register(d, tag, priority, fn)
	if err != nil {
		panic(err)
	}
	return unregister
}

// Dispatch runs the handlers of the command from highest to lowest priority
// until one of them handles it.
func Dispatch[P any](d *Dispatcher, tag CommandTag[P], payload P) handler.Result {
	return d.dispatch(handler.Command{Name: tag.name, Payload: payload})
}

// decodePayload converts a loosely typed payload into P. Values already of
// type P pass through; JSON text and generic values such as maps are
// round-tripped through JSON.
func decodePayload[P any](raw any) (any, error) {
	var data []byte
	switch v := raw.(type) {
	case P:
		return v, nil
	case nil:
		var zero P
		return zero, nil
	case json.RawMessage:
		data = v
	case []byte:
		data = v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		data = b
	}

	var p P
	if len(data) == 0 {
		return p, nil
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return p, nil
}
