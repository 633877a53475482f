// Package codec encodes and decodes domain event payloads.
package codec

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sync"

	"github.com/saastack/eventing/aggregate"
	"google.golang.org/protobuf/proto"
)

const (
	// JSONContentType is the content type of JSON-encoded payloads.
	JSONContentType = "application/json"

	// ProtoContentType is the content type of protocol buffers payloads.
	ProtoContentType = "application/vnd.google.protobuf"
)

// Registry maps event type names to Go types.
//
// The zero value is an empty registry, ready to use.
type Registry struct {
	m      sync.RWMutex
	byName map[string]reflect.Type
	byType map[reflect.Type]string
}

// Register adds the types of the given prototype values to the registry.
//
// Each type is registered under the name returned by [aggregate.EventTypeOf].
func (r *Registry) Register(prototypes ...any) error {
	for _, p := range prototypes {
		if err := r.RegisterAs(aggregate.EventTypeOf(p), p); err != nil {
			return err
		}
	}
	return nil
}

// RegisterAs adds the type of the prototype value to the registry under the
// given name.
func (r *Registry) RegisterAs(name string, prototype any) error {
	if name == "" {
		return fmt.Errorf("cannot register %T: name must not be empty", prototype)
	}

	t := reflect.TypeOf(prototype)
	if t == nil {
		return fmt.Errorf("cannot register %q: prototype must not be nil", name)
	}

	r.m.Lock()
	defer r.m.Unlock()

	if r.byName == nil {
		r.byName = map[string]reflect.Type{}
		r.byType = map[reflect.Type]string{}
	}

	if x, ok := r.byName[name]; ok && x != t {
		return fmt.Errorf("cannot register %s as %q: already registered to %s", t, name, x)
	}

	if x, ok := r.byType[t]; ok && x != name {
		return fmt.Errorf("cannot register %s as %q: already registered as %q", t, name, x)
	}

	r.byName[name] = t
	r.byType[t] = name

	return nil
}

// Marshal encodes a payload.
//
// Payloads that implement [proto.Message] are encoded using protocol buffers.
// All other payloads are encoded as JSON.
func (r *Registry) Marshal(payload any) (typeName, contentType string, data []byte, err error) {
	r.m.RLock()
	typeName, ok := r.byType[reflect.TypeOf(payload)]
	r.m.RUnlock()

	if !ok {
		return "", "", nil, &UnknownTypeError{
			Name:   aggregate.EventTypeOf(payload),
			GoType: reflect.TypeOf(payload),
		}
	}

	if m, ok := payload.(proto.Message); ok {
		data, err = proto.Marshal(m)
		contentType = ProtoContentType
	} else {
		data, err = json.Marshal(payload)
		contentType = JSONContentType
	}

	if err != nil {
		return "", "", nil, fmt.Errorf("cannot marshal %q payload: %w", typeName, err)
	}

	return typeName, contentType, data, nil
}

// Unmarshal decodes a payload of the named type.
//
// It returns an [*UnknownTypeError] if no type is registered with that name.
func (r *Registry) Unmarshal(typeName, contentType string, data []byte) (any, error) {
	r.m.RLock()
	t, ok := r.byName[typeName]
	r.m.RUnlock()

	if !ok {
		return nil, &UnknownTypeError{Name: typeName}
	}

	ptr := t.Kind() == reflect.Pointer
	var v reflect.Value
	if ptr {
		v = reflect.New(t.Elem())
	} else {
		v = reflect.New(t)
	}

	switch contentType {
	case ProtoContentType:
		m, ok := v.Interface().(proto.Message)
		if !ok {
			return nil, fmt.Errorf("cannot unmarshal %q payload: %s is not a protocol buffers message", typeName, t)
		}
		if err := proto.Unmarshal(data, m); err != nil {
			return nil, fmt.Errorf("cannot unmarshal %q payload: %w", typeName, err)
		}
	case JSONContentType:
		if err := json.Unmarshal(data, v.Interface()); err != nil {
			return nil, fmt.Errorf("cannot unmarshal %q payload: %w", typeName, err)
		}
	default:
		return nil, fmt.Errorf("cannot unmarshal %q payload: unsupported content type %q", typeName, contentType)
	}

	if ptr {
		return v.Interface(), nil
	}

	return v.Elem().Interface(), nil
}

// UnknownTypeError indicates that a payload's type is not registered.
type UnknownTypeError struct {
	Name   string
	GoType reflect.Type
}

func (e *UnknownTypeError) Error() string {
	if e.GoType != nil {
		return fmt.Sprintf("%s (%q) is not a registered event type", e.GoType, e.Name)
	}
	return fmt.Sprintf("%q is not a registered event type", e.Name)
}
