package ecs

import (
	"math"
	"reflect"

	"github.com/argus-labs/exclusive/pkg/assert"
	"github.com/kelindar/bitmap"
	"github.com/rotisserie/eris"
)

// Component is the interface that all components must implement.
// Components are pure data containers that can be attached to entities.
type Component interface { //nolint:iface // We may add more methods in the future.
	// Name returns a unique string identifier for the component type.
	// This should be consistent across program executions.
	Name() string
}

// ComponentID identifies a registered component type within a world. IDs are assigned in
// registration order and never change for the lifetime of the world.
type ComponentID uint32

// MaxComponentID is the maximum number of component types that can be registered.
const MaxComponentID = math.MaxUint32 - 1

// componentManager manages component type registration and lookup.
type componentManager struct {
	nextID    ComponentID            // The next available component ID
	catalog   map[string]ComponentID // Component name -> component ID
	names     []string               // Component ID -> component name
	types     []reflect.Type         // Component ID -> Go type
	factories []columnFactory        // Component ID -> column factory
	hooks     []ComponentHooks       // Component ID -> lifecycle hooks
}

// newComponentManager creates a new component manager.
func newComponentManager() componentManager {
	return componentManager{
		nextID:    0,
		catalog:   make(map[string]ComponentID),
		names:     make([]string, 0),
		types:     make([]reflect.Type, 0),
		factories: make([]columnFactory, 0),
		hooks:     make([]ComponentHooks, 0),
	}
}

// register registers a new component type and returns its ID.
// If the component is already registered, no-op.
func (cm *componentManager) register(name string, typ reflect.Type, factory columnFactory) (ComponentID, error) {
	if name == "" {
		return 0, eris.New("component name cannot be empty")
	}

	if cid, exists := cm.catalog[name]; exists {
		if cm.types[cid] != typ {
			return 0, eris.Errorf("component name %s is already used by %s", name, cm.types[cid])
		}
		return cid, nil
	}

	if cm.nextID > MaxComponentID {
		return 0, eris.New("max number of components exceeded")
	}

	cm.catalog[name] = cm.nextID
	cm.names = append(cm.names, name)
	cm.types = append(cm.types, typ)
	cm.factories = append(cm.factories, factory)
	cm.hooks = append(cm.hooks, ComponentHooks{})
	cm.nextID++
	assert.That(int(cm.nextID) == len(cm.factories), "component id doesn't match number of components")

	return cm.nextID - 1, nil
}

// getID returns a component's ID given a name.
func (cm *componentManager) getID(name string) (ComponentID, error) {
	id, exists := cm.catalog[name]
	if !exists {
		return 0, eris.Wrapf(ErrComponentNotRegistered, "component %s", name)
	}
	return id, nil
}

// getName returns a component's name given its ID.
func (cm *componentManager) getName(id ComponentID) (string, error) {
	if int(id) >= len(cm.names) {
		return "", eris.Wrapf(ErrComponentNotRegistered, "component id %d", id)
	}
	return cm.names[id], nil
}

// toComponentBitmap resolves the components to their IDs. Duplicate types are rejected.
func (cm *componentManager) toComponentBitmap(components []Component) (bitmap.Bitmap, []ComponentID, error) {
	var bits bitmap.Bitmap
	ids := make([]ComponentID, len(components))
	for i, component := range components {
		id, err := cm.getID(component.Name())
		if err != nil {
			return nil, nil, err
		}
		if bits.Contains(uint32(id)) {
			return nil, nil, eris.Wrapf(ErrDuplicateComponent, "component %s", component.Name())
		}
		bits.Set(uint32(id))
		ids[i] = id
	}
	return bits, ids, nil
}

// createArchetype creates an archetype with a column for every component in the bitmap.
func (cm *componentManager) createArchetype(aid archetypeID, components bitmap.Bitmap) *archetype {
	ids := make([]ComponentID, 0, components.Count())
	columns := make([]abstractColumn, 0, components.Count())
	components.Range(func(x uint32) {
		assert.That(int(x) < len(cm.factories), "component %d isn't registered", x)
		ids = append(ids, ComponentID(x))
		columns = append(columns, cm.factories[x]())
	})
	return newArchetype(aid, components, ids, columns)
}

// RegisterComponent registers the component type T and returns its ID. Registering a type that is
// already registered returns the existing ID.
func RegisterComponent[T Component](w *World) (ComponentID, error) {
	var zero T
	return w.state.components.register(zero.Name(), reflect.TypeFor[T](), newColumnFactory[T]())
}

// ComponentIDOf returns the ID of the registered component type T.
func ComponentIDOf[T Component](w *World) (ComponentID, error) {
	var zero T
	return w.state.components.getID(zero.Name())
}

// ComponentName returns the name of the component type with the given ID.
func ComponentName(w *World, id ComponentID) (string, error) {
	return w.state.components.getName(id)
}
