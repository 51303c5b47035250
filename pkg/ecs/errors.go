package ecs

import "github.com/rotisserie/eris"

var (
	// ErrEntityNotFound is returned when attempting to operate on a non-existent entity.
	ErrEntityNotFound = eris.New("entity does not exist")

	// ErrComponentNotFound is returned when an entity doesn't carry the requested component.
	ErrComponentNotFound = eris.New("component not found on entity")

	// ErrComponentNotRegistered is returned when a component type is used before it is registered.
	ErrComponentNotRegistered = eris.New("component is not registered")

	// ErrHookAlreadyRegistered is returned when installing a hook on a component type that already
	// has one for the same event.
	ErrHookAlreadyRegistered = eris.New("component hook already registered")

	// ErrComponentInUse is returned when installing hooks on a component type that entities
	// already carry.
	ErrComponentInUse = eris.New("component is already attached to entities")

	// ErrStructuralChangeInHook is returned when a hook tries to add or remove components or
	// entities directly instead of going through Commands.
	ErrStructuralChangeInHook = eris.New("structural change inside a component hook")

	// ErrDuplicateComponent is returned when the same component type appears twice in one call.
	ErrDuplicateComponent = eris.New("duplicate component type")
)
