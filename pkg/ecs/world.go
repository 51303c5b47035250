package ecs

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// World represents the root ECS state.
type World struct {
	state    *worldState
	commands Commands

	hookDepth int  // Number of hooks currently running
	flushing  bool // Whether Flush is applying commands

	lastSeq    uint64                  // Last insertion sequence number handed out
	insertions map[insertionKey]uint64 // Attached component -> sequence number of its insertion

	// Systems.
	initDone    bool                  // Tracks if init systems have been executed
	initSystems []system              // Initialization systems, run once on the first tick
	systems     [stageCount][]system // Systems per stage (PreUpdate, Update, PostUpdate)
	tick        uint64

	logger       zerolog.Logger
	systemLogger func(ctx context.Context, system string) zerolog.Logger
	tracer       trace.Tracer
}

// insertionKey identifies a component attached to an entity.
type insertionKey struct {
	entity    EntityID
	component ComponentID
}

// WorldOption configures a World.
type WorldOption func(*World)

// WithLogger sets the logger used by the world and passed to hooks.
func WithLogger(logger zerolog.Logger) WorldOption {
	return func(w *World) { w.logger = logger }
}

// WithSystemLogger sets how the logger a system runs with is built. ctx carries the system's span.
// By default the world's logger is tagged with the system name.
func WithSystemLogger(fn func(ctx context.Context, system string) zerolog.Logger) WorldOption {
	return func(w *World) { w.systemLogger = fn }
}

// WithTracer sets the tracer used to trace ticks.
func WithTracer(tracer trace.Tracer) WorldOption {
	return func(w *World) { w.tracer = tracer }
}

// NewWorld creates a new World instance.
func NewWorld(opts ...WorldOption) *World {
	world := &World{
		state:       newWorldState(),
		commands:    newCommands(),
		insertions:  make(map[insertionKey]uint64),
		initSystems: make([]system, 0),
		logger:      zerolog.Nop(),
		tracer:      noop.NewTracerProvider().Tracer("ecs"),
	}
	for _, opt := range opts {
		opt(world)
	}
	if world.systemLogger == nil {
		world.systemLogger = func(_ context.Context, system string) zerolog.Logger {
			return world.logger.With().Str("system", system).Logger()
		}
	}
	return world
}

// Logger returns the world's logger. While a system runs it is the system's logger.
func (w *World) Logger() *zerolog.Logger {
	return &w.logger
}

// Commands returns the world's deferred command queue.
func (w *World) Commands() *Commands {
	return &w.commands
}

// CurrentTick returns the number of completed ticks.
func (w *World) CurrentTick() uint64 {
	return w.tick
}

// Tick runs the init systems on the first call, then every stage's systems in registration
// order. Commands are flushed before the first system and after every system. If a system fails
// the tick stops and the error is returned.
func (w *World) Tick(ctx context.Context) error {
	ctx, span := w.tracer.Start(ctx, "ecs.tick", trace.WithAttributes(attribute.Int64("tick", int64(w.tick)))) //nolint:gosec // it's ok
	defer span.End()

	if err := w.tickSystems(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "tick failed")
		return err
	}

	w.tick++
	return nil
}

func (w *World) tickSystems(ctx context.Context) error {
	if err := w.Flush(); err != nil {
		return err
	}

	if !w.initDone {
		for _, s := range w.initSystems {
			if err := w.runSystem(ctx, s); err != nil {
				return eris.Wrapf(err, "init system %s failed", s.name)
			}
		}
		w.initDone = true
	}

	for stage := range w.systems {
		for _, s := range w.systems[stage] {
			if err := w.runSystem(ctx, s); err != nil {
				return eris.Wrapf(err, "system %s failed", s.name)
			}
		}
	}
	return nil
}

func (w *World) runSystem(ctx context.Context, s system) error {
	ctx, span := w.tracer.Start(ctx, "ecs.system."+s.name)
	defer span.End()

	worldLogger := w.logger
	w.logger = w.systemLogger(ctx, s.name)
	defer func() { w.logger = worldLogger }()

	if err := s.fn(w); err != nil {
		span.RecordError(err)
		return err
	}
	return w.Flush()
}

// -------------------------------------------------------------------------------------------------
// Structural changes with hooks
// -------------------------------------------------------------------------------------------------

// spawn creates the entity and runs the insert hooks of its components in argument order.
func (w *World) spawn(components []Component) (EntityID, error) {
	eid, ids, err := w.state.opNewEntity(components)
	if err != nil {
		return 0, err
	}
	for _, cid := range ids {
		w.stamp(eid, cid)
	}
	for _, cid := range ids {
		w.runInsertHook(eid, cid)
	}
	return eid, nil
}

// insert writes the components and runs the insert hooks of the newly added ones, after the
// entity has moved to its new archetype.
func (w *World) insert(eid EntityID, components []Component) error {
	added, err := w.state.opInsert(eid, components)
	if err != nil {
		return err
	}
	for _, cid := range added {
		w.stamp(eid, cid)
	}
	for _, cid := range added {
		w.runInsertHook(eid, cid)
	}
	return nil
}

// remove runs the remove hook and then detaches the component.
func (w *World) remove(eid EntityID, cid ComponentID) error {
	if !hasID(w.state, eid, cid) {
		if !w.state.entities.isAlive(eid) {
			return eris.Wrapf(ErrEntityNotFound, "entity %d", eid)
		}
		return eris.Wrapf(ErrComponentNotFound, "component id %d on entity %d", cid, eid)
	}
	w.runRemoveHook(eid, cid)
	if err := w.state.opRemove(eid, cid); err != nil {
		return err
	}
	delete(w.insertions, insertionKey{entity: eid, component: cid})
	return nil
}

// despawn runs the remove hook of every component in ID order and then destroys the entity.
func (w *World) despawn(eid EntityID) error {
	arch, err := w.state.archetypeOf(eid)
	if err != nil {
		return err
	}
	ids := append([]ComponentID(nil), arch.compIDs...)
	for _, cid := range ids {
		w.runRemoveHook(eid, cid)
	}
	if err := w.state.opRemoveEntity(eid); err != nil {
		return err
	}
	for _, cid := range ids {
		delete(w.insertions, insertionKey{entity: eid, component: cid})
	}
	return nil
}

// stamp records a new insertion of the component on the entity.
func (w *World) stamp(eid EntityID, cid ComponentID) {
	w.lastSeq++
	w.insertions[insertionKey{entity: eid, component: cid}] = w.lastSeq
}

// checkStructural rejects structural changes while a hook is running.
func (w *World) checkStructural(op string) error {
	if w.inHook() {
		return eris.Wrapf(ErrStructuralChangeInHook, "%s", op)
	}
	return nil
}

// settle flushes pending commands after a successful top-level mutation.
func (w *World) settle(err error) error {
	if err != nil {
		return err
	}
	return w.Flush()
}
