package ecs

import (
	"github.com/argus-labs/exclusive/pkg/assert"
	"github.com/rotisserie/eris"
)

// EntityCommand is a custom deferred operation on an entity. It runs during a flush, outside of
// any hook, so it may use the package's structural operations freely. It is skipped if the entity
// no longer exists when the flush reaches it.
type EntityCommand func(w *World, eid EntityID) error

type commandKind uint8

const (
	cmdInsert commandKind = iota
	cmdRemove
	cmdRemoveByID
	cmdDespawn
	cmdCustom
)

func (k commandKind) String() string {
	switch k {
	case cmdInsert:
		return "insert"
	case cmdRemove:
		return "remove"
	case cmdRemoveByID:
		return "remove_by_id"
	case cmdDespawn:
		return "despawn"
	case cmdCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// command is a queued structural change.
type command struct {
	kind       commandKind
	entity     EntityID
	components []Component   // cmdInsert, cmdRemove
	ids        []ComponentID // cmdRemoveByID
	fn         EntityCommand // cmdCustom
}

// Commands is a FIFO queue of structural changes. Commands are applied in the order they were
// queued when the world flushes; commands queued while flushing are applied in the same flush.
type Commands struct {
	queue []command
}

func newCommands() Commands {
	const initialCommandBufferCapacity = 64
	return Commands{queue: make([]command, 0, initialCommandBufferCapacity)}
}

// Entity returns a builder for commands targeting eid.
func (c *Commands) Entity(eid EntityID) EntityCommands {
	return EntityCommands{commands: c, entity: eid}
}

// Len returns the number of pending commands.
func (c *Commands) Len() int {
	return len(c.queue)
}

func (c *Commands) push(cmd command) {
	c.queue = append(c.queue, cmd)
}

// pop removes and returns the oldest command.
func (c *Commands) pop() command {
	assert.That(len(c.queue) > 0, "pop from empty command queue")
	cmd := c.queue[0]
	c.queue[0] = command{}
	c.queue = c.queue[1:]
	if len(c.queue) == 0 {
		c.queue = c.queue[:0:0]
	}
	return cmd
}

// EntityCommands queues commands for a single entity.
type EntityCommands struct {
	commands *Commands
	entity   EntityID
}

// ID returns the target entity.
func (e EntityCommands) ID() EntityID {
	return e.entity
}

// Insert queues the insertion of components. Components the entity already has are overwritten.
func (e EntityCommands) Insert(components ...Component) EntityCommands {
	e.commands.push(command{kind: cmdInsert, entity: e.entity, components: components})
	return e
}

// Remove queues the removal of the component types of the given values. Components the entity
// doesn't have when the command is applied are ignored.
func (e EntityCommands) Remove(components ...Component) EntityCommands {
	e.commands.push(command{kind: cmdRemove, entity: e.entity, components: components})
	return e
}

// RemoveByID queues the removal of components by type ID. Components the entity doesn't have when
// the command is applied are ignored.
func (e EntityCommands) RemoveByID(ids ...ComponentID) EntityCommands {
	e.commands.push(command{kind: cmdRemoveByID, entity: e.entity, ids: ids})
	return e
}

// Despawn queues the destruction of the entity.
func (e EntityCommands) Despawn() {
	e.commands.push(command{kind: cmdDespawn, entity: e.entity})
}

// Queue queues a custom command.
func (e EntityCommands) Queue(fn EntityCommand) EntityCommands {
	e.commands.push(command{kind: cmdCustom, entity: e.entity, fn: fn})
	return e
}

// apply runs a single command. Commands on dead entities and removals of absent components are
// skipped.
func (w *World) apply(cmd command) error {
	if !w.state.entities.isAlive(cmd.entity) {
		w.logger.Debug().
			Uint32("entity_id", uint32(cmd.entity)).
			Stringer("command", cmd.kind).
			Msg("skipping command on despawned entity")
		return nil
	}

	switch cmd.kind {
	case cmdInsert:
		return w.insert(cmd.entity, cmd.components)

	case cmdRemove:
		for _, component := range cmd.components {
			cid, err := w.state.components.getID(component.Name())
			if err != nil {
				return err
			}
			if err := w.removeIfPresent(cmd.entity, cid); err != nil {
				return err
			}
		}
		return nil

	case cmdRemoveByID:
		for _, cid := range cmd.ids {
			if err := w.removeIfPresent(cmd.entity, cid); err != nil {
				return err
			}
		}
		return nil

	case cmdDespawn:
		return w.despawn(cmd.entity)

	case cmdCustom:
		return cmd.fn(w, cmd.entity)

	default:
		return eris.Errorf("unknown command kind %d", cmd.kind)
	}
}

func (w *World) removeIfPresent(eid EntityID, cid ComponentID) error {
	if !hasID(w.state, eid, cid) {
		w.logger.Debug().
			Uint32("entity_id", uint32(eid)).
			Uint32("component_id", uint32(cid)).
			Msg("skipping removal of absent component")
		return nil
	}
	return w.remove(eid, cid)
}

// Flush applies all pending commands. It is a no-op while a hook is running or a flush is already
// in progress; the outer flush picks up anything queued. If a command fails the flush stops, the
// failed command is dropped and the rest stay queued.
func (w *World) Flush() error {
	if w.inHook() || w.flushing {
		return nil
	}

	w.flushing = true
	defer func() { w.flushing = false }()

	for w.commands.Len() > 0 {
		cmd := w.commands.pop()
		if err := w.apply(cmd); err != nil {
			return eris.Wrapf(err, "failed to apply %s command on entity %d", cmd.kind, cmd.entity)
		}
	}
	return nil
}
