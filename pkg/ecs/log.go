package ecs

import (
	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// LogEntity writes one log event at the given level listing the entity's components.
func LogEntity(w *World, eid EntityID, level zerolog.Level) error {
	arch, err := w.state.archetypeOf(eid)
	if err != nil {
		return err
	}

	components := zerolog.Arr()
	for _, cid := range arch.compIDs {
		components.Dict(zerolog.Dict().
			Uint32("component_id", uint32(cid)).
			Str("component_name", w.state.components.names[cid]))
	}

	w.logger.WithLevel(level).
		Uint32("entity_id", uint32(eid)).
		Int("archetype_id", arch.id).
		Array("components", components).
		Msg("entity components")
	return nil
}

// EntityJSON encodes the entity's components as a JSON object keyed by component name, with the
// entity ID under "_id".
func EntityJSON(w *World, eid EntityID) ([]byte, error) {
	arch, err := w.state.archetypeOf(eid)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(arch.toMap(eid))
	if err != nil {
		return nil, eris.Wrapf(err, "failed to encode entity %d", eid)
	}
	return data, nil
}
