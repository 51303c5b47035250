package ecs

import (
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/kelindar/bitmap"
	"github.com/rotisserie/eris"
)

// SearchParam contains paramters for a search query.
// We use expr lang for the where clause to filter the entities, please refer to its documentation
// for more details: https://expr-lang.org/docs/getting-started.
type SearchParam struct {
	Find  []string    // List of component names to search for
	Match SearchMatch // A match type to use for the search
	Where string      // Optional expr language string to filter the results.
}

// SearchMatch is the type of match to use for the search.
type SearchMatch string

const (
	// MatchExact matches entities that have exactly the specified components.
	MatchExact SearchMatch = "exact"
	// MatchContains matches entities that contains the specified components, but may have other
	// components as well.
	MatchContains SearchMatch = "contains"
)

// validateAndGetFilter validates the search parameters and returns an expr VM program compiled
// from the where clause, or nil if there is none.
func (s *SearchParam) validateAndGetFilter() (*vm.Program, error) {
	if len(s.Find) == 0 {
		return nil, eris.New("component list cannot be empty")
	}

	if s.Match != MatchExact && s.Match != MatchContains {
		return nil, eris.Errorf("invalid `match` value: must be either '%s' or '%s'", MatchExact, MatchContains)
	}

	if len(s.Where) == 0 {
		return nil, nil //nolint:nilnil // no filter
	}

	filter, err := expr.Compile(s.Where, expr.AsBool())
	if err != nil {
		return nil, eris.Wrap(err, "failed to parse where clause")
	}
	return filter, nil
}

// Search returns the entities matching the search parameters as maps from component name to
// component value, with the entity ID under "_id".
func (w *World) Search(params SearchParam) ([]map[string]any, error) {
	filter, err := params.validateAndGetFilter()
	if err != nil {
		return nil, eris.Wrap(err, "invalid search params")
	}

	var components bitmap.Bitmap
	for _, name := range params.Find {
		id, err := w.state.components.getID(name)
		if err != nil {
			return nil, err
		}
		components.Set(uint32(id))
	}

	var archs []*archetype
	switch params.Match {
	case MatchExact:
		if arch := w.state.archExact(components); arch != nil {
			archs = []*archetype{arch}
		}
	case MatchContains:
		archs = w.state.archContains(components)
	}

	results := make([]map[string]any, 0)
	for _, arch := range archs {
		for _, eid := range arch.entities {
			entityMap := arch.toMap(eid)

			if filter == nil {
				results = append(results, entityMap)
				continue
			}

			// The entity map is the environment so the program can read the entity's components.
			output, err := expr.Run(filter, entityMap)
			if err != nil {
				return nil, eris.Wrap(err, "failed to run filter expression")
			}

			// The where clause is compiled without an environment, so a field access such as
			// health.hp > 200 can't be type checked until now.
			isMatch, ok := output.(bool)
			if !ok {
				return nil, eris.New("invalid where clause")
			}
			if isMatch {
				results = append(results, entityMap)
			}
		}
	}

	return results, nil
}
