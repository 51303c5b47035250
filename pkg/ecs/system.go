package ecs

import "github.com/rotisserie/eris"

// System is a function that contains game logic.
type System func(w *World) error

type system struct {
	name string
	fn   System
}

// SystemHook defines when a system should be executed in the update cycle.
type SystemHook uint8

const (
	// PreUpdate runs before the main update.
	PreUpdate SystemHook = 0
	// Update runs during the main update phase.
	Update SystemHook = 1
	// PostUpdate runs after the main update.
	PostUpdate SystemHook = 2
	// Init runs once, on the first tick, before the other hooks.
	Init SystemHook = 3
)

const stageCount = 3

// systemConfig holds all configurable options for system registration.
type systemConfig struct {
	hook SystemHook
}

func newSystemConfig() systemConfig {
	return systemConfig{hook: Update}
}

// SystemOption is a function that configures a systemConfig.
type SystemOption func(*systemConfig)

// WithHook returns an option to set the system hook.
func WithHook(hook SystemHook) SystemOption {
	return func(cfg *systemConfig) { cfg.hook = hook }
}

// RegisterSystem registers a system to run on every tick. Systems run in registration order
// within a hook. Defaults to Update.
func RegisterSystem(w *World, name string, fn System, opts ...SystemOption) error {
	if name == "" {
		return eris.New("system name cannot be empty")
	}
	if fn == nil {
		return eris.Errorf("system %s has no function", name)
	}

	cfg := newSystemConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	s := system{name: name, fn: fn}
	switch cfg.hook {
	case Init:
		w.initSystems = append(w.initSystems, s)
	case PreUpdate, Update, PostUpdate:
		w.systems[cfg.hook] = append(w.systems[cfg.hook], s)
	default:
		return eris.Errorf("invalid system hook %d", cfg.hook)
	}

	w.logger.Debug().Str("system", name).Uint8("hook", uint8(cfg.hook)).Msg("system registered")
	return nil
}
