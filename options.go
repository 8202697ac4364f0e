package statestore

import (
	"fmt"
	"time"

	"github.com/goliatone/go-statestore/pkg/activity"
	"github.com/goliatone/go-statestore/pkg/cast"
	"github.com/goliatone/go-statestore/pkg/enum"
)

// Option configures a Store or Factory.
type Option func(*storeConfig)

type storeConfig struct {
	logger        Logger
	casts         *cast.Registry
	enums         *enum.Registry
	activityHooks activity.Hooks
	activity      activity.Config
	activitySet   bool
	guards        []string
	evaluator     Evaluator
	programCache  ProgramCache
	functions     *FunctionRegistry
	now           func() time.Time
	defaultFill   bool
	errs          []error
}

func applyOptions(opts []Option) storeConfig {
	cfg := storeConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.logger == nil {
		cfg.logger = noopLogger{}
	}
	if cfg.casts == nil {
		cfg.casts = cast.DefaultRegistry()
	}
	if cfg.enums == nil {
		cfg.enums, _ = enum.NewRegistry()
	}
	if cfg.now == nil {
		cfg.now = time.Now
	}
	if !cfg.activitySet {
		cfg.activity = activity.Config{Enabled: len(cfg.activityHooks) > 0}
	}
	return cfg
}

// WithCastRegistry resolves cast specs through registry instead of the
// built-in registry. The registry is cloned.
func WithCastRegistry(registry *cast.Registry) Option {
	return func(cfg *storeConfig) {
		if registry == nil {
			return
		}
		cfg.casts = registry.Clone()
	}
}

// WithCast registers a custom cast factory on top of the current registry.
func WithCast(name string, factory cast.Factory) Option {
	return func(cfg *storeConfig) {
		if cfg.casts == nil {
			cfg.casts = cast.DefaultRegistry()
		}
		if err := cfg.casts.Register(name, factory); err != nil {
			cfg.errs = append(cfg.errs, err)
		}
	}
}

// WithEnumRegistry resolves enum ids through a copy of registry. Types
// added later with WithEnums stay local to the store.
func WithEnumRegistry(registry *enum.Registry) Option {
	return func(cfg *storeConfig) {
		if registry != nil {
			cfg.enums = registry.Clone()
		}
	}
}

// WithEnums registers enum types for the store.
func WithEnums(types ...*enum.Type) Option {
	return func(cfg *storeConfig) {
		if cfg.enums == nil {
			cfg.enums, _ = enum.NewRegistry()
		}
		for _, t := range types {
			if t == nil {
				continue
			}
			if existing, ok := cfg.enums.Lookup(t.Name()); ok && existing == t {
				continue
			}
			if err := cfg.enums.Register(t); err != nil {
				cfg.errs = append(cfg.errs, err)
			}
		}
	}
}

// WithActivityHooks emits lifecycle events to hooks. Nil hooks are dropped.
func WithActivityHooks(hooks ...activity.ActivityHook) Option {
	normalized := activity.Hooks(hooks).Compact()
	return func(cfg *storeConfig) {
		cfg.activityHooks = normalized
	}
}

// WithActivityConfig overrides the emitter configuration. Without it
// activity is enabled whenever hooks are present.
func WithActivityConfig(config activity.Config) Option {
	return func(cfg *storeConfig) {
		cfg.activity = config
		cfg.activitySet = true
	}
}

// WithGuards adds rules that must evaluate to true before each default
// persist.
func WithGuards(rules ...string) Option {
	return func(cfg *storeConfig) {
		for _, rule := range rules {
			if rule == "" {
				cfg.errs = append(cfg.errs, fmt.Errorf("statestore: guard rule must not be empty"))
				continue
			}
			cfg.guards = append(cfg.guards, rule)
		}
	}
}

// WithEvaluator sets the engine guard rules compile with. expr is used when
// none is set.
func WithEvaluator(e Evaluator) Option {
	return func(cfg *storeConfig) {
		cfg.evaluator = e
	}
}

// WithClock overrides the time source used for durations and guard "now".
func WithClock(now func() time.Time) Option {
	return func(cfg *storeConfig) {
		if now != nil {
			cfg.now = now
		}
	}
}

// WithDefaultFill makes Rehydrate fill attributes missing from a stored
// entry with their default values. Nested objects merge key by key, so
// entries written before an attribute or sub-key existed pick it up.
func WithDefaultFill() Option {
	return func(cfg *storeConfig) {
		cfg.defaultFill = true
	}
}
