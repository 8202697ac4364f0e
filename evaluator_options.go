package statestore

import (
	"errors"
	"fmt"
)

var errCallName = errors.New("statestore: call requires a function name string")

// EvaluatorOption configures NewExprEvaluator, NewCELEvaluator and
// NewJSEvaluator.
type EvaluatorOption func(*evaluatorConfig)

type evaluatorConfig struct {
	cache     ProgramCache
	functions *FunctionRegistry
}

// EvaluatorCache shares compiled programs through cache. Keys are prefixed
// with the engine name, so one cache can serve every evaluator.
func EvaluatorCache(cache ProgramCache) EvaluatorOption {
	return func(cfg *evaluatorConfig) {
		cfg.cache = cache
	}
}

// EvaluatorFunctions exposes the functions in registry to rules through
// call(name, args...). The registry is cloned.
func EvaluatorFunctions(registry *FunctionRegistry) EvaluatorOption {
	return func(cfg *evaluatorConfig) {
		if registry != nil {
			cfg.functions = registry.Clone()
		}
	}
}

func newEvaluatorConfig(opts []EvaluatorOption) evaluatorConfig {
	var cfg evaluatorConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// cachedProgram returns the cached program for key, or compiles and caches it.
// Cached values of another type are ignored.
func cachedProgram[P any](cfg evaluatorConfig, key string, compile func() (P, error)) (P, error) {
	if cfg.cache != nil {
		if cached, ok := cfg.cache.Get(key); ok {
			if typed, ok := cached.(P); ok {
				return typed, nil
			}
		}
	}
	compiled, err := compile()
	if err != nil {
		return compiled, err
	}
	if cfg.cache != nil {
		cfg.cache.Set(key, compiled)
	}
	return compiled, nil
}

// callFunction implements call(name, args...) for rule engines whose
// variadic bindings arrive as a flat list.
func (cfg evaluatorConfig) callFunction(arguments ...any) (any, error) {
	if len(arguments) == 0 {
		return nil, errCallName
	}
	name, ok := arguments[0].(string)
	if !ok {
		return nil, fmt.Errorf("%w, got %T", errCallName, arguments[0])
	}
	return cfg.functions.Call(name, arguments[1:]...)
}
