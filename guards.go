package statestore

import (
	"fmt"
	"time"
)

// RuleContext carries the bindings a guard rule evaluates against.
// Snapshot entries become top-level variables.
type RuleContext struct {
	Snapshot any
	Now      *time.Time
	Args     map[string]any
	Metadata map[string]any
	Store    string
}

func (ctx RuleContext) withDefaultNow() RuleContext {
	if ctx.Now != nil {
		return ctx
	}
	now := time.Now()
	ctx.Now = &now
	return ctx
}

func (ctx RuleContext) timestamp() time.Time {
	ctx = ctx.withDefaultNow()
	return *ctx.Now
}

func (ctx RuleContext) withDefaultMaps() RuleContext {
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

func (ctx RuleContext) storeLabel() string {
	if ctx.Store != "" {
		return ctx.Store
	}
	return "unknown"
}

// Evaluator compiles and runs guard expressions.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string, opts ...CompileOption) (CompiledRule, error)
}

// CompiledRule is a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

// CompileOption configures evaluator compile behaviour.
type CompileOption interface {
	applyCompileOption(*compileConfig)
}

type compileConfig struct {
	variables []string
}

type compileOptionFunc func(*compileConfig)

func (f compileOptionFunc) applyCompileOption(cfg *compileConfig) {
	if f != nil {
		f(cfg)
	}
}

// WithVariables declares the snapshot variables a rule may reference so
// type-checking engines can compile it ahead of evaluation.
func WithVariables(names ...string) CompileOption {
	return compileOptionFunc(func(cfg *compileConfig) {
		cfg.variables = append(cfg.variables, names...)
	})
}

func applyCompileOptions(opts []CompileOption) compileConfig {
	cfg := compileConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt.applyCompileOption(&cfg)
		}
	}
	return cfg
}

type guard struct {
	rule     string
	compiled CompiledRule
}

// compileGuards compiles every configured rule against the declared
// attributes plus the reserved bindings.
func compileGuards(cfg storeConfig, attributes []string) ([]guard, string, error) {
	if len(cfg.guards) == 0 {
		return nil, "", nil
	}
	evaluator := cfg.evaluator
	if evaluator == nil {
		evaluator = NewExprEvaluator(
			EvaluatorCache(cfg.programCache),
			EvaluatorFunctions(cfg.functions),
		)
	}
	if evaluator == nil {
		return nil, "", ErrNoEvaluator
	}
	engine := evaluatorEngineName(evaluator)
	variables := append(append([]string{}, attributes...), reservedBindings...)

	guards := make([]guard, 0, len(cfg.guards))
	for _, rule := range cfg.guards {
		compiled, err := evaluator.Compile(rule, WithVariables(variables...))
		if err != nil {
			return nil, engine, wrapEvaluationError(engine, rule, "", err)
		}
		guards = append(guards, guard{rule: rule, compiled: compiled})
	}
	return guards, engine, nil
}

var reservedBindings = []string{"state", "store", "key"}

// guardSnapshot exposes declared attributes as top-level variables plus
// "state", "store" and "key" unless an attribute already uses the name.
func (s *Store) guardSnapshot() map[string]any {
	state := s.State()
	snapshot := make(map[string]any, len(s.attributes)+len(reservedBindings))
	for _, name := range s.attributes {
		snapshot[name] = state[name]
	}
	reserved := map[string]any{
		"state": state,
		"store": s.def.Name,
		"key":   s.InstanceKey(),
	}
	for name, value := range reserved {
		if _, taken := snapshot[name]; !taken {
			snapshot[name] = value
		}
	}
	return snapshot
}

// checkGuards runs every guard in order and stops at the first failure.
func (s *Store) checkGuards() error {
	if len(s.guards) == 0 {
		return nil
	}
	now := s.cfg.now()
	ctx := RuleContext{
		Snapshot: s.guardSnapshot(),
		Now:      &now,
		Store:    s.def.Name,
		Metadata: map[string]any{"cache_key": s.Key()},
	}
	for _, g := range s.guards {
		start := s.cfg.now()
		result, err := g.compiled.Evaluate(ctx)
		err = wrapEvaluationError(s.engine, g.rule, s.def.Name, err)
		if err == nil {
			if passed, ok := result.(bool); !ok || !passed {
				err = fmt.Errorf("%w: got %v", ErrGuardRejected, result)
			}
		}
		s.cfg.logger.Log(LogEvent{
			Op:       "guard",
			Store:    s.def.Name,
			Key:      s.Key(),
			Duration: s.cfg.now().Sub(start),
			Err:      err,
		})
		if err != nil {
			return &GuardError{Store: s.def.Name, Rule: g.rule, Err: err}
		}
	}
	return nil
}

func evaluatorEngineName(e Evaluator) string {
	switch e.(type) {
	case nil:
		return "unknown"
	case *exprEvaluator:
		return "expr"
	case *celEvaluator:
		return "cel"
	default:
		if jsEvaluatorMatches(e) {
			return "js"
		}
		return "custom"
	}
}
