package statestore

import (
	"fmt"
	"sort"
	"strings"
	"time"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

// exprEvaluator runs guard rules with github.com/expr-lang/expr.
type exprEvaluator struct {
	evaluatorConfig
}

// NewExprEvaluator returns the default guard Evaluator. Registry functions
// are callable by name as well as through call(name, args...).
func NewExprEvaluator(opts ...EvaluatorOption) Evaluator {
	return &exprEvaluator{evaluatorConfig: newEvaluatorConfig(opts)}
}

// Evaluate compiles (or loads) expression and runs it against ctx.
func (e *exprEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	rule, err := e.Compile(expression)
	if err != nil {
		return nil, err
	}
	return rule.Evaluate(ctx)
}

// Compile type-checks expression. Names passed through WithVariables are
// declared up front; any other identifier is still allowed and resolves to
// nil when the snapshot lacks it.
func (e *exprEvaluator) Compile(expression string, opts ...CompileOption) (CompiledRule, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, wrapEvaluatorError("expr", fmt.Errorf("expression must not be empty"))
	}
	cfg := applyCompileOptions(opts)
	program, err := e.loadOrCompile(expression, cfg.variables)
	if err != nil {
		return nil, err
	}
	return &exprCompiledRule{evaluator: e, program: program, expression: expression}, nil
}

func (e *exprEvaluator) loadOrCompile(expression string, variables []string) (*exprvm.Program, error) {
	return cachedProgram(e.evaluatorConfig, "expr:"+expression, func() (*exprvm.Program, error) {
		env := map[string]any{
			"now":      time.Time{},
			"args":     map[string]any{},
			"metadata": map[string]any{},
		}
		for _, name := range variables {
			if _, reserved := env[name]; !reserved {
				env[name] = nil
			}
		}
		options := []exprlang.Option{
			exprlang.Env(env),
			exprlang.AllowUndefinedVariables(),
		}
		if e.functions != nil {
			options = append(options, exprlang.Function("call", e.callFunction))
			for _, name := range e.functions.Names() {
				options = append(options, exprlang.Function(name, func(arguments ...any) (any, error) {
					return e.functions.Call(name, arguments...)
				}))
			}
		}
		compiled, err := exprlang.Compile(expression, options...)
		if err != nil {
			return nil, wrapEvaluationError("expr", expression, "", err)
		}
		return compiled, nil
	})
}

type exprCompiledRule struct {
	evaluator  *exprEvaluator
	program    *exprvm.Program
	expression string
}

func (r *exprCompiledRule) Evaluate(ctx RuleContext) (any, error) {
	if r.evaluator == nil || r.program == nil {
		return nil, wrapEvaluatorError("expr", fmt.Errorf("compiled rule missing program"))
	}
	ctx = ctx.withDefaultNow().withDefaultMaps()
	result, err := exprlang.Run(r.program, exprEnvironment(ctx))
	if err != nil {
		return nil, wrapEvaluationError("expr", r.expression, ctx.storeLabel(), err)
	}
	return result, nil
}

// exprEnvironment binds snapshot entries over the reserved now, args and
// metadata names.
func exprEnvironment(ctx RuleContext) map[string]any {
	env := map[string]any{
		"now":      ctx.timestamp(),
		"args":     ctx.Args,
		"metadata": ctx.Metadata,
	}
	snapshot := snapshotAsMap(ctx.Snapshot)
	keys := make([]string, 0, len(snapshot))
	for key := range snapshot {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		env[key] = snapshot[key]
	}
	return env
}

func snapshotAsMap(value any) map[string]any {
	if m, ok := value.(map[string]any); ok && m != nil {
		return m
	}
	return map[string]any{}
}
