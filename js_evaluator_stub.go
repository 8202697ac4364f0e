//go:build !js_eval

package statestore

// NewJSEvaluator returns nil unless the module is built with the js_eval
// tag. Passing the nil result to WithEvaluator falls back to expr.
func NewJSEvaluator(...EvaluatorOption) Evaluator {
	return nil
}

func jsEvaluatorMatches(Evaluator) bool {
	return false
}
