package permit

import (
	"fmt"
	"sync"

	"github.com/Knetic/govaluate"
	"github.com/oarkflow/date"

	"github.com/oarkflow/permit/utils"
)

// Function is a host-registered predicate callable from matcher expressions.
// It must be pure and safe for concurrent calls.
type Function func(args ...any) (any, error)

// FunctionMap is the closed registry of functions a matcher may call:
// name to (arity, callable). Arity is checked on every call; -1 disables the
// check for variadic functions.
type FunctionMap struct {
	mu  sync.RWMutex
	fns map[string]govaluate.ExpressionFunction
	gen uint64
}

// NewFunctionMap returns a registry preloaded with the builtin matchers.
func NewFunctionMap() *FunctionMap {
	fm := &FunctionMap{fns: make(map[string]govaluate.ExpressionFunction)}
	fm.Register("keyMatch", 2, stringPredicate("keyMatch", utils.KeyMatch))
	fm.Register("keyMatch2", 2, stringPredicate("keyMatch2", utils.KeyMatch2))
	fm.Register("regexMatch", 2, stringPredicate("regexMatch", utils.RegexMatch))
	fm.Register("globMatch", 2, stringPredicate("globMatch", utils.GlobMatch))
	fm.Register("ipMatch", 2, stringPredicate("ipMatch", utils.IPMatch))
	fm.Register("timeMatch", 3, timeMatch)
	return fm
}

// Register adds or replaces a function. Registering invalidates compiled
// matchers so the next Enforce picks up the new table.
func (fm *FunctionMap) Register(name string, arity int, fn Function) error {
	if name == "" {
		return configError("function name must not be empty")
	}
	if fn == nil {
		return configError("function %q must not be nil", name)
	}
	fm.mu.Lock()
	defer fm.mu.Unlock()
	fm.fns[name] = func(args ...any) (any, error) {
		if arity >= 0 && len(args) != arity {
			return nil, fmt.Errorf("%s expects %d arguments, got %d", name, arity, len(args))
		}
		return fn(args...)
	}
	fm.gen++
	return nil
}

// snapshot returns the current function table and its generation. The table
// is copied so compiled expressions never observe concurrent registration.
func (fm *FunctionMap) snapshot() (map[string]govaluate.ExpressionFunction, uint64) {
	fm.mu.RLock()
	defer fm.mu.RUnlock()
	out := make(map[string]govaluate.ExpressionFunction, len(fm.fns))
	for k, v := range fm.fns {
		out[k] = v
	}
	return out, fm.gen
}

func stringPredicate(name string, match func(a, b string) bool) Function {
	return func(args ...any) (any, error) {
		a, ok1 := args[0].(string)
		b, ok2 := args[1].(string)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("%s expects string arguments", name)
		}
		return match(a, b), nil
	}
}

// timeMatch reports whether a timestamp falls inside [start, end]. Bounds
// accept any layout the date package understands; "_" leaves a bound open.
func timeMatch(args ...any) (any, error) {
	value, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("timeMatch expects string arguments")
	}
	t, err := date.Parse(value)
	if err != nil {
		return nil, fmt.Errorf("timeMatch: parse %q: %w", value, err)
	}
	for i, bound := range []any{args[1], args[2]} {
		s, ok := bound.(string)
		if !ok {
			return nil, fmt.Errorf("timeMatch expects string arguments")
		}
		if s == "" || s == "_" {
			continue
		}
		b, err := date.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("timeMatch: parse %q: %w", s, err)
		}
		if i == 0 && t.Before(b) {
			return false, nil
		}
		if i == 1 && t.After(b) {
			return false, nil
		}
	}
	return true, nil
}

// roleFunc binds a role predicate to one role graph: g(user, role) or
// g(user, role, domain) resolved through HasLink.
func roleFunc(rg *RoleGraph) Function {
	return func(args ...any) (any, error) {
		if len(args) < 2 || len(args) > 3 {
			return nil, fmt.Errorf("role predicate expects 2 or 3 arguments, got %d", len(args))
		}
		strs := make([]string, len(args))
		for i, a := range args {
			s, ok := a.(string)
			if !ok {
				return nil, fmt.Errorf("role predicate expects string arguments")
			}
			strs[i] = s
		}
		return rg.HasLink(strs[0], strs[1], strs[2:]...)
	}
}

// ExpressionEngine compiles matcher expressions once per function-table
// generation and evaluates them against per-call parameter bindings.
// Compiled expressions are immutable, so concurrent Enforce calls share them.
type ExpressionEngine struct {
	mu    sync.Mutex
	cache map[string]*compiledMatcher
}

type compiledMatcher struct {
	expr *govaluate.EvaluableExpression
	gen  uint64
}

// NewExpressionEngine returns an engine with an empty compilation cache.
func NewExpressionEngine() *ExpressionEngine {
	return &ExpressionEngine{cache: make(map[string]*compiledMatcher)}
}

// Compile parses the matcher expression with the registry's current function
// table. An unparseable expression or a call to an unknown function is a
// model configuration problem.
func (ee *ExpressionEngine) Compile(matcher string, fm *FunctionMap) (*govaluate.EvaluableExpression, error) {
	fns, gen := fm.snapshot()
	ee.mu.Lock()
	defer ee.mu.Unlock()
	if c, ok := ee.cache[matcher]; ok && c.gen == gen {
		return c.expr, nil
	}
	expr, err := govaluate.NewEvaluableExpressionWithFunctions(utils.EscapeAssertion(matcher), fns)
	if err != nil {
		return nil, configError("cannot parse matcher %q: %v", matcher, err)
	}
	ee.cache[matcher] = &compiledMatcher{expr: expr, gen: gen}
	return expr, nil
}

// ValidateIdentifiers checks that every variable the compiled matcher reads
// is bound by the request and policy definitions.
func ValidateIdentifiers(expr *govaluate.EvaluableExpression, matcher string, known map[string]struct{}) error {
	for _, v := range expr.Vars() {
		if _, ok := known[v]; !ok {
			return configError("unknown identifier %q in matcher %q", v, matcher)
		}
	}
	return nil
}

// Evaluate runs a compiled matcher against the bound parameters and requires
// a boolean result. Failures at this stage abort only the current call.
func (ee *ExpressionEngine) Evaluate(expr *govaluate.EvaluableExpression, matcher string, params map[string]any) (bool, error) {
	res, err := expr.Evaluate(params)
	if err != nil {
		return false, evalError(matcher, err)
	}
	b, ok := res.(bool)
	if !ok {
		return false, evalError(matcher, fmt.Errorf("matcher returned %T, want bool", res))
	}
	return b, nil
}
