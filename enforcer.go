package permit

import (
	"sync"

	"github.com/oarkflow/permit/logger"
)

// Engine binds a model to its policy rows and role graphs and runs
// enforcement calls end to end. One engine owns its model exclusively; many
// engines may coexist for separate tenants. A single reader-writer lock makes
// concurrent Enforce calls safe against policy mutations.
type Engine struct {
	mu    sync.RWMutex
	model Model
	fm    *FunctionMap
	ee    *ExpressionEngine
	eft   Effector

	adapter Adapter
	watcher Watcher
	logger  logger.Logger

	// onMutation fires after any in-memory policy change commits, however it
	// was reached. CachedEngine installs its cache invalidation here so no
	// mutation path can be missed.
	onMutation func()

	enabled            bool
	autoSave           bool
	autoBuildRoleLinks bool
	autoNotifyWatcher  bool
}

// EngineOption configures an Engine during construction.
type EngineOption func(*Engine) error

// WithAdapter installs the persistence collaborator. Policy is not loaded
// automatically; call LoadPolicy.
func WithAdapter(a Adapter) EngineOption {
	return func(e *Engine) error {
		e.adapter = a
		return nil
	}
}

// WithWatcher installs the replication collaborator and wires its callback to
// reload policy when another instance reports a change.
func WithWatcher(w Watcher) EngineOption {
	return func(e *Engine) error {
		e.watcher = w
		return w.SetUpdateCallback(func(string) {
			if err := e.LoadPolicy(); err != nil {
				e.logger.Error("reload policy on watcher update", "error", err)
			}
		})
	}
}

// WithLogger installs a Logger on the engine.
func WithLogger(l logger.Logger) EngineOption {
	return func(e *Engine) error {
		e.logger = l
		return nil
	}
}

// WithEffector replaces the default effector.
func WithEffector(eft Effector) EngineOption {
	return func(e *Engine) error {
		e.eft = eft
		return nil
	}
}

// NewEngine builds an engine around a model. The model must carry the r, p,
// e and m sections; the matcher and effect expressions are validated here so
// misconfiguration surfaces at construction, not on the first Enforce.
func NewEngine(model Model, opts ...EngineOption) (*Engine, error) {
	e := &Engine{
		model:              model,
		fm:                 NewFunctionMap(),
		ee:                 NewExpressionEngine(),
		eft:                NewDefaultEffector(),
		logger:             logger.NewNullLogger(),
		enabled:            true,
		autoSave:           true,
		autoBuildRoleLinks: true,
		autoNotifyWatcher:  true,
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	if err := model.Validate(); err != nil {
		return nil, err
	}
	if err := e.registerRoleFunctions(); err != nil {
		return nil, err
	}
	if err := e.validateExpressions(); err != nil {
		return nil, err
	}
	if e.autoBuildRoleLinks {
		if err := model.BuildRoleLinks(); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// registerRoleFunctions exposes each role definition as a matcher predicate,
// e.g. g(r.sub, p.sub) for the "g" assertion bound to its own role graph.
func (e *Engine) registerRoleFunctions() error {
	for ptype := range e.model["g"] {
		rg, err := e.model.RoleGraphFor(ptype)
		if err != nil {
			return err
		}
		if err := e.fm.Register(ptype, -1, roleFunc(rg)); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) validateExpressions() error {
	mAst, err := e.model.assertion("m", "m")
	if err != nil {
		return err
	}
	expr, err := e.ee.Compile(mAst.Value, e.fm)
	if err != nil {
		return err
	}
	if err := ValidateIdentifiers(expr, mAst.Value, e.knownIdentifiers()); err != nil {
		return err
	}
	eAst, err := e.model.assertion("e", "e")
	if err != nil {
		return err
	}
	_, err = e.eft.NewStream(eAst.Value)
	return err
}

func (e *Engine) knownIdentifiers() map[string]struct{} {
	known := make(map[string]struct{})
	for _, sec := range []string{"r", "p"} {
		for _, ast := range e.model[sec] {
			for _, tok := range ast.Tokens {
				known[tok] = struct{}{}
			}
		}
	}
	known["p_eft"] = struct{}{}
	return known
}

// Model returns the engine's model. Callers mutating it directly bypass the
// engine's locking and hooks.
func (e *Engine) Model() Model { return e.model }

// SetLogger replaces the engine's logger.
func (e *Engine) SetLogger(l logger.Logger) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.logger = l
}

// EnableEnforce toggles enforcement. While disabled, every request is
// allowed.
func (e *Engine) EnableEnforce(enable bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.enabled = enable
}

// EnableAutoSave toggles write-through of mutations to the adapter.
func (e *Engine) EnableAutoSave(enable bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.autoSave = enable
}

// EnableAutoBuildRoleLinks toggles incremental role-graph maintenance on
// grouping-policy mutations. With it disabled the graph stays stale until
// BuildRoleLinks; readers accept stale role relations by that choice.
func (e *Engine) EnableAutoBuildRoleLinks(enable bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.autoBuildRoleLinks = enable
}

// EnableAutoNotifyWatcher toggles change notification after mutations.
func (e *Engine) EnableAutoNotifyWatcher(enable bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.autoNotifyWatcher = enable
}

// BuildRoleLinks manually rebuilds every role graph from the current
// grouping-policy rows.
func (e *Engine) BuildRoleLinks() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.model.BuildRoleLinks()
}

// BuildIncrementalRoleLinks applies a grouping-policy delta to the role graph
// of ptype without a full rebuild.
func (e *Engine) BuildIncrementalRoleLinks(op PolicyOp, ptype string, rules [][]string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.model.BuildIncrementalRoleLinks(op, ptype, rules)
}

// LoadPolicy clears the in-memory policy and reloads it from the adapter,
// then rebuilds role links.
func (e *Engine) LoadPolicy() error {
	if e.adapter == nil {
		return configError("no adapter set")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.model.ClearPolicy()
	if err := e.adapter.LoadPolicy(e.model); err != nil {
		return err
	}
	if e.autoBuildRoleLinks {
		if err := e.model.BuildRoleLinks(); err != nil {
			return err
		}
	}
	e.mutated()
	e.logger.Info("policy loaded")
	return nil
}

// SavePolicy writes the full in-memory policy through the adapter and
// notifies the watcher.
func (e *Engine) SavePolicy() error {
	if e.adapter == nil {
		return configError("no adapter set")
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if err := e.adapter.SavePolicy(e.model); err != nil {
		return err
	}
	e.notifyWatcher()
	return nil
}

// ClearPolicy drops every policy row in memory.
func (e *Engine) ClearPolicy() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.model.ClearPolicy()
	e.mutated()
}

// mutated runs the post-mutation hook. Callers hold the write lock.
func (e *Engine) mutated() {
	if e.onMutation != nil {
		e.onMutation()
	}
}

// AddFunction registers a custom matcher function. The arity is enforced on
// every call; pass -1 for variadic functions.
func (e *Engine) AddFunction(name string, arity int, fn Function) error {
	return e.fm.Register(name, arity, fn)
}

// Enforce decides whether the request is permitted under the model's own
// matcher. Arguments bind positionally to the request definition tokens.
func (e *Engine) Enforce(rvals ...any) (bool, error) {
	return e.enforce("", rvals)
}

// EnforceWithMatcher is Enforce with an explicit matcher expression replacing
// the model's default.
func (e *Engine) EnforceWithMatcher(matcher string, rvals ...any) (bool, error) {
	return e.enforce(matcher, rvals)
}

func (e *Engine) enforce(matcher string, rvals []any) (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.enabled {
		return true, nil
	}

	rAst, err := e.model.assertion("r", "r")
	if err != nil {
		return false, err
	}
	pAst, err := e.model.assertion("p", "p")
	if err != nil {
		return false, err
	}
	eAst, err := e.model.assertion("e", "e")
	if err != nil {
		return false, err
	}
	if matcher == "" {
		mAst, err := e.model.assertion("m", "m")
		if err != nil {
			return false, err
		}
		matcher = mAst.Value
	}

	if len(rvals) != len(rAst.Tokens) {
		return false, configError("request arity %d does not match request definition arity %d", len(rvals), len(rAst.Tokens))
	}

	expr, err := e.ee.Compile(matcher, e.fm)
	if err != nil {
		return false, err
	}
	if err := ValidateIdentifiers(expr, matcher, e.knownIdentifiers()); err != nil {
		return false, err
	}

	stream, err := e.eft.NewStream(eAst.Value)
	if err != nil {
		return false, err
	}

	params := make(map[string]any, len(rAst.Tokens)+len(pAst.Tokens)+1)
	for i, tok := range rAst.Tokens {
		params[tok] = rvals[i]
	}

	eftIdx := -1
	for i, tok := range pAst.Tokens {
		if tok == "p_eft" {
			eftIdx = i
		}
	}

	if len(pAst.Policy) == 0 {
		// no rows: evaluate the matcher once with empty policy bindings so
		// pure-ABAC models (no stored rows) still work
		for _, tok := range pAst.Tokens {
			params[tok] = ""
		}
		params["p_eft"] = string(EffectAllow)
		matched, err := e.ee.Evaluate(expr, matcher, params)
		if err != nil {
			return false, err
		}
		stream.Push(matched, EffectAllow)
	} else {
		for _, rule := range pAst.Policy {
			for i, tok := range pAst.Tokens {
				params[tok] = rule[i]
			}
			if eftIdx == -1 {
				params["p_eft"] = string(EffectAllow)
			}
			matched, err := e.ee.Evaluate(expr, matcher, params)
			if err != nil {
				return false, err
			}
			eft := EffectAllow
			if eftIdx >= 0 {
				switch rule[eftIdx] {
				case "", string(EffectAllow):
					eft = EffectAllow
				case string(EffectDeny):
					eft = EffectDeny
				default:
					// unknown tag: the row contributes nothing
					matched = false
				}
			}
			if stream.Push(matched, eft) {
				break
			}
		}
	}

	decision := stream.Decision()
	e.logger.Debug("enforce", "matched_decision", decision)
	return decision, nil
}

// notifyWatcher fires the change notification; failures are logged, not
// returned, because delivery is the watcher's concern.
func (e *Engine) notifyWatcher() {
	if !e.autoNotifyWatcher || e.watcher == nil {
		return
	}
	if err := e.watcher.Update(); err != nil {
		e.logger.Error("watcher update", "error", err)
	}
}
