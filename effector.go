package permit

// Effect is the per-row outcome tag carried in an optional "eft" policy field.
type Effect string

const (
	EffectAllow Effect = "allow"
	EffectDeny  Effect = "deny"
)

// The effect expressions the default effector understands.
const (
	EffectAllowOverride = "some(where (p.eft == allow))"
	EffectDenyOverride  = "!some(where (p.eft == deny))"
	EffectAllowAndDeny  = "some(where (p.eft == allow)) && !some(where (p.eft == deny))"
	EffectPriority      = "priority(p.eft) || deny"
)

type effectMode int

const (
	modeAllowOverride effectMode = iota
	modeDenyOverride
	modeAllowAndDeny
	modePriority
)

// EffectStream folds the ordered per-row (matched, effect) results into one
// decision. Push reports true as soon as the decision is determined, letting
// the engine stop evaluating further rows; each Enforce call gets a fresh
// stream.
type EffectStream struct {
	mode    effectMode
	done    bool
	allowed bool
}

// Effector creates effect streams for a model's effect expression.
type Effector interface {
	NewStream(expr string) (*EffectStream, error)
}

// DefaultEffector understands the four standard effect expressions.
type DefaultEffector struct{}

func NewDefaultEffector() *DefaultEffector { return &DefaultEffector{} }

func (DefaultEffector) NewStream(expr string) (*EffectStream, error) {
	switch expr {
	case EffectAllowOverride:
		return &EffectStream{mode: modeAllowOverride}, nil
	case EffectDenyOverride:
		return &EffectStream{mode: modeDenyOverride}, nil
	case EffectAllowAndDeny:
		return &EffectStream{mode: modeAllowAndDeny}, nil
	case EffectPriority:
		return &EffectStream{mode: modePriority}, nil
	default:
		return nil, configError("unsupported effect expression %q", expr)
	}
}

// Push feeds one row result into the stream. Unmatched rows never change the
// state. With no matched row at all the final decision stays Deny, whatever
// the mode; a deny-biased default keeps an empty policy store safe.
func (s *EffectStream) Push(matched bool, eft Effect) bool {
	if s.done || !matched {
		return s.done
	}
	switch s.mode {
	case modeAllowOverride:
		if eft == EffectAllow {
			s.allowed = true
			s.done = true
		}
	case modeDenyOverride, modeAllowAndDeny:
		if eft == EffectDeny {
			s.allowed = false
			s.done = true
		} else if eft == EffectAllow {
			// provisional allow, a later deny still overrides
			s.allowed = true
		}
	case modePriority:
		s.allowed = eft == EffectAllow
		s.done = true
	}
	return s.done
}

// Decision returns the final outcome after the row sequence is exhausted or
// Push short-circuited.
func (s *EffectStream) Decision() bool {
	return s.allowed
}
