package cache

// ScopedKeyer wraps a Keyer with a prefix so that several tenants or
// environments can share one backend without seeing each other's entries.
//
//	staging := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ScheduleKey generates a prefixed schedule key.
func (k *ScopedKeyer) ScheduleKey(planHash string, opts ScheduleKeyOpts) string {
	return k.prefix + k.inner.ScheduleKey(planHash, opts)
}
