package cache

// Keyer builds cache keys.
type Keyer interface {
	// ReplyKey identifies a non-streaming model reply by model name and
	// the fully assembled prompt sent to it.
	ReplyKey(model, prompt string) string
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ReplyKey returns "reply:<sha256(model, prompt)>".
func (DefaultKeyer) ReplyKey(model, prompt string) string {
	return hashKey("reply", model, prompt)
}

// ScopedKeyer wraps a Keyer with a prefix, so that several deployments can
// share one Redis instance without reading each other's entries.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "fireai:")
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

// ReplyKey generates a prefixed reply key.
func (k *ScopedKeyer) ReplyKey(model, prompt string) string {
	return k.prefix + k.inner.ReplyKey(model, prompt)
}
