package cache

// ScopedKeyer wraps a Keyer with a prefix so that several tools or
// algorithm versions can share one backend without colliding.
//
// Example usage:
//
//	// Keys for maps built by generator version 2
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "v2:")
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

// MapKey generates a prefixed key for map caching.
func (k *ScopedKeyer) MapKey(seed int64, config any) string {
	return k.prefix + k.inner.MapKey(seed, config)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(fingerprint string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(fingerprint, opts)
}
