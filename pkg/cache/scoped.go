package cache

// ScopedKeyer wraps a Keyer with a prefix so that several deployments or
// users can share one backend without seeing each other's entries.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "preview:")
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

// RecordingKey generates a prefixed recording key.
func (k *ScopedKeyer) RecordingKey(recordingHash string) string {
	return k.prefix + k.inner.RecordingKey(recordingHash)
}

// FigureKey generates a prefixed figure key.
func (k *ScopedKeyer) FigureKey(recordingHash string, opts FigureKeyOpts) string {
	return k.prefix + k.inner.FigureKey(recordingHash, opts)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(recordingHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(recordingHash, opts)
}
