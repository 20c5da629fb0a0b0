package cache

// Keyer builds cache keys. Implementations must return the same key for
// equal inputs and different keys for inputs that would produce different
// bytes.
type Keyer interface {
	// MapKey identifies the JSON export of a generated map.
	MapKey(seed int64, config any) string

	// ArtifactKey identifies a rendered artifact of a map.
	ArtifactKey(fingerprint string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts are the render settings that change artifact bytes.
type ArtifactKeyOpts struct {
	Format   string  `json:"format"`
	Engine   string  `json:"engine,omitempty"`
	Scale    float64 `json:"scale,omitempty"`
	Detailed bool    `json:"detailed,omitempty"`
}

// DefaultKeyer hashes inputs into "map:" and "artifact:" namespaces.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// MapKey hashes the seed together with the JSON form of config.
func (DefaultKeyer) MapKey(seed int64, config any) string {
	return hashKey("map", seed, config)
}

// ArtifactKey hashes the map fingerprint with the render options.
func (DefaultKeyer) ArtifactKey(fingerprint string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", fingerprint, opts)
}

var _ Keyer = DefaultKeyer{}
