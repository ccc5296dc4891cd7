package cache

// Keyer derives cache keys for pipeline stages.
type Keyer interface {
	// LayoutKey keys a resolved layout by tree hash and layout options.
	LayoutKey(treeHash string, opts LayoutKeyOpts) string

	// ArtifactKey keys rendered bytes by layout hash and render options.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the options that change a resolved layout.
type LayoutKeyOpts struct {
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Margin     float64 `json:"margin"`
	Charge     float64 `json:"charge"`
	Seed       uint64  `json:"seed"`
	MaxTicks   int     `json:"max_ticks"`
	StylesHash string  `json:"styles_hash"`
}

// ArtifactKeyOpts are the options that change rendered output.
type ArtifactKeyOpts struct {
	VizType     string  `json:"viz_type"`
	Format      string  `json:"format"`
	Scale       float64 `json:"scale,omitempty"`
	Background  string  `json:"background,omitempty"`
	Interactive bool    `json:"interactive,omitempty"`
	StylesHash  string  `json:"styles_hash"`
}

// DefaultKeyer hashes options into keys of the form "stage:sha256".
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(treeHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", treeHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
