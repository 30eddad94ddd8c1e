package cache

// Keyer derives cache keys.
type Keyer interface {
	// SceneKey is the key of a built scene's layout export.
	SceneKey(docHash string, opts SceneKeyOpts) string
	// ArtifactKey is the key of one rendered output format.
	ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string
}

// SceneKeyOpts holds the options that change how a scene is built.
type SceneKeyOpts struct {
	Width   float64  `json:"width"`
	Height  float64  `json:"height"`
	Recipes []string `json:"recipes,omitempty"`
}

// ArtifactKeyOpts holds the options that change a rendered output.
type ArtifactKeyOpts struct {
	Format    string  `json:"format"`
	GridLines bool    `json:"grid_lines,omitempty"`
	Detailed  bool    `json:"detailed,omitempty"`
	Scale     float64 `json:"scale,omitempty"`
}

// DefaultKeyer hashes the options into the key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// SceneKey returns "scene:<hash>".
func (DefaultKeyer) SceneKey(docHash string, opts SceneKeyOpts) string {
	return hashKey("scene", docHash, opts)
}

// ArtifactKey returns "artifact:<hash>".
func (DefaultKeyer) ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", sceneHash, opts)
}

var _ Keyer = DefaultKeyer{}
