package component

// ShapeSpec describes one shape of a collider relative to the owning
// entity's transform.
type ShapeSpec struct {
	// Kind is one of ball, box, polygon, edge.
	Kind     string  `yaml:"kind"`
	OffsetX  float64 `yaml:"offset_x"`
	OffsetY  float64 `yaml:"offset_y"`
	Width    float64 `yaml:"width"`
	Height   float64 `yaml:"height"`
	Radius   float64 `yaml:"radius"`
	Rotation float64 `yaml:"rotation"`
	// Vertices for polygons (three or more) and edges (exactly two), as
	// [x, y] pairs.
	Vertices [][2]float64 `yaml:"vertices"`
}

// Collider owns the shapes rebuilt from this entity every tick.
type Collider struct {
	Shapes  []ShapeSpec `yaml:"shapes"`
	Tilemap *Tilemap    `yaml:"tilemap"`
	// Physics colliders take part in integration rollback and position
	// correction. Non-physics colliders only produce records.
	Physics      bool     `yaml:"physics"`
	Layer        string   `yaml:"layer"`
	IgnoreLayers []string `yaml:"ignore_layers"`
	// Passive colliders never start a query of their own but are still
	// found by others.
	Passive bool `yaml:"passive"`
	// Level names an embedded tile level used to fill Tilemap.
	Level string `yaml:"level"`
}

var ColliderComponent = NewComponent[Collider]()
