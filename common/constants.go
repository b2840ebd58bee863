package common

const (
	// TileSize is the edge length of one tilemap cell in world units.
	TileSize = 32

	// Gravity is the default gravity scalar for dynamic rigid bodies.
	Gravity = 1.0

	// FixedStep is the default simulation timestep in seconds.
	FixedStep = 1.0 / 60.0

	// MaxCatchUpSteps caps how many fixed steps a single frame may run.
	MaxCatchUpSteps = 5
)
