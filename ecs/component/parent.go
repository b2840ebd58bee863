package component

// Parent makes an entity's Transform follow another entity. The child's
// position is the parent's position plus the offset rotated by the parent's
// rotation; rotation adds up the chain.
type Parent struct {
	Entity  uint64  `yaml:"-"`
	Name    string  `yaml:"name"`
	OffsetX float64 `yaml:"offset_x"`
	OffsetY float64 `yaml:"offset_y"`
	// Rotation is added to the parent's rotation.
	Rotation float64 `yaml:"rotation"`
}

var ParentComponent = NewComponent[Parent]()
