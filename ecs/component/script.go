package component

// Script drives an entity's velocity from a tengo script run before
// collision detection each tick.
type Script struct {
	Path   string `yaml:"path"`
	Source string `yaml:"source"`
	// Vars are copied into the script as globals before each run.
	Vars map[string]any `yaml:"vars"`
}

var ScriptComponent = NewComponent[Script]()
