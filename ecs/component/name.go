package component

// Name identifies an entity within a scene. Parents are looked up by it.
type Name struct {
	Value string
}

var NameComponent = NewComponent[Name]()
