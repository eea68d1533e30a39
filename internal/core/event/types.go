package event

// Scene events. Entities are referred to by their persistent string IDs so
// that handlers never hold on to entities the registry has already destroyed.

type EntityCreated struct {
	ID   string
	Name string
}

type EntityRemoved struct {
	ID   string
	Name string
}

type SceneCleared struct{}

type SceneSaved struct {
	Path      string
	Roots     int
	Entities  int
	Resources int
	Err       error
}

type SceneLoaded struct {
	Path      string
	Roots     int
	Entities  int
	Resources int
	Err       error
}
