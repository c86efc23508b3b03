package event

// ContentReloaded fires once the host finishes loading a new content
// generation. Every entity handle from earlier generations is stale.
type ContentReloaded struct {
	Map        string
	Generation uint32
}

// PlayerSpawned fires when a player's body is (re)created.
type PlayerSpawned struct {
	Slot       int
	Generation uint32
}

type PlayerDisconnected struct {
	Slot int
}
