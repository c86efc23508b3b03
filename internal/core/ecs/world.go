package ecs

// World is the top-level entity container. It owns the entity pool, the
// tracked component stores, and a deferred destruction queue flushed by the
// cleanup system each tick.
type World struct {
	pool         *EntityPool
	stores       *Stores
	destroyQueue []EntityID
}

func NewWorld() *World {
	return &World{
		pool:         NewEntityPool(),
		stores:       NewStores(),
		destroyQueue: make([]EntityID, 0, 16),
	}
}

func (w *World) Pool() *EntityPool { return w.pool }
func (w *World) Stores() *Stores   { return w.stores }

func (w *World) CreateEntity() EntityID {
	return w.pool.Create()
}

func (w *World) Alive(id EntityID) bool {
	return w.pool.Alive(id)
}

// MarkForDestruction queues an entity for end-of-tick cleanup.
func (w *World) MarkForDestruction(id EntityID) {
	w.destroyQueue = append(w.destroyQueue, id)
}

// DestroyNow removes an entity immediately, bypassing the queue.
// Handles to it go stale at once.
func (w *World) DestroyNow(id EntityID) {
	if !w.pool.Alive(id) {
		return
	}
	w.stores.Drop(id)
	w.pool.Destroy(id)
}

// FlushDestroyQueue destroys all queued entities and clears their components.
// Entities already destroyed are skipped.
func (w *World) FlushDestroyQueue() {
	for _, id := range w.destroyQueue {
		w.DestroyNow(id)
	}
	w.destroyQueue = w.destroyQueue[:0]
}

// QueuedForDestruction reports how many entities await cleanup.
func (w *World) QueuedForDestruction() int {
	return len(w.destroyQueue)
}
