package ecs

// World owns the entity pool, the store registry and a deferred destroy
// queue. Destroy tombstones immediately so the rest of the tick never sees
// the entity; the ID is only recycled, and stores compacted, by
// FlushDestroyQueue at the end of the tick.
type World struct {
	pool         *EntityPool
	registry     *Registry
	destroyQueue []EntityID
}

func NewWorld() *World {
	return &World{
		pool:         NewEntityPool(),
		registry:     NewRegistry(),
		destroyQueue: make([]EntityID, 0, 16),
	}
}

func (w *World) Pool() *EntityPool   { return w.pool }
func (w *World) Registry() *Registry { return w.registry }

func (w *World) CreateEntity() EntityID {
	return w.pool.Create()
}

func (w *World) Alive(id EntityID) bool {
	return w.pool.Alive(id)
}

// Destroy removes the entity from every store and queues its ID for recycling.
func (w *World) Destroy(id EntityID) {
	if !w.pool.Alive(id) {
		return
	}
	w.registry.RemoveAll(id)
	w.destroyQueue = append(w.destroyQueue, id)
}

// Pending returns the number of destroyed entities awaiting the flush.
func (w *World) Pending() int { return len(w.destroyQueue) }

// FlushDestroyQueue recycles queued IDs and compacts every store.
func (w *World) FlushDestroyQueue() {
	for _, id := range w.destroyQueue {
		w.pool.Destroy(id)
	}
	w.destroyQueue = w.destroyQueue[:0]
	w.registry.CompactAll()
}

// Reset drops every entity and starts a fresh pool.
func (w *World) Reset() {
	w.pool = NewEntityPool()
	w.destroyQueue = w.destroyQueue[:0]
	for _, s := range w.registry.stores {
		if c, ok := s.(interface{ Clear() }); ok {
			c.Clear()
		}
	}
}
