package ecs

// Stores fans a destroy out to every component store holding per-entity
// host state, so a retired handle leaves nothing behind.
type Stores struct {
	list []Removable
}

func NewStores() *Stores {
	return &Stores{list: make([]Removable, 0, 4)}
}

// Track adds a store to the destroy fan-out.
func (s *Stores) Track(store Removable) {
	s.list = append(s.list, store)
}

// Drop removes id from every tracked store.
func (s *Stores) Drop(id EntityID) {
	for _, st := range s.list {
		st.Remove(id)
	}
}
