package ecs

// EntityID is a host object handle: slot index in the low 32 bits, slot
// generation in the high 32. Generations start at 1, so the zero EntityID
// never names a live object and serves as "no entity".
type EntityID uint64

// None is the zero handle.
const None EntityID = 0

func NewEntityID(index uint32, generation uint32) EntityID {
	return EntityID(uint64(generation)<<32 | uint64(index))
}

func (id EntityID) Index() uint32      { return uint32(id) }
func (id EntityID) Generation() uint32 { return uint32(id >> 32) }
func (id EntityID) IsZero() bool       { return id == None }

// EntityPool hands out generational handles. Destroying a handle bumps its
// slot generation, so every copy of the old handle stops resolving even
// after the slot is reused.
type EntityPool struct {
	gens []uint32 // current generation per slot
	free []uint32 // destroyed slots, reused LIFO
	live int
}

func NewEntityPool() *EntityPool {
	return &EntityPool{
		gens: make([]uint32, 0, 256),
		free: make([]uint32, 0, 64),
	}
}

func (p *EntityPool) Create() EntityID {
	p.live++
	if n := len(p.free); n > 0 {
		idx := p.free[n-1]
		p.free = p.free[:n-1]
		return NewEntityID(idx, p.gens[idx])
	}
	idx := uint32(len(p.gens))
	p.gens = append(p.gens, 1)
	return NewEntityID(idx, 1)
}

func (p *EntityPool) Alive(id EntityID) bool {
	idx := id.Index()
	return !id.IsZero() && int(idx) < len(p.gens) && p.gens[idx] == id.Generation()
}

// Destroy retires id. Stale or zero handles are ignored.
func (p *EntityPool) Destroy(id EntityID) {
	if !p.Alive(id) {
		return
	}
	idx := id.Index()
	p.gens[idx]++
	if p.gens[idx] == 0 {
		p.gens[idx] = 1 // wrapped; generation 0 stays reserved for None
	}
	p.free = append(p.free, idx)
	p.live--
}

// Live returns how many handles are currently alive.
func (p *EntityPool) Live() int { return p.live }
