package ecs

// Handle encodes a 32-bit index in the lower bits and a 32-bit generation
// in the upper bits. Generation increments on destroy to invalidate stale refs.
// The zero Handle never refers to a live slot.
type Handle uint64

func NewHandle(index uint32, generation uint32) Handle {
	return Handle(uint64(generation)<<32 | uint64(index))
}

func (h Handle) Index() uint32      { return uint32(h) }
func (h Handle) Generation() uint32 { return uint32(h >> 32) }
func (h Handle) IsZero() bool       { return h == 0 }

// HandlePool manages handle allocation with generational indices and a free list.
// Index 0 is reserved so that the zero Handle means "none".
type HandlePool struct {
	generations []uint32
	freeList    []uint32
	nextIndex   uint32
}

func NewHandlePool() *HandlePool {
	p := &HandlePool{
		generations: make([]uint32, 1, 1024),
		freeList:    make([]uint32, 0, 256),
		nextIndex:   1,
	}
	return p
}

func (p *HandlePool) Create() Handle {
	if len(p.freeList) > 0 {
		idx := p.freeList[len(p.freeList)-1]
		p.freeList = p.freeList[:len(p.freeList)-1]
		return NewHandle(idx, p.generations[idx])
	}
	idx := p.nextIndex
	p.nextIndex++
	if int(idx) >= len(p.generations) {
		p.generations = append(p.generations, 0)
	}
	return NewHandle(idx, p.generations[idx])
}

func (p *HandlePool) Alive(h Handle) bool {
	idx := h.Index()
	if idx == 0 || idx >= p.nextIndex {
		return false
	}
	return p.generations[idx] == h.Generation()
}

func (p *HandlePool) Destroy(h Handle) {
	if !p.Alive(h) {
		return // already destroyed (stale reference)
	}
	idx := h.Index()
	p.generations[idx]++
	p.freeList = append(p.freeList, idx)
}

// Reset invalidates every handle handed out so far. Slots are recycled with a
// bumped generation, so handles from before the reset never resolve again.
func (p *HandlePool) Reset() {
	p.freeList = p.freeList[:0]
	for idx := p.nextIndex - 1; idx >= 1; idx-- {
		p.generations[idx]++
		p.freeList = append(p.freeList, idx)
	}
}
