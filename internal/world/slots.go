package world

// SlotPool hands out spawn slot indices with a free list. A slot released by a
// disconnecting player is reused before a new index is minted, so the lineup
// does not drift further out as players come and go.
type SlotPool struct {
	inUse     []bool
	freeList  []int
	nextIndex int
}

func NewSlotPool() *SlotPool {
	return &SlotPool{
		inUse:    make([]bool, 0, 64),
		freeList: make([]int, 0, 16),
	}
}

// Acquire returns the lowest free slot.
func (p *SlotPool) Acquire() int {
	if len(p.freeList) > 0 {
		best := 0
		for i, idx := range p.freeList {
			if idx < p.freeList[best] {
				best = i
			}
		}
		idx := p.freeList[best]
		last := len(p.freeList) - 1
		p.freeList[best] = p.freeList[last]
		p.freeList = p.freeList[:last]
		p.inUse[idx] = true
		return idx
	}
	idx := p.nextIndex
	p.nextIndex++
	p.inUse = append(p.inUse, true)
	return idx
}

// Release returns a slot to the pool. Unknown or already free slots are ignored.
func (p *SlotPool) Release(idx int) {
	if idx < 0 || idx >= p.nextIndex || !p.inUse[idx] {
		return
	}
	p.inUse[idx] = false
	p.freeList = append(p.freeList, idx)
}

// InUse reports the number of held slots.
func (p *SlotPool) InUse() int {
	return p.nextIndex - len(p.freeList)
}
