// heap.go: fixed-capacity arena heap with generational pointers and an
// explicit mark/sweep collector.
//
// The heap is a flat array of slots. Allocation is first-fit over free
// slots; every allocation stamps the slot with the value of a monotonic
// clock, and the returned Gc handle carries that stamp. A handle is valid
// only while its stamp matches the slot's: the clock never repeats, so a
// pointer captured before a collection can never silently alias an object
// allocated into the same slot afterwards.
//
// Collection is explicit and stop-the-world: Mark flips every slot
// reachable from the given roots from live to marked (worklist traversal
// with a seen-set, so arbitrary graphs terminate), and Sweep frees every
// live slot Mark did not visit, reverts marked slots to live, and bumps
// the clock once. Nothing allocates between Mark and Sweep.
package softmacs

// Gc is a handle into the heap: a slot index plus the stamp the slot
// carried when the object was allocated. Equality is structural; a Gc is
// usable as a map key. Callers never see slot contents except through
// (*Heap).get, which validates the stamp.
type Gc struct {
	index int
	stamp uint64
}

type slotState int

const (
	slotFree slotState = iota
	slotLive
	slotMarked // transient, only between Mark and Sweep
)

type slot struct {
	state  slotState
	object Object
	stamp  uint64
}

// Heap owns a fixed number of slots. It never grows; put fails with a
// space error once every slot is live.
type Heap struct {
	slots []slot
	clock uint64
}

// NewHeap returns a heap with the given number of slots.
func NewHeap(capacity int) *Heap {
	return &Heap{slots: make([]slot, capacity)}
}

// Capacity reports the fixed slot count.
func (h *Heap) Capacity() int { return len(h.slots) }

// put installs object into the first free slot and returns its handle.
func (h *Heap) put(object Object) (Gc, error) {
	for i := range h.slots {
		if h.slots[i].state != slotFree {
			continue
		}
		h.slots[i] = slot{state: slotLive, object: object, stamp: h.clock}
		ptr := Gc{index: i, stamp: h.clock}
		h.clock++
		return ptr, nil
	}
	return Gc{}, &HeapError{Kind: ErrSpace, Capacity: len(h.slots)}
}

// get returns the object behind ptr, failing with a pointer error if the
// slot is free or was re-stamped since ptr was issued.
func (h *Heap) get(ptr Gc) (Object, error) {
	if ptr.index < 0 || ptr.index >= len(h.slots) {
		return Object{}, &HeapError{Kind: ErrPointer, Index: ptr.index, Stamp: ptr.stamp}
	}
	s := &h.slots[ptr.index]
	if s.state == slotFree || s.stamp != ptr.stamp {
		return Object{}, &HeapError{Kind: ErrPointer, Index: ptr.index, Stamp: ptr.stamp}
	}
	return s.object, nil
}

// Mark runs the reachability phase from the given roots. Every reachable
// live slot becomes marked; already-marked slots are left alone. A root or
// traversed edge that fails stamp validation is a pointer error; that is
// a caller bug (a stale pointer kept as a root) and aborts the phase.
func (h *Heap) Mark(roots ...Gc) error {
	seen := make(map[Gc]bool, len(roots))
	work := make([]Gc, 0, len(roots))
	for _, r := range roots {
		if !seen[r] {
			seen[r] = true
			work = append(work, r)
		}
	}
	for len(work) > 0 {
		ptr := work[len(work)-1]
		work = work[:len(work)-1]

		if ptr.index < 0 || ptr.index >= len(h.slots) {
			return &HeapError{Kind: ErrPointer, Index: ptr.index, Stamp: ptr.stamp}
		}
		s := &h.slots[ptr.index]
		if s.state == slotFree || s.stamp != ptr.stamp {
			return &HeapError{Kind: ErrPointer, Index: ptr.index, Stamp: ptr.stamp}
		}
		if s.state == slotLive {
			s.state = slotMarked
		}

		for _, child := range s.object.refs() {
			if !seen[child] {
				seen[child] = true
				work = append(work, child)
			}
		}
	}
	return nil
}

// Sweep frees every live slot (unreached by the preceding Mark), reverts
// marked slots to live with object and stamp intact, and bumps the clock
// once so any pointer captured before the sweep fails validation if its
// slot is reused. Returns the number of slots reclaimed.
func (h *Heap) Sweep() int {
	count := 0
	for i := range h.slots {
		switch h.slots[i].state {
		case slotLive:
			h.slots[i] = slot{}
			count++
		case slotMarked:
			h.slots[i].state = slotLive
		}
	}
	h.clock++
	return count
}

// refs returns the handles embedded in an object. Unit, booleans, symbols,
// natives and captured continuations are leaves.
func (o Object) refs() []Gc {
	switch o.Tag {
	case TagPair:
		p := o.Data.(Pair)
		return []Gc{p.Fst, p.Snd}
	case TagProc:
		switch p := o.Data.(Proc); p.Kind {
		case ProcApp:
			return []Gc{p.Inner}
		case ProcAbs:
			return []Gc{p.Abs.Head, p.Abs.Tail, p.Abs.Lexical, p.Abs.Dynamic}
		}
	}
	return nil
}
