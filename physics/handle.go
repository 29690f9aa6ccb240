package physics

import "strconv"

// BodyID is a stable handle to a body in a World. It packs a slot index and
// a generation so a handle to a removed body never resolves to a reused slot.
type BodyID uint64

type slotIndex uint32
type generation uint32

const slotBits = 32

func makeBodyID(slot slotIndex, gen generation) BodyID {
	return BodyID(uint64(gen)<<slotBits | uint64(slot))
}

func (id BodyID) slot() slotIndex {
	return slotIndex(uint32(id))
}

func (id BodyID) generation() generation {
	return generation(uint32(uint64(id) >> slotBits))
}

func (id BodyID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// Valid reports whether the handle was ever issued. Slot 0 is never used.
func (id BodyID) Valid() bool {
	return id.slot() > 0
}

// slotStore tracks slot generations and free slots.
type slotStore struct {
	gen  []generation
	free []slotIndex
}

func (s *slotStore) create() BodyID {
	var slot slotIndex
	if n := len(s.free); n > 0 {
		slot = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		s.gen = append(s.gen, 0)
		slot = slotIndex(len(s.gen))
	}
	return makeBodyID(slot, s.gen[slot-1])
}

func (s *slotStore) destroy(id BodyID) bool {
	if !s.isAlive(id) {
		return false
	}
	s.gen[id.slot()-1]++
	s.free = append(s.free, id.slot())
	return true
}

func (s *slotStore) isAlive(id BodyID) bool {
	slot := id.slot()
	if slot == 0 || int(slot) > len(s.gen) {
		return false
	}
	return s.gen[slot-1] == id.generation()
}
