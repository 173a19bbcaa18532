package netcoding

import "iter"

/*------------------------------------------------------------------
 *
 * Purpose:	Open-addressed set of headers already visited during one
 *		decode call's breadth-first closure, used to cut cycles
 *		short instead of re-deriving the same header forever.
 *
 * Description:	Linear probing over a power-of-two table, doubled
 *		whenever load exceeds one half. Occupancy is tracked with
 *		an explicit bitmap rather than overloading hash==0 as
 *		"empty slot", since nothing stops a header from hashing
 *		to zero.
 *
 *		entries is append-only for the lifetime of a SeenSet.
 *		The decoder's BFS closure walks it with an explicit index
 *		loop rather than range, so packets inserted mid-pass are
 *		visible to later iterations of that same pass.
 *
 *------------------------------------------------------------------*/

// InsertResult reports what TryInsert did.
type InsertResult int

const (
	// Inserted means the header was new and is now recorded.
	Inserted InsertResult = iota
	// AlreadyPresent means an equivalent header was already recorded.
	AlreadyPresent
)

// SeenSet records which headers have been visited during one decode
// call, bounded at maxCapacity entries.
type SeenSet struct {
	maxCapacity int
	entries     []Packet
	table       []int32 // index into entries, or -1 for empty slot
	used        []bool
	count       int
}

// NewSeenSet returns an empty seen-set that starts at initialCapacity
// slots (rounded up internally) and refuses to grow past maxCapacity
// recorded entries.
func NewSeenSet(initialCapacity, maxCapacity int) *SeenSet {
	size := nextPow2(initialCapacity)
	s := &SeenSet{
		maxCapacity: maxCapacity,
		table:       make([]int32, size),
		used:        make([]bool, size),
	}
	return s
}

func nextPow2(n int) int {
	size := 1
	for size < n {
		size *= 2
	}
	if size < 2 {
		size = 2
	}
	return size
}

// Len reports how many distinct headers have been recorded.
func (s *SeenSet) Len() int {
	return s.count
}

func (s *SeenSet) slot(h Header) int {
	mask := uint64(len(s.table) - 1)
	idx := h.Hash() & mask
	for {
		if !s.used[idx] || Equivalent(s.entries[s.table[idx]].Header, h) {
			return int(idx)
		}
		idx = (idx + 1) & mask
	}
}

// TryInsert records p's header if no equivalent header has been seen
// yet. It returns AlreadyPresent without error if p.Header was already
// recorded. It returns ErrSeenSetExhausted if recording a new header
// would require growing past maxCapacity; the header is then not
// recorded, and the InsertResult returned alongside the error carries
// no meaning.
func (s *SeenSet) TryInsert(p Packet) (InsertResult, error) {
	idx := s.slot(p.Header)
	if s.used[idx] {
		return AlreadyPresent, nil
	}
	if s.count >= s.maxCapacity {
		return Inserted, ErrSeenSetExhausted
	}
	s.entries = append(s.entries, p)
	s.table[idx] = int32(len(s.entries) - 1)
	s.used[idx] = true
	s.count++
	if s.count*2 > len(s.table) {
		s.grow()
	}
	return Inserted, nil
}

func (s *SeenSet) grow() {
	newSize := len(s.table) * 2
	s.table = make([]int32, newSize)
	s.used = make([]bool, newSize)
	for i, p := range s.entries {
		idx := s.slot(p.Header)
		s.table[idx] = int32(i)
		s.used[idx] = true
	}
}

// EntryAt returns the packet recorded at append-order index i and
// whether i was in range. The decoder's BFS closure calls this inside
// an explicit `for i := 0; i < seen.Len(); i++` loop rather than All,
// because Len() must be re-read each iteration to observe growth
// within the same pass, which a single iter.Seq snapshot cannot
// do.
func (s *SeenSet) EntryAt(i int) (Packet, bool) {
	if i < 0 || i >= len(s.entries) {
		return Packet{}, false
	}
	return s.entries[i], true
}

// All iterates recorded packets in the order they were first seen.
func (s *SeenSet) All() iter.Seq[Packet] {
	return func(yield func(Packet) bool) {
		for _, p := range s.entries {
			if !yield(p) {
				return
			}
		}
	}
}
