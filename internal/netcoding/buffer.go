package netcoding

import "iter"

/*------------------------------------------------------------------
 *
 * Purpose:	Bounded, insertion-ordered packet holding area. Packets
 *		wait here for a combination partner. Once the buffer is
 *		full, further pushes are rejected; held entries never
 *		age out.
 *
 * Description:	Backed by a plain slice. The bound is small enough
 *		that every operation is a linear scan.
 *
 *------------------------------------------------------------------*/

// Buffer holds up to capacity packets in insertion order.
type Buffer struct {
	capacity int
	packets  []Packet
}

// NewBuffer returns an empty buffer bounded at capacity packets.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{capacity: capacity, packets: make([]Packet, 0, capacity)}
}

// Len reports the number of packets currently held.
func (b *Buffer) Len() int {
	return len(b.packets)
}

// Push inserts p at the end of the buffer. It returns ErrDuplicateHeader
// if an equivalent header is already held, or ErrBufferFull if the
// buffer is at capacity with no room for p.
func (b *Buffer) Push(p Packet) error {
	for _, held := range b.packets {
		if Equivalent(held.Header, p.Header) {
			return ErrDuplicateHeader
		}
	}
	if len(b.packets) >= b.capacity {
		return ErrBufferFull
	}
	b.packets = append(b.packets, p)
	return nil
}

// PopFitting removes and returns the first held packet that Fit(p,
// candidate) holds for, scanning in insertion order (oldest first).
// The second return value is false if no held packet fits.
func (b *Buffer) PopFitting(p Packet) (Packet, bool) {
	for i, held := range b.packets {
		if Fit(held.Header, p.Header) {
			b.packets = append(b.packets[:i], b.packets[i+1:]...)
			return held, true
		}
	}
	return Packet{}, false
}

// All iterates the buffer's packets in insertion order.
func (b *Buffer) All() iter.Seq[Packet] {
	return func(yield func(Packet) bool) {
		for _, p := range b.packets {
			if !yield(p) {
				return
			}
		}
	}
}
