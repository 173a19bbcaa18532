package netcoding

/*------------------------------------------------------------------
 *
 * Purpose:	Recover original packets from an inbound coded
 *		packet by repeatedly XOR-merging it (and everything
 *		derived from it) against everything the node has seen,
 *		until no new header is produced.
 *
 * Description:	Unlike the encoder, the decoder merges unconditionally:
 *		it does not require Fit first, because cancellation
 *		(shared ids) is exactly how a combined packet gives up an
 *		original it was carrying. The closure is a breadth-first
 *		walk seeded with the arriving packet. The seen-set S plays
 *		a double role: it both dedupes
 *		derived headers (breaking cycles) and, since it starts out
 *		holding everything already in the node's buffers, doubles
 *		as the candidate pool each frontier packet is merged
 *		against. A packet newly derived this pass joins S
 *		immediately, so later frontier members in the same pass
 *		(and later passes) merge against it too; this is why the
 *		inner scan below is a `for i := 0; i < seen.Len(); i++`
 *		loop rather than range over a fixed slice or buffer
 *		snapshot.
 *
 *------------------------------------------------------------------*/

// DefaultSeenSetCapacity bounds a single decode call's BFS closure.
// 3*W gives the walk enough room to explore every raw/combined buffer
// slot's worth of cross-products without runaway growth.
const DefaultSeenSetCapacity = 3 * WindowSize

// Decode runs the breadth-first closure seeded by p against n's held
// packets, and returns p together with every newly-derived original
// (arity-1) packet. The seed is always included, even if nothing new
// is derived from it.
//
// p is stored into n's raw or combined buffer first, the same way the
// encoder routes by arity. A buffer-full or duplicate-header push is
// a silent drop and does not stop the rest of decoding.
func Decode(n *Node, p Packet) ([]Packet, error) {
	storeByArity(n, p)

	seen := NewSeenSet(WindowSize, DefaultSeenSetCapacity)
	for held := range heldPackets(n) {
		if _, err := seen.TryInsert(held); err != nil {
			return []Packet{p}, err
		}
	}

	output := []Packet{p}
	frontier := []Packet{p}

	for len(frontier) > 0 {
		var next []Packet
		for _, f := range frontier {
			for i := 0; i < seen.Len(); i++ {
				m, ok := seen.EntryAt(i)
				if !ok {
					break
				}
				merged, ok := mergeUnconditional(f, m)
				if !ok {
					continue
				}
				result, err := seen.TryInsert(merged)
				if err != nil {
					return output, err
				}
				if result != Inserted {
					continue
				}
				next = append(next, merged)
				if merged.IsRaw() {
					output = append(output, merged)
				}
			}
		}
		frontier = next
	}
	return output, nil
}

// mergeUnconditional XOR-merges two packets without a Fit check. It
// reports false when the header merge cancels to nothing or overflows
// K slots (see combineOrNull).
func mergeUnconditional(a, b Packet) (Packet, bool) {
	h, ok := combineOrNull(a.Header, b.Header)
	if !ok {
		return Packet{}, false
	}
	return Packet{Header: h, Body: xorPayload(a.Body, b.Body)}, true
}

// storeByArity routes p into n's raw or combined buffer the way both
// the encoder's fallback store and the decoder's seed step do. Push
// failure (full or duplicate) is a silent drop; the caller proceeds
// either way.
func storeByArity(n *Node, p Packet) {
	buf := n.Raw
	if p.Header.Arity() > 1 {
		buf = n.Combined
	}
	_ = buf.Push(p)
}

// heldPackets walks a node's raw buffer then its combined buffer.
func heldPackets(n *Node) func(yield func(Packet) bool) {
	return func(yield func(Packet) bool) {
		for p := range n.Raw.All() {
			if !yield(p) {
				return
			}
		}
		for p := range n.Combined.All() {
			if !yield(p) {
				return
			}
		}
	}
}
