package netcoding

/*------------------------------------------------------------------
 *
 * Purpose:	Decide, for each inbound packet, whether to forward
 *		it untouched or combine it with something already held.
 *		A combination is always forwarded at once; a packet that
 *		finds no partner is kept back for a later one.
 *
 * Description:	A probabilistic roll gates whether combination is even
 *		attempted; the search order depends on how much room the
 *		inbound packet leaves. A packet at arity K-1 can only ever
 *		fit with something in the raw buffer (anything already
 *		combined has no room left for it), so that case searches
 *		raw only. Otherwise the combined buffer is searched first,
 *		since combining two already-partial packets clears more
 *		backlog than combining with a fresh raw one.
 *
 *------------------------------------------------------------------*/

// Encode runs the combination roll and search for p arriving at n, and
// returns the packets (zero or one) that should be transmitted now. A
// nil, nil result means nothing goes out: p was stored in a buffer, or
// dropped because that buffer was full or already held an equivalent
// header.
func Encode(n *Node, p Packet, rng Rand) ([]Packet, error) {
	if !shouldCombine(n, rng) {
		return []Packet{p}, nil
	}

	for _, buf := range searchOrder(n, p) {
		partner, ok := buf.PopFitting(p)
		if !ok {
			continue
		}
		return []Packet{Combine(partner, p)}, nil
	}

	storeByArity(n, p)
	return nil, nil
}

// shouldCombine rolls the node's combination percentage.
func shouldCombine(n *Node, rng Rand) bool {
	return rng.Intn(100) < n.ProbToCombine
}

// searchOrder picks which buffers to probe for a fit, and in what
// order, given the inbound packet's arity.
func searchOrder(n *Node, p Packet) []*Buffer {
	if p.Header.Arity() == K-1 {
		return []*Buffer{n.Raw}
	}
	return []*Buffer{n.Combined, n.Raw}
}

