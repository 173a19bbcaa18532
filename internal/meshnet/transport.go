// Package meshnet is the UDP transport around the coding engine: it
// owns the socket, frames datagrams on and off the wire, and calls
// into internal/netcoding's Encode/Decode with whatever it reads.
package meshnet

/*------------------------------------------------------------------
 *
 * Purpose:	Datagram in/out for one netcoding.Node.
 *
 * Description:	A Transport owns exactly one net.PacketConn and one
 *		receive goroutine. That goroutine is the sole caller of
 *		Encode/Decode for its node, so a node's buffers are only
 *		ever touched from a single goroutine. Router nodes call
 *		Encode and forward whatever comes back; receiver nodes
 *		call Decode and hand the newly-recovered originals to a
 *		Deliver callback.
 *
 *------------------------------------------------------------------*/

import (
	"errors"
	"fmt"
	"net"

	"github.com/doismellburning/netcoding/internal/meshlog"
	"github.com/doismellburning/netcoding/internal/netcoding"
)

// Deliver receives an original (arity-1) packet from decoding. It is
// called for each raw packet in Decode's output: the arriving packet
// itself when it is raw, then each original the closure derives. The
// same original can be delivered again by a later arrival.
type Deliver func(p netcoding.Packet)

// Transport binds a UDP socket and drives one node's encode-or-decode
// path for every datagram it receives.
type Transport struct {
	conn   *net.UDPConn
	peer   *net.UDPAddr
	node   *netcoding.Node
	rng    netcoding.Rand
	log    *meshlog.Logger
	decode bool
	onRecv Deliver
}

// Options configures a Transport.
type Options struct {
	// Listen is the local UDP address to bind, e.g. ":9900".
	Listen string
	// Peer is the UDP address outbound packets are forwarded to.
	// When empty, the encode path's outbound packets are discarded.
	// Receivers never send, so it is ignored for them.
	Peer string
	// Node is the netcoding state this transport drives.
	Node *netcoding.Node
	// Rand is the encoder's PRNG collaborator.
	Rand netcoding.Rand
	// Decode, when true, runs the decode path (receiver role)
	// instead of the encode path (router/normal role).
	Decode bool
	// Deliver is called for each raw packet in Decode's output when
	// Decode is true. Ignored otherwise.
	Deliver Deliver
	Log     *meshlog.Logger
}

// Listen binds opts.Listen and returns a Transport ready to Run.
func Listen(opts Options) (*Transport, error) {
	laddr, err := net.ResolveUDPAddr("udp", opts.Listen)
	if err != nil {
		return nil, fmt.Errorf("meshnet: resolving listen address %q: %w", opts.Listen, err)
	}

	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, fmt.Errorf("meshnet: listening on %q: %w", opts.Listen, err)
	}

	var peer *net.UDPAddr
	if opts.Peer != "" {
		peer, err = net.ResolveUDPAddr("udp", opts.Peer)
		if err != nil {
			return nil, fmt.Errorf("meshnet: resolving peer address %q: %w", opts.Peer, err)
		}
	}

	return &Transport{
		conn:   conn,
		peer:   peer,
		node:   opts.Node,
		rng:    opts.Rand,
		log:    opts.Log,
		decode: opts.Decode,
		onRecv: opts.Deliver,
	}, nil
}

// Close releases the underlying socket.
func (t *Transport) Close() error {
	return t.conn.Close()
}

// Run reads datagrams until the connection is closed or ctx-like
// cancellation happens via Close, driving Encode or Decode for each
// one. It returns nil on a clean Close, any other read error
// otherwise.
func (t *Transport) Run() error {
	buf := make([]byte, netcoding.WireSize)
	for {
		n, _, err := t.conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("meshnet: read failed: %w", err)
		}
		if n != netcoding.WireSize || !netcoding.HasPreamble(buf[:n]) {
			continue // not a coded packet; ignore arbitrary traffic on this port
		}

		var pkt netcoding.Packet
		if err := pkt.UnmarshalBinary(buf[:n]); err != nil {
			continue
		}

		if t.decode {
			t.handleDecode(pkt)
		} else {
			t.handleEncode(pkt)
		}
	}
}

func (t *Transport) handleEncode(pkt netcoding.Packet) {
	out, err := netcoding.Encode(t.node, pkt, t.rng)
	if err != nil {
		t.logf("encode error: %v", err)
		return
	}
	for _, fwd := range out {
		if err := t.send(fwd); err != nil {
			t.logf("forward error: %v", err)
		}
	}
}

func (t *Transport) handleDecode(pkt netcoding.Packet) {
	recovered, err := netcoding.Decode(t.node, pkt)
	if err != nil {
		t.logf("decode error: %v", err)
	}
	for _, p := range recovered {
		if p.IsRaw() && t.onRecv != nil {
			t.onRecv(p)
		}
	}
}

func (t *Transport) send(p netcoding.Packet) error {
	if t.peer == nil {
		return nil
	}
	data, err := p.MarshalBinary()
	if err != nil {
		return fmt.Errorf("meshnet: marshaling packet: %w", err)
	}
	if _, err := t.conn.WriteToUDP(data, t.peer); err != nil {
		return fmt.Errorf("meshnet: writing to %v: %w", t.peer, err)
	}
	return nil
}

func (t *Transport) logf(format string, args ...any) {
	if t.log == nil {
		return
	}
	t.log.Errorf(format, args...)
}
