package netcoding

import (
	"encoding/binary"
	"fmt"
)

/*------------------------------------------------------------------
 *
 * Purpose:	The coded packet itself: construction, the raw/combined
 *		predicate, payload XOR, and the byte-exact wire layout
 *		existing peers expect.
 *
 *------------------------------------------------------------------*/

const (
	// PayloadSize is the fixed payload block size.
	PayloadSize = 30

	// Preamble distinguishes coded packets from arbitrary traffic at
	// the UDP boundary. It is transmitted with no terminator.
	Preamble = "preambulo"

	invalidMarker = "INVALID"
)

// WireSize is the fixed total size of a packet on the wire: preamble,
// then K little-endian uint32 header slots, then the payload.
const WireSize = len(Preamble) + K*4 + PayloadSize

// Packet is a (preamble, header, payload) triple. The preamble is not
// stored on the Go value; it is implicit and only appears in the wire
// encoding, a boundary marker rather than application state.
type Packet struct {
	Header Header
	Body   [PayloadSize]byte
}

// NewPacket builds a raw (arity-1) packet carrying message. Messages
// that do not fit in PayloadSize are replaced with the INVALID marker
// body; the header remains valid.
func NewPacket(id uint32, message string) Packet {
	var body [PayloadSize]byte
	if len(message) > PayloadSize {
		copy(body[:], invalidMarker)
	} else {
		copy(body[:], message)
	}
	return Packet{Header: NewHeader(id), Body: body}
}

// IsRaw reports whether p is an original (arity-1) packet.
func (p Packet) IsRaw() bool {
	return p.Header.Arity() == 1
}

// xorPayload is the element-wise XOR of two payload blocks.
func xorPayload(a, b [PayloadSize]byte) [PayloadSize]byte {
	var out [PayloadSize]byte
	for i := range out {
		out[i] = a[i] ^ b[i]
	}
	return out
}

// Combine XOR-merges two packets the caller has already verified Fit
// for; see Merge for the header half of the contract.
func Combine(p, q Packet) Packet {
	return Packet{
		Header: Merge(p.Header, q.Header),
		Body:   xorPayload(p.Body, q.Body),
	}
}

func (p Packet) String() string {
	return fmt.Sprintf("Header: %s, Body: %q", p.Header, trimNulls(p.Body[:]))
}

func trimNulls(b []byte) []byte {
	i := len(b)
	for i > 0 && b[i-1] == 0 {
		i--
	}
	return b[:i]
}

// MarshalBinary renders p in the byte-exact on-wire layout: the ASCII
// preamble (no terminator), K little-endian uint32 header slots, then
// the payload. Implementations MUST match this layout to interoperate
// with existing peers.
func (p Packet) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 0, WireSize)
	buf = append(buf, []byte(Preamble)...)
	for _, id := range p.Header {
		buf = binary.LittleEndian.AppendUint32(buf, id)
	}
	buf = append(buf, p.Body[:]...)
	return buf, nil
}

// UnmarshalBinary parses the byte-exact on-wire layout written by
// MarshalBinary. It returns an error if data is not exactly WireSize
// bytes or does not carry the expected preamble.
func (p *Packet) UnmarshalBinary(data []byte) error {
	if len(data) != WireSize {
		return fmt.Errorf("netcoding: wire packet must be %d bytes, got %d", WireSize, len(data))
	}
	if string(data[:len(Preamble)]) != Preamble {
		return fmt.Errorf("netcoding: missing preamble %q", Preamble)
	}
	off := len(Preamble)
	for i := 0; i < K; i++ {
		p.Header[i] = binary.LittleEndian.Uint32(data[off : off+4])
		off += 4
	}
	copy(p.Body[:], data[off:off+PayloadSize])
	return nil
}

// HasPreamble reports whether data begins with the coded-packet
// marker, distinguishing coded traffic from arbitrary datagrams at
// the UDP boundary.
func HasPreamble(data []byte) bool {
	return len(data) >= len(Preamble) && string(data[:len(Preamble)]) == Preamble
}
