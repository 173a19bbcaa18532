package meshnet

import (
	"bytes"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/doismellburning/netcoding/internal/meshlog"
	"github.com/doismellburning/netcoding/internal/netcoding"
)

type fixedRand struct{ v int }

func (r fixedRand) Intn(n int) int { return r.v }

func startTransport(t *testing.T, opts Options) (*Transport, *net.UDPAddr) {
	t.Helper()
	opts.Listen = "127.0.0.1:0"
	if opts.Log == nil {
		opts.Log = meshlog.New(&bytes.Buffer{}, opts.Node.ID, opts.Node.Role.String())
	}
	tr, err := Listen(opts)
	assert.NoError(t, err)
	t.Cleanup(func() { tr.Close() })
	go func() { _ = tr.Run() }()
	return tr, tr.conn.LocalAddr().(*net.UDPAddr)
}

func sendPacket(t *testing.T, to *net.UDPAddr, p netcoding.Packet) {
	t.Helper()
	conn, err := net.DialUDP("udp", nil, to)
	assert.NoError(t, err)
	defer conn.Close()
	data, err := p.MarshalBinary()
	assert.NoError(t, err)
	_, err = conn.Write(data)
	assert.NoError(t, err)
}

func Test_Transport_routerForwardsPassThrough(t *testing.T) {
	// A prob-0 node's encode path is the identity, so whatever lands on
	// the router's socket should come out the peer side untouched.
	sink, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	assert.NoError(t, err)
	defer sink.Close()

	node := netcoding.NewNode(1, netcoding.RoleNormal, 0)
	_, addr := startTransport(t, Options{
		Peer: sink.LocalAddr().String(),
		Node: node,
		Rand: fixedRand{v: 99},
	})

	sent := netcoding.NewPacket(7, "hello")
	sendPacket(t, addr, sent)

	assert.NoError(t, sink.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, netcoding.WireSize)
	n, _, err := sink.ReadFromUDP(buf)
	assert.NoError(t, err)

	var got netcoding.Packet
	assert.NoError(t, got.UnmarshalBinary(buf[:n]))
	assert.Equal(t, sent, got)
}

func Test_Transport_receiverDeliversRecoveredOriginal(t *testing.T) {
	node := netcoding.NewNode(2, netcoding.RoleReceiver, 0)
	recovered := make(chan netcoding.Packet, 4)

	_, addr := startTransport(t, Options{
		Node:    node,
		Decode:  true,
		Deliver: func(p netcoding.Packet) { recovered <- p },
	})

	a := netcoding.NewPacket(7, "aaa")
	b := netcoding.NewPacket(9, "bbb")

	// First the combined packet, then one of its halves: decoding the
	// half against the held combination should give back the other half.
	sendPacket(t, addr, netcoding.Combine(a, b))
	sendPacket(t, addr, b)

	var got []netcoding.Packet
	timeout := time.After(2 * time.Second)
	for len(got) < 2 {
		select {
		case p := <-recovered:
			got = append(got, p)
		case <-timeout:
			t.Fatalf("timed out after %d deliveries", len(got))
		}
	}

	// The seed b arrives first, then the recovered a.
	assert.Equal(t, b, got[0])
	assert.True(t, netcoding.Equivalent(got[1].Header, a.Header))
	assert.Equal(t, a.Body, got[1].Body)
}

func Test_Transport_ignoresNonCodedTraffic(t *testing.T) {
	sink, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	assert.NoError(t, err)
	defer sink.Close()

	node := netcoding.NewNode(3, netcoding.RoleNormal, 0)
	_, addr := startTransport(t, Options{
		Peer: sink.LocalAddr().String(),
		Node: node,
		Rand: fixedRand{v: 99},
	})

	conn, err := net.DialUDP("udp", nil, addr)
	assert.NoError(t, err)
	defer conn.Close()
	_, err = conn.Write([]byte("not a coded packet"))
	assert.NoError(t, err)

	// Then a real packet, which should still flow; the junk datagram
	// must not have wedged the receive loop.
	sent := netcoding.NewPacket(11, "after junk")
	sendPacket(t, addr, sent)

	assert.NoError(t, sink.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, netcoding.WireSize)
	n, _, err := sink.ReadFromUDP(buf)
	assert.NoError(t, err)

	var got netcoding.Packet
	assert.NoError(t, got.UnmarshalBinary(buf[:n]))
	assert.Equal(t, sent, got)
}
