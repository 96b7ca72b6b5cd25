package transport

import (
	"log"
	"net"
	"testing"
	"time"

	"github.com/e3zYyr7QdaQMi0bvZLhTw/Eluding/internal/config"
	"github.com/e3zYyr7QdaQMi0bvZLhTw/Eluding/internal/mapdata"
	"github.com/e3zYyr7QdaQMi0bvZLhTw/Eluding/internal/sim"
	"github.com/e3zYyr7QdaQMi0bvZLhTw/Eluding/internal/wire"
)

func testWorld() *mapdata.Map {
	return &mapdata.Map{
		Friction: 1,
		Areas: []mapdata.Area{
			{
				X: 0, Y: 0, Width: 500, Height: 500,
				Zones: []mapdata.Zone{
					{Type: mapdata.Safe, X: 0, Y: 0, Width: 500, Height: 500},
				},
			},
		},
	}
}

func newLoopbackPair(t *testing.T) (*Transport, *net.UDPConn) {
	t.Helper()
	serverConn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("listen server: %v", err)
	}
	clientConn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("listen client: %v", err)
	}
	s := sim.New(testWorld(), config.DefaultLimits(), 1)
	tr := New(serverConn, s, log.New(new(discard), "", 0))
	t.Cleanup(func() {
		serverConn.Close()
		clientConn.Close()
	})
	return tr, clientConn
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func TestConnectRepliesWithMapDataThenGameState(t *testing.T) {
	tr, client := newLoopbackPair(t)
	tr.sim.SetMapJSON([]byte(`{"name":"test"}`))

	serverAddr := tr.conn.LocalAddr().(*net.UDPAddr)
	if _, err := client.WriteToUDP(wire.EncodePlayerConnect(nil), serverAddr); err != nil {
		t.Fatalf("send connect: %v", err)
	}

	tr.drainUntilIdle(t)

	client.SetReadDeadline(time.Now().Add(time.Second))
	buf := make([]byte, maxDatagramSize)

	n, _, err := client.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("read first reply: %v", err)
	}
	kind, err := wire.PeekType(buf[:n])
	if err != nil || kind != wire.MsgMapData {
		t.Fatalf("expected MapData first, got %v (err=%v)", kind, err)
	}

	n, _, err = client.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("read second reply: %v", err)
	}
	kind, err = wire.PeekType(buf[:n])
	if err != nil || kind != wire.MsgGameState {
		t.Fatalf("expected GameState second, got %v (err=%v)", kind, err)
	}
	gs, err := wire.DecodeGameState(buf[1:n])
	if err != nil {
		t.Fatalf("decode game state: %v", err)
	}
	if len(gs.Players) != 1 {
		t.Fatalf("expected exactly one player in the initial snapshot, got %d", len(gs.Players))
	}
	if gs.Players[0].Radius != 15 {
		t.Errorf("expected spawn radius 15, got %v", gs.Players[0].Radius)
	}
}

func TestInputIsRoutedBySourceAddress(t *testing.T) {
	tr, client := newLoopbackPair(t)
	serverAddr := tr.conn.LocalAddr().(*net.UDPAddr)

	client.WriteToUDP(wire.EncodePlayerConnect(nil), serverAddr)
	tr.drainUntilIdle(t)

	in := wire.PlayerInput{Flags: wire.InputMoveRight}
	client.WriteToUDP(wire.EncodePlayerInput(nil, in), serverAddr)
	tr.drainUntilIdle(t)

	if len(tr.addrToID) != 1 {
		t.Fatalf("expected exactly one address mapped to a client ID, got %d", len(tr.addrToID))
	}

	var before, after float32
	snapBefore := tr.sim.Tick(0) // flush pending queues without moving (dt=0)
	if len(snapBefore.Players) == 1 {
		before = snapBefore.Players[0].X
	}
	snapAfter := tr.sim.Tick(1.0 / 240.0)
	if len(snapAfter.Players) == 1 {
		after = snapAfter.Players[0].X
	}
	if after <= before {
		t.Errorf("expected move-right input to increase X (before=%v, after=%v)", before, after)
	}
}

// drainUntilIdle repeatedly calls Drain, giving the OS loopback a
// moment to deliver the just-sent datagram before the first drain.
func (t *Transport) drainUntilIdle(tb *testing.T) {
	tb.Helper()
	time.Sleep(20 * time.Millisecond)
	t.Drain()
}
