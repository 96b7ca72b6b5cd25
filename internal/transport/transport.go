// Package transport implements Eluding's UDP front end: a non-blocking
// datagram drain feeding the simulation's session-management calls, and
// a broadcast step that serializes a Simulation snapshot back out to
// every connected peer address. Grounded in the reference server's
// own ReadFromUDP/WriteToUDP networking loop (see DESIGN.md), adapted
// from that server's length-prefixed gob frames to this protocol's
// fixed-layout, length-free messages.
package transport

import (
	"log"
	"net"
	"time"

	"github.com/e3zYyr7QdaQMi0bvZLhTw/Eluding/internal/sim"
	"github.com/e3zYyr7QdaQMi0bvZLhTw/Eluding/internal/wire"
)

// maxDatagramSize is large enough for the biggest fixed message
// (GameState/EnemyUpdate with a full roster); 65507 is the largest
// UDP payload over IPv4, well above a typical path MTU. A single recv
// buffer is reused across reads.
const maxDatagramSize = 65507

// Transport owns the UDP socket and the address<->client-ID mapping
// the wire protocol needs (PlayerInput carries no ID of its own — the
// sender is identified purely by source address, matching the
// protocol table in spec.md §4.3).
type Transport struct {
	conn *net.UDPConn
	sim  *sim.Simulation
	log  *log.Logger

	recvBuf  []byte
	sendBuf  []byte
	addrToID map[string]uint32
}

// Listen opens the UDP socket on port (all interfaces).
func Listen(port int) (*net.UDPConn, error) {
	addr := &net.UDPAddr{Port: port}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// New wraps an already-open UDP socket.
func New(conn *net.UDPConn, simulation *sim.Simulation, logger *log.Logger) *Transport {
	if logger == nil {
		logger = log.Default()
	}
	return &Transport{
		conn:     conn,
		sim:      simulation,
		log:      logger,
		recvBuf:  make([]byte, maxDatagramSize),
		sendBuf:  make([]byte, 0, maxDatagramSize),
		addrToID: make(map[string]uint32),
	}
}

// Drain implements spec step 1: read every datagram currently queued
// on the socket, dispatching each by MessageType, then return as soon
// as the socket has nothing left to offer. Never blocks the tick loop
// waiting for a packet that hasn't arrived.
func (t *Transport) Drain() {
	for {
		t.conn.SetReadDeadline(time.Now())
		n, addr, err := t.conn.ReadFromUDP(t.recvBuf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				return
			}
			return
		}
		t.handleDatagram(t.recvBuf[:n], addr)
	}
}

func (t *Transport) handleDatagram(data []byte, addr *net.UDPAddr) {
	kind, err := wire.PeekType(data)
	if err != nil {
		return
	}
	body := data[1:]
	now := time.Now()

	switch kind {
	case wire.MsgPlayerConnect:
		t.handleConnect(addr, now)

	case wire.MsgPlayerDisconnect:
		if id, ok := t.addrToID[addr.String()]; ok {
			t.sim.Disconnect(id)
			delete(t.addrToID, addr.String())
		}

	case wire.MsgPlayerInput:
		id, ok := t.addrToID[addr.String()]
		if !ok {
			return
		}
		in, err := wire.DecodePlayerInput(body)
		if err != nil {
			return
		}
		t.sim.HandleInput(id, in, now)

	case wire.MsgResetPosition:
		id, ok := t.addrToID[addr.String()]
		if !ok {
			return
		}
		t.sim.ResetPosition(id)

	case wire.MsgPing:
		if id, ok := t.addrToID[addr.String()]; ok {
			t.sim.Touch(id, now)
		}
		t.send(wire.EncodePong(t.sendBuf[:0]), addr)

	default:
		// Unknown or server->client-only message kind arriving from a
		// client; ignore rather than error, matching the protocol's
		// forward-compatible stance.
	}
}

// handleConnect admits a new client and replies with MapData followed
// by an initial GameState containing exactly that client, per spec
// §6 ("the server responds with MapData then GameState").
func (t *Transport) handleConnect(addr *net.UDPAddr, now time.Time) {
	c, err := t.sim.Connect(addr, now)
	if err != nil {
		t.log.Printf("transport: reject connect from %s: %v", addr, err)
		return
	}
	t.addrToID[addr.String()] = c.ID

	if mapJSON := t.sim.MapJSON(); len(mapJSON) > 0 {
		t.send(wire.EncodeMapData(t.sendBuf[:0], mapJSON), addr)
	}
	t.send(wire.EncodeGameState(t.sendBuf[:0], 0, []wire.PlayerState{c.ToWire()}), addr)
}

func (t *Transport) send(buf []byte, addr *net.UDPAddr) {
	if _, err := t.conn.WriteToUDP(buf, addr); err != nil {
		t.log.Printf("transport: write to %s failed: %v", addr, err)
	}
}

// Broadcast implements spec step 8: send the tick's GameState and
// EnemyUpdate to every connected peer, plus any Downed/Cursed/Teleport
// notices the tick produced.
func (t *Transport) Broadcast(snap sim.Snapshot) {
	addrs := t.sim.ClientAddrs()
	if len(addrs) == 0 {
		return
	}

	gameState := wire.EncodeGameState(nil, uint32(snap.Tick), snap.Players)
	var enemyUpdate []byte
	if len(snap.Enemies) > 0 {
		enemyUpdate = wire.EncodeEnemyUpdate(nil, snap.Enemies)
	}

	for _, addr := range addrs {
		if addr == nil {
			continue
		}
		t.send(append(t.sendBuf[:0], gameState...), addr)
		if enemyUpdate != nil {
			t.send(append(t.sendBuf[:0], enemyUpdate...), addr)
		}
		for _, d := range snap.Downed {
			t.send(wire.EncodePlayerDowned(t.sendBuf[:0], d), addr)
		}
		for _, c := range snap.Cursed {
			t.send(wire.EncodePlayerCursed(t.sendBuf[:0], c), addr)
		}
		for _, tp := range snap.Teleports {
			t.send(wire.EncodePlayerTeleport(t.sendBuf[:0], tp), addr)
		}
	}
}
