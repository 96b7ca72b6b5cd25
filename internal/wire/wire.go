// Package wire implements Eluding's UDP binary protocol: 12 fixed-layout,
// length-free message kinds, little-endian throughout. Each kind has an
// Encode function that appends to a caller-supplied buffer, and each kind
// with a body has a Decode function that parses a received datagram,
// following the same
// encoding/binary field-by-field idiom the reference server uses for its
// framed IPC messages, applied here directly to UDP payloads instead of
// a length-prefixed frame.
package wire

import (
	"encoding/binary"
	"fmt"
	"math"
)

// MessageType tags the first byte of every datagram.
type MessageType uint8

const (
	MsgPlayerConnect    MessageType = 0
	MsgPlayerDisconnect MessageType = 1
	MsgGameState        MessageType = 2
	MsgPlayerInput      MessageType = 3
	MsgPing             MessageType = 4
	MsgPong             MessageType = 5
	MsgMapData          MessageType = 6
	MsgPlayerTeleport   MessageType = 7
	MsgEnemyUpdate      MessageType = 8
	MsgPlayerDowned     MessageType = 9
	MsgPlayerCursed     MessageType = 10
	MsgResetPosition    MessageType = 11
)

func (m MessageType) String() string {
	switch m {
	case MsgPlayerConnect:
		return "PlayerConnect"
	case MsgPlayerDisconnect:
		return "PlayerDisconnect"
	case MsgGameState:
		return "GameState"
	case MsgPlayerInput:
		return "PlayerInput"
	case MsgPing:
		return "Ping"
	case MsgPong:
		return "Pong"
	case MsgMapData:
		return "MapData"
	case MsgPlayerTeleport:
		return "PlayerTeleport"
	case MsgEnemyUpdate:
		return "EnemyUpdate"
	case MsgPlayerDowned:
		return "PlayerDowned"
	case MsgPlayerCursed:
		return "PlayerCursed"
	case MsgResetPosition:
		return "ResetPosition"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(m))
	}
}

// PlayerInput bitfield flags.
const (
	InputMoveUp    uint8 = 1 << 0
	InputMoveDown  uint8 = 1 << 1
	InputMoveLeft  uint8 = 1 << 2
	InputMoveRight uint8 = 1 << 3
	InputMouseCtrl uint8 = 1 << 4
	InputShift     uint8 = 1 << 5
	InputJoyCtrl   uint8 = 1 << 6
)

// ErrShortBuffer is returned by every Decode function when the supplied
// buffer ends before a required field.
var ErrShortBuffer = fmt.Errorf("wire: buffer too short")

func putFloat32(buf []byte, v float32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], math.Float32bits(v))
	return append(buf, b[:]...)
}

func readFloat32(b []byte) (float32, []byte, error) {
	if len(b) < 4 {
		return 0, b, ErrShortBuffer
	}
	v := math.Float32frombits(binary.LittleEndian.Uint32(b[:4]))
	return v, b[4:], nil
}

func putUint32(buf []byte, v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return append(buf, b[:]...)
}

func readUint32(b []byte) (uint32, []byte, error) {
	if len(b) < 4 {
		return 0, b, ErrShortBuffer
	}
	return binary.LittleEndian.Uint32(b[:4]), b[4:], nil
}

func putUint16(buf []byte, v uint16) []byte {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	return append(buf, b[:]...)
}

func readUint16(b []byte) (uint16, []byte, error) {
	if len(b) < 2 {
		return 0, b, ErrShortBuffer
	}
	return binary.LittleEndian.Uint16(b[:2]), b[2:], nil
}

// PeekType returns the message kind at the front of a received
// datagram without consuming it.
func PeekType(buf []byte) (MessageType, error) {
	if len(buf) < 1 {
		return 0, ErrShortBuffer
	}
	return MessageType(buf[0]), nil
}
