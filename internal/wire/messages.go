package wire

// PlayerState is the per-player body carried inside a GameState message.
type PlayerState struct {
	ID          uint32
	X, Y        float32
	Radius      float32
	IsDowned    bool
	DownedTimer uint8
	IsCursed    bool
	CursedTimer float32
}

func (p PlayerState) appendTo(buf []byte) []byte {
	buf = putUint32(buf, p.ID)
	buf = putFloat32(buf, p.X)
	buf = putFloat32(buf, p.Y)
	buf = putFloat32(buf, p.Radius)
	buf = append(buf, boolByte(p.IsDowned))
	buf = append(buf, p.DownedTimer)
	buf = append(buf, boolByte(p.IsCursed))
	buf = putFloat32(buf, p.CursedTimer)
	return buf
}

func decodePlayerState(b []byte) (PlayerState, []byte, error) {
	var p PlayerState
	var err error
	if p.ID, b, err = readUint32(b); err != nil {
		return p, b, err
	}
	if p.X, b, err = readFloat32(b); err != nil {
		return p, b, err
	}
	if p.Y, b, err = readFloat32(b); err != nil {
		return p, b, err
	}
	if p.Radius, b, err = readFloat32(b); err != nil {
		return p, b, err
	}
	if len(b) < 1 {
		return p, b, ErrShortBuffer
	}
	p.IsDowned, b = b[0] != 0, b[1:]
	if len(b) < 1 {
		return p, b, ErrShortBuffer
	}
	p.DownedTimer, b = b[0], b[1:]
	if len(b) < 1 {
		return p, b, ErrShortBuffer
	}
	p.IsCursed, b = b[0] != 0, b[1:]
	if p.CursedTimer, b, err = readFloat32(b); err != nil {
		return p, b, err
	}
	return p, b, nil
}

// EnemyState is the per-enemy body carried inside an EnemyUpdate
// message. Fields after Variant are an optional, forward-compatible
// tail: a decoder stops reading once the buffer is exhausted, and an
// encoder may omit any suffix of them for a variant that doesn't need
// it.
type EnemyState struct {
	ID      uint32
	X, Y    float32
	Radius  float32
	Variant uint8

	HasSpeed    bool
	Speed       float32
	MinSpeed    float32
	MaxSpeed    float32

	HasChangeProgress  bool
	ChangeProgress     float32
	IsSpeedIncreasing  bool

	HasHarmless     bool
	IsHarmless      bool
	HarmlessProgress float32

	HasAuraSize bool
	AuraSize    float32
}

func (e EnemyState) appendTo(buf []byte) []byte {
	buf = putUint32(buf, e.ID)
	buf = putFloat32(buf, e.X)
	buf = putFloat32(buf, e.Y)
	buf = putFloat32(buf, e.Radius)
	buf = append(buf, e.Variant)

	if e.HasSpeed {
		buf = putFloat32(buf, e.Speed)
		buf = putFloat32(buf, e.MinSpeed)
		buf = putFloat32(buf, e.MaxSpeed)
	}
	if e.HasChangeProgress {
		buf = putFloat32(buf, e.ChangeProgress)
		buf = append(buf, boolByte(e.IsSpeedIncreasing))
	}
	if e.HasHarmless {
		buf = append(buf, boolByte(e.IsHarmless))
		buf = putFloat32(buf, e.HarmlessProgress)
	}
	if e.HasAuraSize {
		buf = putFloat32(buf, e.AuraSize)
	}
	return buf
}

// decodeEnemyState parses the fixed head and then greedily consumes as
// much of the optional tail as remains in b, in wire order. Any field
// that would read past the end of b is simply left unset rather than
// erroring, matching the protocol's forward-compatible decoding rule.
func decodeEnemyState(b []byte) (EnemyState, []byte, error) {
	var e EnemyState
	var err error
	if e.ID, b, err = readUint32(b); err != nil {
		return e, b, err
	}
	if e.X, b, err = readFloat32(b); err != nil {
		return e, b, err
	}
	if e.Y, b, err = readFloat32(b); err != nil {
		return e, b, err
	}
	if e.Radius, b, err = readFloat32(b); err != nil {
		return e, b, err
	}
	if len(b) < 1 {
		return e, b, ErrShortBuffer
	}
	e.Variant, b = b[0], b[1:]

	if len(b) >= 12 {
		e.HasSpeed = true
		e.Speed, b, _ = readFloat32(b)
		e.MinSpeed, b, _ = readFloat32(b)
		e.MaxSpeed, b, _ = readFloat32(b)
	}
	if len(b) >= 5 {
		e.HasChangeProgress = true
		e.ChangeProgress, b, _ = readFloat32(b)
		e.IsSpeedIncreasing, b = b[0] != 0, b[1:]
	}
	if len(b) >= 5 {
		e.HasHarmless = true
		e.IsHarmless, b = b[0] != 0, b[1:]
		e.HarmlessProgress, b, _ = readFloat32(b)
	}
	if len(b) >= 4 {
		e.HasAuraSize = true
		e.AuraSize, b, _ = readFloat32(b)
	}
	return e, b, nil
}

func boolByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}

// --- Empty messages ---

// EncodePlayerConnect encodes a client→server connect request.
func EncodePlayerConnect(buf []byte) []byte { return append(buf, byte(MsgPlayerConnect)) }

// EncodePlayerDisconnect encodes a client→server disconnect notice.
func EncodePlayerDisconnect(buf []byte) []byte { return append(buf, byte(MsgPlayerDisconnect)) }

// EncodePing encodes a liveness probe.
func EncodePing(buf []byte) []byte { return append(buf, byte(MsgPing)) }

// EncodePong encodes a liveness probe reply.
func EncodePong(buf []byte) []byte { return append(buf, byte(MsgPong)) }

// --- GameState (S->C) ---

// EncodeGameState encodes the authoritative per-tick player snapshot.
func EncodeGameState(buf []byte, tick uint32, players []PlayerState) []byte {
	buf = append(buf, byte(MsgGameState))
	buf = putUint32(buf, tick)
	buf = putUint16(buf, uint16(len(players)))
	for _, p := range players {
		buf = p.appendTo(buf)
	}
	return buf
}

// GameState is the decoded body of a MsgGameState datagram (type byte
// already consumed by the caller).
type GameState struct {
	Tick    uint32
	Players []PlayerState
}

// DecodeGameState parses a GameState body (buffer must NOT include the
// leading type byte).
func DecodeGameState(b []byte) (GameState, error) {
	var gs GameState
	var err error
	if gs.Tick, b, err = readUint32(b); err != nil {
		return gs, err
	}
	var n uint16
	if n, b, err = readUint16(b); err != nil {
		return gs, err
	}
	gs.Players = make([]PlayerState, 0, n)
	for i := uint16(0); i < n; i++ {
		var p PlayerState
		if p, b, err = decodePlayerState(b); err != nil {
			return gs, err
		}
		gs.Players = append(gs.Players, p)
	}
	return gs, nil
}

// --- PlayerInput (C->S) ---

// PlayerInput is the decoded body of a MsgPlayerInput datagram.
type PlayerInput struct {
	Flags    uint8
	DirX     float32
	DirY     float32
	Distance float32
}

func (in PlayerInput) MoveUp() bool    { return in.Flags&InputMoveUp != 0 }
func (in PlayerInput) MoveDown() bool  { return in.Flags&InputMoveDown != 0 }
func (in PlayerInput) MoveLeft() bool  { return in.Flags&InputMoveLeft != 0 }
func (in PlayerInput) MoveRight() bool { return in.Flags&InputMoveRight != 0 }
func (in PlayerInput) MouseCtrl() bool { return in.Flags&InputMouseCtrl != 0 }
func (in PlayerInput) Shift() bool     { return in.Flags&InputShift != 0 }
func (in PlayerInput) JoyCtrl() bool   { return in.Flags&InputJoyCtrl != 0 }

// EncodePlayerInput encodes a client input sample.
func EncodePlayerInput(buf []byte, in PlayerInput) []byte {
	buf = append(buf, byte(MsgPlayerInput))
	buf = append(buf, in.Flags)
	if in.MouseCtrl() || in.JoyCtrl() {
		buf = putFloat32(buf, in.DirX)
		buf = putFloat32(buf, in.DirY)
		buf = putFloat32(buf, in.Distance)
	}
	return buf
}

// DecodePlayerInput parses a PlayerInput body.
func DecodePlayerInput(b []byte) (PlayerInput, error) {
	var in PlayerInput
	if len(b) < 1 {
		return in, ErrShortBuffer
	}
	in.Flags, b = b[0], b[1:]
	if in.MouseCtrl() || in.JoyCtrl() {
		var err error
		if in.DirX, b, err = readFloat32(b); err != nil {
			return in, err
		}
		if in.DirY, b, err = readFloat32(b); err != nil {
			return in, err
		}
		if in.Distance, b, err = readFloat32(b); err != nil {
			return in, err
		}
	}
	return in, nil
}

// --- MapData (S->C) ---

// EncodeMapData encodes a UTF-8 JSON map payload.
func EncodeMapData(buf []byte, mapJSON []byte) []byte {
	buf = append(buf, byte(MsgMapData))
	buf = putUint32(buf, uint32(len(mapJSON)))
	buf = append(buf, mapJSON...)
	return buf
}

// DecodeMapData parses a MapData body, returning the raw JSON bytes.
func DecodeMapData(b []byte) ([]byte, error) {
	length, b, err := readUint32(b)
	if err != nil {
		return nil, err
	}
	if uint32(len(b)) < length {
		return nil, ErrShortBuffer
	}
	return b[:length], nil
}

// --- PlayerTeleport (S->C) ---

// PlayerTeleport is the decoded body of a MsgPlayerTeleport datagram.
type PlayerTeleport struct {
	PlayerID uint32
	X, Y     float32
}

func EncodePlayerTeleport(buf []byte, t PlayerTeleport) []byte {
	buf = append(buf, byte(MsgPlayerTeleport))
	buf = putUint32(buf, t.PlayerID)
	buf = putFloat32(buf, t.X)
	buf = putFloat32(buf, t.Y)
	return buf
}

func DecodePlayerTeleport(b []byte) (PlayerTeleport, error) {
	var t PlayerTeleport
	var err error
	if t.PlayerID, b, err = readUint32(b); err != nil {
		return t, err
	}
	if t.X, b, err = readFloat32(b); err != nil {
		return t, err
	}
	if t.Y, _, err = readFloat32(b); err != nil {
		return t, err
	}
	return t, nil
}

// --- EnemyUpdate (S->C) ---

func EncodeEnemyUpdate(buf []byte, enemies []EnemyState) []byte {
	buf = append(buf, byte(MsgEnemyUpdate))
	buf = putUint16(buf, uint16(len(enemies)))
	for _, e := range enemies {
		buf = e.appendTo(buf)
	}
	return buf
}

// DecodeEnemyUpdate parses an EnemyUpdate body.
func DecodeEnemyUpdate(b []byte) ([]EnemyState, error) {
	n, b, err := readUint16(b)
	if err != nil {
		return nil, err
	}
	out := make([]EnemyState, 0, n)
	for i := uint16(0); i < n; i++ {
		var e EnemyState
		if e, b, err = decodeEnemyState(b); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// --- PlayerDowned (S->C) ---

type PlayerDowned struct {
	PlayerID        uint32
	IsDown          bool
	SecondsRemaining uint8
}

func EncodePlayerDowned(buf []byte, d PlayerDowned) []byte {
	buf = append(buf, byte(MsgPlayerDowned))
	buf = putUint32(buf, d.PlayerID)
	buf = append(buf, boolByte(d.IsDown))
	buf = append(buf, d.SecondsRemaining)
	return buf
}

func DecodePlayerDowned(b []byte) (PlayerDowned, error) {
	var d PlayerDowned
	var err error
	if d.PlayerID, b, err = readUint32(b); err != nil {
		return d, err
	}
	if len(b) < 2 {
		return d, ErrShortBuffer
	}
	d.IsDown = b[0] != 0
	d.SecondsRemaining = b[1]
	return d, nil
}

// --- PlayerCursed (S->C) ---

type PlayerCursed struct {
	PlayerID         uint32
	IsCursed         bool
	SecondsRemaining float32
}

func EncodePlayerCursed(buf []byte, c PlayerCursed) []byte {
	buf = append(buf, byte(MsgPlayerCursed))
	buf = putUint32(buf, c.PlayerID)
	buf = append(buf, boolByte(c.IsCursed))
	buf = putFloat32(buf, c.SecondsRemaining)
	return buf
}

func DecodePlayerCursed(b []byte) (PlayerCursed, error) {
	var c PlayerCursed
	var err error
	if c.PlayerID, b, err = readUint32(b); err != nil {
		return c, err
	}
	if len(b) < 1 {
		return c, ErrShortBuffer
	}
	c.IsCursed, b = b[0] != 0, b[1:]
	if c.SecondsRemaining, _, err = readFloat32(b); err != nil {
		return c, err
	}
	return c, nil
}

// --- ResetPosition (C->S) ---

// EncodeResetPosition encodes a client request to reset to a safe spawn.
func EncodeResetPosition(buf []byte, playerID uint32) []byte {
	buf = append(buf, byte(MsgResetPosition))
	buf = putUint32(buf, playerID)
	return buf
}

// DecodeResetPosition parses a ResetPosition body.
func DecodeResetPosition(b []byte) (uint32, error) {
	id, _, err := readUint32(b)
	return id, err
}
