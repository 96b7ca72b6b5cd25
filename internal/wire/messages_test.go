package wire

import "testing"

func TestGameStateRoundTrip(t *testing.T) {
	players := []PlayerState{
		{ID: 1, X: 10.5, Y: -3.25, Radius: 12, IsDowned: false, IsCursed: true, CursedTimer: 4.5},
		{ID: 2, X: 0, Y: 0, Radius: 12, IsDowned: true, DownedTimer: 7},
	}
	buf := EncodeGameState(nil, 42, players)

	typ, err := PeekType(buf)
	if err != nil || typ != MsgGameState {
		t.Fatalf("expected MsgGameState, got %v (err %v)", typ, err)
	}

	gs, err := DecodeGameState(buf[1:])
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if gs.Tick != 42 {
		t.Errorf("expected tick 42, got %d", gs.Tick)
	}
	if len(gs.Players) != 2 {
		t.Fatalf("expected 2 players, got %d", len(gs.Players))
	}
	if gs.Players[0] != players[0] {
		t.Errorf("player 0 mismatch: got %+v want %+v", gs.Players[0], players[0])
	}
	if gs.Players[1] != players[1] {
		t.Errorf("player 1 mismatch: got %+v want %+v", gs.Players[1], players[1])
	}
}

func TestPlayerInputRoundTripNoAxes(t *testing.T) {
	in := PlayerInput{Flags: InputMoveUp | InputMoveRight}
	buf := EncodePlayerInput(nil, in)

	got, err := DecodePlayerInput(buf[1:])
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !got.MoveUp() || !got.MoveRight() || got.MoveDown() {
		t.Errorf("unexpected flags: %+v", got)
	}
}

func TestPlayerInputRoundTripWithMouse(t *testing.T) {
	in := PlayerInput{Flags: InputMouseCtrl, DirX: 0.707, DirY: -0.707, Distance: 0.9}
	buf := EncodePlayerInput(nil, in)

	got, err := DecodePlayerInput(buf[1:])
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !got.MouseCtrl() {
		t.Fatal("expected mouseCtrl flag set")
	}
	if got.DirX != in.DirX || got.DirY != in.DirY || got.Distance != in.Distance {
		t.Errorf("axis mismatch: got %+v want %+v", got, in)
	}
}

func TestEnemyUpdateRoundTripFullTail(t *testing.T) {
	enemies := []EnemyState{
		{
			ID: 7, X: 1, Y: 2, Radius: 14, Variant: 3,
			HasSpeed: true, Speed: 80, MinSpeed: 60, MaxSpeed: 120,
			HasChangeProgress: true, ChangeProgress: 0.5, IsSpeedIncreasing: true,
			HasHarmless: true, IsHarmless: true, HarmlessProgress: 0.25,
			HasAuraSize: true, AuraSize: 150,
		},
	}
	buf := EncodeEnemyUpdate(nil, enemies)

	got, err := DecodeEnemyUpdate(buf[1:])
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 enemy, got %d", len(got))
	}
	if got[0] != enemies[0] {
		t.Errorf("enemy mismatch: got %+v want %+v", got[0], enemies[0])
	}
}

func TestEnemyUpdateForwardCompatibleShortTail(t *testing.T) {
	// Only the fixed head + variant, no optional fields at all (an older
	// encoder's output, or a variant that needs none of the tail).
	e := EnemyState{ID: 9, X: 5, Y: 6, Radius: 10, Variant: 0}
	buf := EncodeEnemyUpdate(nil, []EnemyState{e})

	got, err := DecodeEnemyUpdate(buf[1:])
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got[0].HasSpeed || got[0].HasChangeProgress || got[0].HasHarmless || got[0].HasAuraSize {
		t.Errorf("expected no optional fields set, got %+v", got[0])
	}
	if got[0].ID != 9 || got[0].X != 5 || got[0].Variant != 0 {
		t.Errorf("fixed head mismatch: %+v", got[0])
	}
}

func TestMapDataRoundTrip(t *testing.T) {
	payload := []byte(`{"name":"test"}`)
	buf := EncodeMapData(nil, payload)

	got, err := DecodeMapData(buf[1:])
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("payload mismatch: got %q want %q", got, payload)
	}
}

func TestPlayerTeleportRoundTrip(t *testing.T) {
	want := PlayerTeleport{PlayerID: 3, X: 100.25, Y: -50.5}
	buf := EncodePlayerTeleport(nil, want)

	got, err := DecodePlayerTeleport(buf[1:])
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got != want {
		t.Errorf("got %+v want %+v", got, want)
	}
}

func TestPlayerDownedRoundTrip(t *testing.T) {
	want := PlayerDowned{PlayerID: 5, IsDown: true, SecondsRemaining: 8}
	buf := EncodePlayerDowned(nil, want)

	got, err := DecodePlayerDowned(buf[1:])
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got != want {
		t.Errorf("got %+v want %+v", got, want)
	}
}

func TestPlayerCursedRoundTrip(t *testing.T) {
	want := PlayerCursed{PlayerID: 6, IsCursed: true, SecondsRemaining: 12.5}
	buf := EncodePlayerCursed(nil, want)

	got, err := DecodePlayerCursed(buf[1:])
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got != want {
		t.Errorf("got %+v want %+v", got, want)
	}
}

func TestResetPositionRoundTrip(t *testing.T) {
	buf := EncodeResetPosition(nil, 99)

	got, err := DecodeResetPosition(buf[1:])
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got != 99 {
		t.Errorf("got %d want 99", got)
	}
}

func TestEmptyMessagesHaveTypeByteOnly(t *testing.T) {
	cases := []struct {
		name string
		buf  []byte
		want MessageType
	}{
		{"connect", EncodePlayerConnect(nil), MsgPlayerConnect},
		{"disconnect", EncodePlayerDisconnect(nil), MsgPlayerDisconnect},
		{"ping", EncodePing(nil), MsgPing},
		{"pong", EncodePong(nil), MsgPong},
	}
	for _, c := range cases {
		if len(c.buf) != 1 {
			t.Errorf("%s: expected 1-byte datagram, got %d bytes", c.name, len(c.buf))
		}
		typ, err := PeekType(c.buf)
		if err != nil || typ != c.want {
			t.Errorf("%s: expected type %v, got %v (err %v)", c.name, c.want, typ, err)
		}
	}
}

func TestPeekTypeShortBuffer(t *testing.T) {
	if _, err := PeekType(nil); err != ErrShortBuffer {
		t.Errorf("expected ErrShortBuffer, got %v", err)
	}
}
