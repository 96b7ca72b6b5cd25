package mapdata

import "testing"

const sampleMapJSON = `{
  "name": "test-map",
  "properties": {
    "background_color": [10, 20, 30],
    "friction": 0.85
  },
  "areas": [
    {
      "x": 0,
      "y": 0,
      "zones": [
        {"type": "safe", "x": 0, "y": 0, "width": 100, "height": 100,
         "properties": {"minimum_speed": 2.5}},
        {"type": "active", "x": "last_right", "y": "last_y", "width": 200, "height": "last_height",
         "spawner": [{"radius": 12, "speed": 120, "count": 3, "types": ["normal", "wall"]}]},
        {"type": "blocked", "x": 0, "y": "last_bottom", "width": "last_width", "height": 50}
      ]
    },
    {
      "x": "last_right",
      "y": 0,
      "zones": [
        {"type": "exit", "x": 0, "y": 0, "width": 50, "height": 50,
         "translate": {"x": 1000, "y": 1000}}
      ]
    }
  ]
}`

func TestParseResolvesRelativeTokens(t *testing.T) {
	m, err := Parse([]byte(sampleMapJSON))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if m.Name != "test-map" {
		t.Errorf("expected name test-map, got %q", m.Name)
	}
	if m.BackgroundColor != [4]float64{10, 20, 30, 255} {
		t.Errorf("unexpected background color %v", m.BackgroundColor)
	}
	if len(m.Areas) != 2 {
		t.Fatalf("expected 2 areas, got %d", len(m.Areas))
	}

	area0 := m.Areas[0]
	if len(area0.Zones) != 3 {
		t.Fatalf("expected 3 zones in area 0, got %d", len(area0.Zones))
	}

	safe := area0.Zones[0]
	active := area0.Zones[1]
	blocked := area0.Zones[2]

	// active.x should resolve to safe's right edge (0+100=100)
	if active.X != 100 {
		t.Errorf("expected active zone x=100 (last_right of safe), got %v", active.X)
	}
	// active.y should resolve to safe's y (0)
	if active.Y != 0 {
		t.Errorf("expected active zone y=0 (last_y of safe), got %v", active.Y)
	}
	// active.height should resolve to safe's height (100)
	if active.Height != 100 {
		t.Errorf("expected active zone height=100 (last_height of safe), got %v", active.Height)
	}

	// blocked.y should resolve to active's bottom (0+100=100)
	if blocked.Y != 100 {
		t.Errorf("expected blocked zone y=100 (last_bottom of active), got %v", blocked.Y)
	}
	// blocked.width should resolve to active's width (200)
	if blocked.Width != 200 {
		t.Errorf("expected blocked zone width=200 (last_width of active), got %v", blocked.Width)
	}

	if !safe.HasMinimumSpeed || safe.MinimumSpeed != 2.5 {
		t.Errorf("expected safe zone minimum_speed 2.5, got %v/%v", safe.HasMinimumSpeed, safe.MinimumSpeed)
	}

	if len(active.Spawners) != 1 {
		t.Fatalf("expected 1 spawner on active zone, got %d", len(active.Spawners))
	}
	sp := active.Spawners[0]
	if !sp.HasFixedSpeed {
		t.Fatal("expected fixed speed spawner")
	}
	wantSpeed := 120.0 / globalSpeedRetune
	if sp.Speed != wantSpeed {
		t.Errorf("expected spawner speed retuned to %v, got %v", wantSpeed, sp.Speed)
	}
	if sp.Count != 3 || len(sp.Types) != 2 {
		t.Errorf("unexpected spawner count/types: %+v", sp)
	}

	// area1.x should resolve to area0's right edge.
	area1 := m.Areas[1]
	wantAreaX := area0.X + area0.Width
	if area1.X != wantAreaX {
		t.Errorf("expected area 1 x=%v (last_right of area 0), got %v", wantAreaX, area1.X)
	}

	exit := area1.Zones[0]
	if !exit.HasTranslate || exit.Translate.X != 1000 || exit.Translate.Y != 1000 {
		t.Errorf("expected exit zone translate (1000,1000), got %+v", exit.Translate)
	}
}

func TestParseLegacySpawnersAlias(t *testing.T) {
	doc := `{
		"name": "legacy",
		"properties": {"background_color": [0,0,0], "friction": 1},
		"areas": [{
			"x": 0, "y": 0,
			"zones": [{"type": "active", "x": 0, "y": 0, "width": 10, "height": 10,
				"spawners": [{"radius": 5, "min_speed": 60, "max_speed": 120, "count": 1, "types": ["normal"]}]}]
		}]
	}`
	m, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	sp := m.Areas[0].Zones[0].Spawners[0]
	if sp.HasFixedSpeed {
		t.Fatal("expected ranged-speed spawner, not fixed")
	}
	if sp.MinSpeed != 60/globalSpeedRetune || sp.MaxSpeed != 120/globalSpeedRetune {
		t.Errorf("expected retuned min/max speed, got %v/%v", sp.MinSpeed, sp.MaxSpeed)
	}
}

func TestParseUnknownTokenErrors(t *testing.T) {
	doc := `{"name":"bad","properties":{"background_color":[0,0,0],"friction":1},
		"areas":[{"x":0,"y":0,"zones":[{"type":"safe","x":"nonsense","y":0,"width":1,"height":1}]}]}`
	if _, err := Parse([]byte(doc)); err == nil {
		t.Fatal("expected error for unknown position token")
	}
}

func TestParseUnknownZoneTypeErrors(t *testing.T) {
	doc := `{"name":"bad","properties":{"background_color":[0,0,0],"friction":1},
		"areas":[{"x":0,"y":0,"zones":[{"type":"lava","x":0,"y":0,"width":1,"height":1}]}]}`
	if _, err := Parse([]byte(doc)); err == nil {
		t.Fatal("expected error for unknown zone type")
	}
}
