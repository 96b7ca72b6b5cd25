package mapdata

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/e3zYyr7QdaQMi0bvZLhTw/Eluding/internal/geom"
)

// globalSpeedRetune is applied once to every spawner speed value on
// load (spec §6: "Speeds in the JSON are divided by 1.20 on load").
const globalSpeedRetune = 1.20

type rawMap struct {
	Name       string `json:"name"`
	Properties struct {
		BackgroundColor []float64 `json:"background_color"`
		Friction        float64   `json:"friction"`
	} `json:"properties"`
	Areas []rawArea `json:"areas"`
}

type rawArea struct {
	X     json.RawMessage `json:"x"`
	Y     json.RawMessage `json:"y"`
	Zones []rawZone       `json:"zones"`
}

type rawZone struct {
	Type       string          `json:"type"`
	X          json.RawMessage `json:"x"`
	Y          json.RawMessage `json:"y"`
	Width      json.RawMessage `json:"width"`
	Height     json.RawMessage `json:"height"`
	Properties struct {
		MinimumSpeed *float64 `json:"minimum_speed"`
	} `json:"properties"`
	Translate *struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	} `json:"translate"`
	Spawner  []rawSpawner `json:"spawner"`
	Spawners []rawSpawner `json:"spawners"` // legacy alias
}

type rawSpawner struct {
	Radius        float64  `json:"radius"`
	Speed         *float64 `json:"speed"`
	MinSpeed      *float64 `json:"min_speed"`
	MaxSpeed      *float64 `json:"max_speed"`
	Count         int      `json:"count"`
	MoveClockwise bool     `json:"move_clockwise"`
	Types         []string `json:"types"`
}

// tokenContext carries the previously-parsed sibling's derived values so
// relative-positioning tokens ("last_right", "last_bottom", "last_y",
// "last_width", "last_height") can be resolved at load time. Once
// resolved, values are stored as concrete floats and never
// re-evaluated.
type tokenContext struct {
	lastRight, lastBottom, lastY, lastWidth, lastHeight float64
}

func resolveValue(raw json.RawMessage, ctx tokenContext) (float64, error) {
	if len(raw) == 0 {
		return 0, nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, nil
	}
	var token string
	if err := json.Unmarshal(raw, &token); err != nil {
		return 0, fmt.Errorf("position value %s is neither a number nor a token: %w", raw, err)
	}
	switch token {
	case "last_right":
		return ctx.lastRight, nil
	case "last_bottom":
		return ctx.lastBottom, nil
	case "last_y":
		return ctx.lastY, nil
	case "last_width":
		return ctx.lastWidth, nil
	case "last_height":
		return ctx.lastHeight, nil
	default:
		return 0, fmt.Errorf("unknown position token %q", token)
	}
}

func zoneTypeFromString(s string) (ZoneType, error) {
	switch s {
	case "safe":
		return Safe, nil
	case "active":
		return Active, nil
	case "exit":
		return Exit, nil
	case "teleport":
		return Teleport, nil
	case "blocked":
		return Blocked, nil
	default:
		return 0, fmt.Errorf("unknown zone type %q", s)
	}
}

// Load reads and parses a map JSON file from path.
func Load(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read map file: %w", err)
	}
	return Parse(data)
}

// Parse parses map JSON from raw bytes, resolving relative-positioning
// tokens against sibling geometry as it walks the document.
func Parse(data []byte) (*Map, error) {
	var raw rawMap
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse map JSON: %w", err)
	}

	m := &Map{
		Name:     raw.Name,
		Friction: raw.Properties.Friction,
	}
	for i, c := range raw.Properties.BackgroundColor {
		if i < 4 {
			m.BackgroundColor[i] = c
		}
	}
	if len(raw.Properties.BackgroundColor) == 3 {
		m.BackgroundColor[3] = 255
	}

	var areaCtx tokenContext
	for _, ra := range raw.Areas {
		area, err := parseArea(ra, areaCtx)
		if err != nil {
			return nil, err
		}
		m.Areas = append(m.Areas, area)
		areaCtx = tokenContext{
			lastRight:  area.X + area.Width,
			lastBottom: area.Y + area.Height,
			lastY:      area.Y,
			lastWidth:  area.Width,
			lastHeight: area.Height,
		}
	}

	return m, nil
}

func parseArea(ra rawArea, ctx tokenContext) (Area, error) {
	x, err := resolveValue(ra.X, ctx)
	if err != nil {
		return Area{}, fmt.Errorf("area x: %w", err)
	}
	y, err := resolveValue(ra.Y, ctx)
	if err != nil {
		return Area{}, fmt.Errorf("area y: %w", err)
	}

	area := Area{X: x, Y: y}

	var zoneCtx tokenContext
	var maxRight, maxBottom float64
	for _, rz := range ra.Zones {
		zone, err := parseZone(rz, zoneCtx)
		if err != nil {
			return Area{}, err
		}
		area.Zones = append(area.Zones, zone)

		zoneCtx = tokenContext{
			lastRight:  zone.X + zone.Width,
			lastBottom: zone.Y + zone.Height,
			lastY:      zone.Y,
			lastWidth:  zone.Width,
			lastHeight: zone.Height,
		}

		if right := zone.X + zone.Width; right > maxRight {
			maxRight = right
		}
		if bottom := zone.Y + zone.Height; bottom > maxBottom {
			maxBottom = bottom
		}
	}

	area.Width = maxRight
	area.Height = maxBottom
	return area, nil
}

func parseZone(rz rawZone, ctx tokenContext) (Zone, error) {
	zoneType, err := zoneTypeFromString(rz.Type)
	if err != nil {
		return Zone{}, err
	}

	x, err := resolveValue(rz.X, ctx)
	if err != nil {
		return Zone{}, fmt.Errorf("zone x: %w", err)
	}
	y, err := resolveValue(rz.Y, ctx)
	if err != nil {
		return Zone{}, fmt.Errorf("zone y: %w", err)
	}
	w, err := resolveValue(rz.Width, ctx)
	if err != nil {
		return Zone{}, fmt.Errorf("zone width: %w", err)
	}
	h, err := resolveValue(rz.Height, ctx)
	if err != nil {
		return Zone{}, fmt.Errorf("zone height: %w", err)
	}

	zone := Zone{Type: zoneType, X: x, Y: y, Width: w, Height: h}

	if rz.Properties.MinimumSpeed != nil {
		zone.HasMinimumSpeed = true
		zone.MinimumSpeed = *rz.Properties.MinimumSpeed
	}
	if rz.Translate != nil {
		zone.HasTranslate = true
		zone.Translate = geom.Vector{X: rz.Translate.X, Y: rz.Translate.Y}
	}

	spawnerList := rz.Spawner
	if len(spawnerList) == 0 {
		spawnerList = rz.Spawners
	}
	for _, rs := range spawnerList {
		spawner, err := parseSpawner(rs)
		if err != nil {
			return Zone{}, err
		}
		zone.Spawners = append(zone.Spawners, spawner)
	}

	return zone, nil
}

func parseSpawner(rs rawSpawner) (Spawner, error) {
	s := Spawner{
		Radius:        rs.Radius,
		Count:         rs.Count,
		Clockwise:     rs.MoveClockwise,
		Types:         rs.Types,
	}

	if rs.Speed != nil {
		s.HasFixedSpeed = true
		s.Speed = *rs.Speed / globalSpeedRetune
		return s, nil
	}

	if rs.MinSpeed == nil || rs.MaxSpeed == nil {
		return Spawner{}, fmt.Errorf("spawner has no speed and no min_speed/max_speed range")
	}
	s.MinSpeed = *rs.MinSpeed / globalSpeedRetune
	s.MaxSpeed = *rs.MaxSpeed / globalSpeedRetune
	return s, nil
}
