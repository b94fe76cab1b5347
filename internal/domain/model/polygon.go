package model

import (
	"encoding/json"
	"fmt"
)

type Shape string

const (
	ShapeCircle   Shape = "circle"
	ShapeRect     Shape = "rect"
	ShapeTriangle Shape = "triangle"
	ShapeNgon     Shape = "ngon"
)

type SizeCategory string

const (
	SizeSmall  SizeCategory = "small"
	SizeMedium SizeCategory = "medium"
	SizeLarge  SizeCategory = "large"
)

// Zone colors one cell of a grid partition.
type Zone struct {
	Row     int     `json:"row"`
	Col     int     `json:"col"`
	Color   string  `json:"color,omitempty"`
	Opacity float64 `json:"opacity,omitempty"`
	HeightM float64 `json:"height,omitempty"`
}

// Grid partitions a polygon into rows x cols cells with per-cell zones.
type Grid struct {
	Rows  int    `json:"rows"`
	Cols  int    `json:"cols"`
	Zones []Zone `json:"zones,omitempty"`
}

// PolygonSpec is a declarative description of a 3D shape on the map. The
// interpret endpoint passes the model output through as-is; this typed form
// exists for validation and for callers that want structure.
type PolygonSpec struct {
	Shape   Shape        `json:"shape"`
	Sides   int          `json:"sides,omitempty"` // meaningful for ngon only
	Size    SizeCategory `json:"size,omitempty"`
	RadiusM float64      `json:"radius,omitempty"`
	HeightM float64      `json:"height,omitempty"`
	Color   string       `json:"color,omitempty"`
	Opacity float64      `json:"opacity,omitempty"`
	Grid    *Grid        `json:"grid,omitempty"`
}

// PolygonSpecFromMap decodes an untrusted object into the typed form.
// Unknown fields are dropped here; callers that must preserve them keep the
// raw map and use this only for validation.
func PolygonSpecFromMap(m map[string]any) (*PolygonSpec, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	var spec PolygonSpec
	if err := json.Unmarshal(b, &spec); err != nil {
		return nil, err
	}
	return &spec, nil
}

func (p *PolygonSpec) Validate() error {
	switch p.Shape {
	case ShapeCircle, ShapeRect, ShapeTriangle, ShapeNgon:
	default:
		return fmt.Errorf("unknown shape %q", p.Shape)
	}
	if p.Shape == ShapeNgon && p.Sides < 3 {
		return fmt.Errorf("ngon needs at least 3 sides, got %d", p.Sides)
	}
	if p.Opacity < 0 || p.Opacity > 1 {
		return fmt.Errorf("opacity %v out of [0,1]", p.Opacity)
	}
	if p.Grid != nil {
		return p.Grid.Validate()
	}
	return nil
}

func (g *Grid) Validate() error {
	if g.Rows <= 0 || g.Cols <= 0 {
		return fmt.Errorf("grid must have positive rows/cols, got %dx%d", g.Rows, g.Cols)
	}
	for i, z := range g.Zones {
		if z.Row < 0 || z.Row >= g.Rows || z.Col < 0 || z.Col >= g.Cols {
			return fmt.Errorf("zone %d at (%d,%d) outside %dx%d grid", i, z.Row, z.Col, g.Rows, g.Cols)
		}
		if z.Opacity < 0 || z.Opacity > 1 {
			return fmt.Errorf("zone %d opacity %v out of [0,1]", i, z.Opacity)
		}
	}
	return nil
}
