// Package layout packs N equally sized tiles of a fixed aspect ratio into a
// rectangular container so that each tile is as large as possible.
package layout

import "math"

// Grid is the computed geometry for one set of tiles. It is derived on demand
// and never stored; recompute whenever the count or container changes.
type Grid struct {
	Columns    int
	Rows       int
	TileWidth  float64
	TileHeight float64
	Tiles      []Tile // one per tile, in selection order
}

// Tile is the placement of the tile at Index within the grid
type Tile struct {
	Index  int
	Column int
	Row    int
	Left   float64
	Top    float64
}

// Empty reports whether the grid holds no tiles
func (g Grid) Empty() bool {
	return len(g.Tiles) == 0
}

// Compute lays out count tiles of the given aspect ratio (width/height) in a
// width x height container. It is total: zero or invalid dimensions produce
// zero-sized tiles rather than an error.
func Compute(count int, aspectRatio, width, height float64) Grid {
	if count <= 0 {
		return Grid{Tiles: []Tile{}}
	}
	width = sanitize(width)
	height = sanitize(height)

	bestX, bestY := 0, 0
	bestW := 0.0
	for gridX := 1; gridX <= count; gridX++ {
		gridY := (count + gridX - 1) / gridX

		// A wasted full row or column is never optimal
		empty := gridX*gridY - count
		if empty >= gridX || empty >= gridY {
			continue
		}

		w := math.Min(width/float64(gridX), height/float64(gridY)*aspectRatio)
		if bestX == 0 || w > bestW {
			bestX, bestY, bestW = gridX, gridY, w
		}
	}

	var tileW, tileH float64
	if aspectRatio > 0 && !math.IsNaN(aspectRatio) && !math.IsInf(aspectRatio, 0) {
		tileW = math.Max(bestW, 0)
		tileH = tileW / aspectRatio
	}

	tiles := make([]Tile, count)
	for i := range tiles {
		col := i % bestX
		row := (i / bestX) % bestY
		tiles[i] = Tile{
			Index:  i,
			Column: col,
			Row:    row,
			Left:   float64(col) * tileW,
			Top:    float64(row) * tileH,
		}
	}

	return Grid{
		Columns:    bestX,
		Rows:       bestY,
		TileWidth:  tileW,
		TileHeight: tileH,
		Tiles:      tiles,
	}
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if math.IsInf(v, 1) {
		return math.MaxFloat64
	}
	return v
}

// Rect is an integer rectangle in the container's units (terminal cells or pixels)
type Rect struct {
	X, Y          int
	Width, Height int
}

// Cells snaps the grid to integer coordinates. Each edge is floored
// independently so neighbouring rects share edges without gaps or overlap.
func (g Grid) Cells() []Rect {
	rects := make([]Rect, len(g.Tiles))
	for i, t := range g.Tiles {
		x0 := int(math.Floor(float64(t.Column) * g.TileWidth))
		y0 := int(math.Floor(float64(t.Row) * g.TileHeight))
		x1 := int(math.Floor(float64(t.Column+1) * g.TileWidth))
		y1 := int(math.Floor(float64(t.Row+1) * g.TileHeight))
		rects[i] = Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
	}
	return rects
}

// Size returns the area actually covered by the tiles
func (g Grid) Size() (width, height float64) {
	return float64(g.Columns) * g.TileWidth, float64(g.Rows) * g.TileHeight
}

// Offset returns the margins that center the grid inside a container
func (g Grid) Offset(containerWidth, containerHeight float64) (dx, dy float64) {
	w, h := g.Size()
	dx = math.Max((sanitize(containerWidth)-w)/2, 0)
	dy = math.Max((sanitize(containerHeight)-h)/2, 0)
	return dx, dy
}
