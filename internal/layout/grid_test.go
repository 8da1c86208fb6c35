package layout

import (
	"math"
	"testing"
)

const eps = 1e-6

func near(a, b float64) bool {
	return math.Abs(a-b) <= eps*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

func TestComputeEmpty(t *testing.T) {
	g := Compute(0, 16.0/9.0, 1920, 1080)
	if g.Columns != 0 || g.Rows != 0 {
		t.Errorf("got %dx%d grid, want 0x0", g.Columns, g.Rows)
	}
	if g.TileWidth != 0 || g.TileHeight != 0 {
		t.Errorf("got tile %vx%v, want zero", g.TileWidth, g.TileHeight)
	}
	if len(g.Tiles) != 0 || !g.Empty() {
		t.Errorf("got %d tiles, want none", len(g.Tiles))
	}
}

func TestComputeSingleFillsContainer(t *testing.T) {
	g := Compute(1, 16.0/9.0, 1920, 1080)
	if g.Columns != 1 || g.Rows != 1 {
		t.Fatalf("got %dx%d grid, want 1x1", g.Columns, g.Rows)
	}
	if !near(g.TileWidth, 1920) || !near(g.TileHeight, 1080) {
		t.Errorf("got tile %vx%v, want 1920x1080", g.TileWidth, g.TileHeight)
	}
	if g.Tiles[0].Left != 0 || g.Tiles[0].Top != 0 {
		t.Errorf("single tile at (%v,%v), want origin", g.Tiles[0].Left, g.Tiles[0].Top)
	}
}

func TestComputeFourIsTwoByTwo(t *testing.T) {
	ar := 16.0 / 9.0
	// Surviving candidates: 1x4, 2x2 and 4x1 (3x2 leaves a full empty row)
	candidates := map[int]float64{
		1: math.Min(1920/1.0, 1080/4.0*ar),
		2: math.Min(1920/2.0, 1080/2.0*ar),
		4: math.Min(1920/4.0, 1080/1.0*ar),
	}
	if !(candidates[2] > candidates[1] && candidates[2] > candidates[4]) {
		t.Fatalf("fixture broken: candidates %v", candidates)
	}

	g := Compute(4, ar, 1920, 1080)
	if g.Columns != 2 || g.Rows != 2 {
		t.Fatalf("got %dx%d grid, want 2x2", g.Columns, g.Rows)
	}
	if !near(g.TileWidth, candidates[2]) {
		t.Errorf("tile width %v, want %v", g.TileWidth, candidates[2])
	}

	want := [][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}}
	for i, tile := range g.Tiles {
		if tile.Column != want[i][0] || tile.Row != want[i][1] {
			t.Errorf("tile %d at col %d row %d, want %v", i, tile.Column, tile.Row, want[i])
		}
	}
}

func TestComputePlacement(t *testing.T) {
	tests := []struct {
		name          string
		count         int
		width, height float64
		wantCols      int
		wantRows      int
	}{
		{"two side by side in a wide box", 2, 1920, 540, 2, 1},
		{"two stacked in a tall box", 2, 960, 1080, 1, 2},
		{"three in a row", 3, 3000, 500, 3, 1},
		{"five on a short screen", 5, 1920, 900, 3, 2},
		{"seven on a landscape screen", 7, 1920, 1080, 3, 3},
		{"nine on a landscape screen", 9, 1920, 1080, 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Compute(tt.count, 16.0/9.0, tt.width, tt.height)
			if g.Columns != tt.wantCols || g.Rows != tt.wantRows {
				t.Errorf("got %dx%d, want %dx%d", g.Columns, g.Rows, tt.wantCols, tt.wantRows)
			}
			for i, tile := range g.Tiles {
				if tile.Index != i {
					t.Errorf("tile %d has index %d", i, tile.Index)
				}
				if tile.Column != i%g.Columns || tile.Row != (i/g.Columns)%g.Rows {
					t.Errorf("tile %d at col %d row %d", i, tile.Column, tile.Row)
				}
				if !near(tile.Left, float64(tile.Column)*g.TileWidth) || !near(tile.Top, float64(tile.Row)*g.TileHeight) {
					t.Errorf("tile %d at (%v,%v) does not match its cell", i, tile.Left, tile.Top)
				}
			}
		})
	}
}

func TestComputeTiesKeepFewestColumns(t *testing.T) {
	// In a square box with aspect 1, 1x2 and 2x1 both give width 50
	g := Compute(2, 1, 100, 100)
	if g.Columns != 1 || g.Rows != 2 {
		t.Errorf("got %dx%d, want 1x2 (first candidate wins ties)", g.Columns, g.Rows)
	}
	if !near(g.TileWidth, 50) {
		t.Errorf("tile width %v, want 50", g.TileWidth)
	}
}

func TestComputeProperties(t *testing.T) {
	sizes := [][2]float64{{1920, 1080}, {1080, 1920}, {800, 600}, {123.5, 77.25}, {3840, 400}, {1, 1}}
	ratios := []float64{16.0 / 9.0, 4.0 / 3.0, 1, 9.0 / 16.0, 32.0 / 9.0}

	for count := 1; count <= 40; count++ {
		for _, sz := range sizes {
			for _, ar := range ratios {
				g := Compute(count, ar, sz[0], sz[1])
				cells := g.Columns * g.Rows
				if cells < count {
					t.Fatalf("n=%d %v ar=%v: %dx%d holds fewer than n", count, sz, ar, g.Columns, g.Rows)
				}
				if empty := cells - count; empty >= g.Columns || empty >= g.Rows {
					t.Fatalf("n=%d %v ar=%v: %dx%d wastes a full row or column", count, sz, ar, g.Columns, g.Rows)
				}
				if !near(g.TileHeight*ar, g.TileWidth) {
					t.Fatalf("n=%d %v ar=%v: height*ar=%v width=%v", count, sz, ar, g.TileHeight*ar, g.TileWidth)
				}
				if len(g.Tiles) != count {
					t.Fatalf("n=%d: got %d tiles", count, len(g.Tiles))
				}
				w, h := g.Size()
				if w > sz[0]*(1+eps) || h > sz[1]*(1+eps) {
					t.Fatalf("n=%d %v ar=%v: grid %vx%v overflows container", count, sz, ar, w, h)
				}
			}
		}
	}
}

func TestComputeZeroContainer(t *testing.T) {
	tests := []struct {
		name          string
		count         int
		width, height float64
		wantCols      int
	}{
		{"zero width single", 1, 0, 1080, 1},
		{"zero height single", 1, 1920, 0, 1},
		{"both zero many", 6, 0, 0, 0},
		{"negative width", 3, -10, 500, 0},
		{"nan height", 2, 800, math.NaN(), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Compute(tt.count, 16.0/9.0, tt.width, tt.height)
			if g.TileWidth != 0 || g.TileHeight != 0 {
				t.Errorf("got tile %vx%v, want zero", g.TileWidth, g.TileHeight)
			}
			if len(g.Tiles) != tt.count {
				t.Errorf("got %d tiles, want %d", len(g.Tiles), tt.count)
			}
			if tt.wantCols != 0 && g.Columns != tt.wantCols {
				t.Errorf("got %d columns, want %d", g.Columns, tt.wantCols)
			}
			if g.Columns*g.Rows < tt.count {
				t.Errorf("%dx%d cannot hold %d tiles", g.Columns, g.Rows, tt.count)
			}
		})
	}
}

func TestComputeInvalidAspect(t *testing.T) {
	for _, ar := range []float64{0, -1, math.NaN()} {
		g := Compute(3, ar, 1920, 1080)
		if g.TileWidth != 0 || g.TileHeight != 0 {
			t.Errorf("ar=%v: got tile %vx%v, want zero", ar, g.TileWidth, g.TileHeight)
		}
		if len(g.Tiles) != 3 {
			t.Errorf("ar=%v: got %d tiles", ar, len(g.Tiles))
		}
	}
}

func TestCellsShareEdges(t *testing.T) {
	// 3 columns over 100 cells gives fractional tile widths
	g := Compute(3, 1, 100, 33.34)
	if g.Columns != 3 || g.Rows != 1 {
		t.Fatalf("got %dx%d, want 3x1", g.Columns, g.Rows)
	}
	cells := g.Cells()
	if len(cells) != 3 {
		t.Fatalf("got %d cells", len(cells))
	}
	for i := 1; i < len(cells); i++ {
		prev, cur := cells[i-1], cells[i]
		if prev.Y == cur.Y && prev.X+prev.Width != cur.X {
			t.Errorf("gap or overlap between cell %d (%+v) and %d (%+v)", i-1, prev, i, cur)
		}
	}
	total := 0
	for _, c := range cells {
		total += c.Width
	}
	if total < 99 || total > 100 {
		t.Errorf("cells cover %d columns, want 99..100", total)
	}
}

func TestOffsetCentersGrid(t *testing.T) {
	g := Compute(1, 16.0/9.0, 1920, 1200)
	dx, dy := g.Offset(1920, 1200)
	if !near(dx, 0) || !near(dy, 60) {
		t.Errorf("offset (%v,%v), want (0,60)", dx, dy)
	}
}
