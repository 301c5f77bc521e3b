package display

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
)

const (
	// CellWidth and CellHeight are the pixel footprint of one glyph at text size 1.
	CellWidth  = 6
	CellHeight = 8

	defaultWidth  = 128
	defaultHeight = 64

	ellipsis = "..."
)

// Cell is one character position of the canvas.
type Cell struct {
	Ch    rune
	Color Color
}

// Canvas is a Driver that renders into a grid of character cells. Pixel
// coordinates are mapped onto the grid so screen code stays resolution-based.
// Draw calls land in a back buffer; EndFrame publishes it.
type Canvas struct {
	width, height int
	cols, rows    int

	on       bool
	color    Color
	textSize int
	cx, cy   int

	back   [][]Cell
	front  [][]Cell
	frames int
}

// NewCanvas creates a canvas for a panel of width x height pixels. Zero values pick 128x64.
func NewCanvas(width, height int) *Canvas {
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}
	c := &Canvas{
		width:    width,
		height:   height,
		cols:     width / CellWidth,
		rows:     height / CellHeight,
		color:    Light,
		textSize: 1,
	}
	c.back = c.blank()
	c.front = c.blank()
	return c
}

func (c *Canvas) blank() [][]Cell {
	g := make([][]Cell, c.rows)
	for r := range g {
		g[r] = make([]Cell, c.cols)
		for i := range g[r] {
			g[r][i] = Cell{Ch: ' ', Color: Dark}
		}
	}
	return g
}

func (c *Canvas) IsOn() bool { return c.on }
func (c *Canvas) TurnOn() { c.on = true }
func (c *Canvas) TurnOff() { c.on = false }
func (c *Canvas) Width() int { return c.width }
func (c *Canvas) Height() int { return c.height }
func (c *Canvas) Cols() int { return c.cols }
func (c *Canvas) Rows() int { return c.rows }
func (c *Canvas) Frames() int { return c.frames }
func (c *Canvas) SetColor(v Color) { c.color = v }

func (c *Canvas) StartFrame() {
	c.back = c.blank()
	c.cx, c.cy = 0, 0
	c.textSize = 1
	c.color = Light
}

func (c *Canvas) EndFrame() {
	c.front = c.back
	c.back = c.blank()
	c.frames++
}

func (c *Canvas) SetTextSize(size int) {
	if size < 1 {
		size = 1
	}
	c.textSize = size
}

func (c *Canvas) SetCursor(x, y int) { c.cx, c.cy = x, y }

// glyphWidth is fixed: a cell grid cannot scale glyphs, so text size only
// affects line advance.
func (c *Canvas) glyphWidth() int { return CellWidth }

func (c *Canvas) put(col, row int, ch rune, color Color) {
	if row < 0 || row >= c.rows || col < 0 || col >= c.cols {
		return
	}
	c.back[row][col] = Cell{Ch: ch, Color: color}
}

// textRow rounds a text baseline to the nearest row so that text placed a few
// pixels under a rule lands on the next row instead of on the rule.
func textRow(y int) int { return (y + CellHeight/2) / CellHeight }

// Print writes s at the cursor and advances it.
func (c *Canvas) Print(s string) {
	for _, r := range s {
		if r == '\n' {
			c.cx = 0
			c.cy += CellHeight * c.textSize
			continue
		}
		c.put(c.cx/CellWidth, textRow(c.cy), r, c.color)
		c.cx += c.glyphWidth() * runewidth.RuneWidth(r)
	}
}

// PrintWordWrap prints s wrapped to maxWidth pixels starting at the cursor column.
func (c *Canvas) PrintWordWrap(s string, maxWidth int) {
	limit := maxWidth / c.glyphWidth()
	if limit < 1 {
		limit = 1
	}
	startX := c.cx
	for _, line := range strings.Split(wordwrap.String(s, limit), "\n") {
		for _, chunk := range hardWrap(line, limit) {
			c.cx = startX
			c.Print(chunk)
			c.cy += CellHeight * c.textSize
		}
	}
	c.cx = startX
}

// hardWrap splits words that wordwrap leaves longer than limit.
func hardWrap(line string, limit int) []string {
	if runewidth.StringWidth(line) <= limit {
		return []string{line}
	}
	var out []string
	for runewidth.StringWidth(line) > limit {
		head := runewidth.Truncate(line, limit, "")
		if head == "" {
			break
		}
		out = append(out, head)
		line = line[len(head):]
	}
	return append(out, line)
}

func (c *Canvas) TextWidth(s string) int {
	return runewidth.StringWidth(s) * c.glyphWidth()
}

func (c *Canvas) DrawTextCentered(x, y int, s string) {
	c.SetCursor(x-c.TextWidth(s)/2, y)
	c.Print(s)
}

func (c *Canvas) DrawTextEllipsized(x, y, maxWidth int, s string) {
	limit := maxWidth / c.glyphWidth()
	if runewidth.StringWidth(s) > limit {
		s = runewidth.Truncate(s, limit, ellipsis)
	}
	c.SetCursor(x, y)
	c.Print(s)
}

// cellSpan returns the inclusive cell range covered by [p, p+n) pixels.
func cellSpan(p, n, size int) (int, int) {
	if n < 1 {
		n = 1
	}
	return p / size, (p + n - 1) / size
}

// FillRect fills the covered cells; Dark clears them.
func (c *Canvas) FillRect(x, y, w, h int) {
	c0, c1 := cellSpan(x, w, CellWidth)
	r0, r1 := cellSpan(y, h, CellHeight)
	ch := BlockRune
	if c.color == Dark {
		ch = ' '
	}
	for r := r0; r <= r1; r++ {
		for col := c0; col <= c1; col++ {
			c.put(col, r, ch, c.color)
		}
	}
}

// DrawRect outlines the covered cells. One-cell-high rects become rules.
func (c *Canvas) DrawRect(x, y, w, h int) {
	c0, c1 := cellSpan(x, w, CellWidth)
	r0, r1 := cellSpan(y, h, CellHeight)
	switch {
	case r0 == r1:
		for col := c0; col <= c1; col++ {
			c.put(col, r0, '─', c.color)
		}
	case c0 == c1:
		for r := r0; r <= r1; r++ {
			c.put(c0, r, '│', c.color)
		}
	default:
		for col := c0 + 1; col < c1; col++ {
			c.put(col, r0, '─', c.color)
			c.put(col, r1, '─', c.color)
		}
		for r := r0 + 1; r < r1; r++ {
			c.put(c0, r, '│', c.color)
			c.put(c1, r, '│', c.color)
		}
		c.put(c0, r0, '┌', c.color)
		c.put(c1, r0, '┐', c.color)
		c.put(c0, r1, '└', c.color)
		c.put(c1, r1, '┘', c.color)
	}
}

// DrawBitmap renders the bitmap's name centred in its footprint.
func (c *Canvas) DrawBitmap(x, y int, bm Bitmap) {
	c.DrawTextCentered(x+bm.Width/2, y+bm.Height/2-CellHeight/2, "["+bm.Name+"]")
}

func (c *Canvas) TranslateUTF8ToBlocks(s string) string {
	return Transliterate(s, 0)
}

// Lines returns a copy of the published frame.
func (c *Canvas) Lines() [][]Cell {
	out := make([][]Cell, len(c.front))
	for r := range c.front {
		out[r] = append([]Cell(nil), c.front[r]...)
	}
	return out
}

// String returns the published frame as plain text, one row per line.
func (c *Canvas) String() string {
	var b strings.Builder
	for r, row := range c.front {
		if r > 0 {
			b.WriteByte('\n')
		}
		for _, cell := range row {
			b.WriteRune(cell.Ch)
		}
	}
	return b.String()
}

// Contains reports whether the published frame shows s on any single row.
func (c *Canvas) Contains(s string) bool {
	for _, line := range strings.Split(c.String(), "\n") {
		if strings.Contains(line, s) {
			return true
		}
	}
	return false
}
