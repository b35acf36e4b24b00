package drawer

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/olivier-w/databar/internal/palette"
)

// Braille dot positions (col, row) → bit offset:
//
//	(0,0)=0  (1,0)=3
//	(0,1)=1  (1,1)=4
//	(0,2)=2  (1,2)=5
//	(0,3)=6  (1,3)=7
var brailleBits = [2][4]uint{
	{0, 1, 2, 6},
	{3, 4, 5, 7},
}

var (
	handleColor = palette.RGB{R: 235, G: 235, B: 235}
	warnColor   = palette.RGB{R: 255, G: 80, B: 60}
	glyphColor  = palette.RGB{R: 255, G: 255, B: 255}
)

type cell struct {
	bits  uint8
	line  bool
	fg    palette.RGB
	hasFG bool
	bg    palette.RGB
	hasBG bool
	r     rune
}

// canvas is a grid of terminal cells addressed in braille dots. Each cell
// covers 2x4 dots; ox, oy shift frame-relative pixels into the viewport.
type canvas struct {
	cols, rows int
	ox, oy     float64
	cells      []cell
}

func newCanvas(cols, rows int, m Margins) *canvas {
	return &canvas{cols: cols, rows: rows, ox: m.Left, oy: m.Top, cells: make([]cell, cols*rows)}
}

func (c *canvas) cellAt(col, row int) *cell {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return nil
	}
	return &c.cells[row*c.cols+col]
}

func (c *canvas) dotXY(px, py float64) (int, int) {
	return int(math.Floor(px + c.ox)), int(math.Floor(py + c.oy))
}

// setDot lights one dot. Line dots wipe any fill pattern in their cell first
// so lines stay legible over energy hatching.
func (c *canvas) setDot(x, y int, color palette.RGB, line bool) {
	if x < 0 || y < 0 {
		return
	}
	ce := c.cellAt(x/2, y/4)
	if ce == nil || ce.r != 0 {
		return
	}
	if line && !ce.line {
		ce.bits = 0
		ce.line = true
	}
	if !line && ce.line {
		return
	}
	ce.bits |= 1 << brailleBits[x%2][y%4]
	ce.fg, ce.hasFG = color, true
}

func (c *canvas) line(x0, y0, x1, y1 int, color palette.RGB) {
	dx := absInt(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -absInt(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		c.setDot(x0, y0, color, true)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// hatch fills a dot column between two pixel rows with a sparse pattern.
func (c *canvas) hatch(x int, y0, y1 float64, color palette.RGB) {
	_, a := c.dotXY(0, math.Min(y0, y1))
	_, b := c.dotXY(0, math.Max(y0, y1))
	for y := a; y <= b; y++ {
		if (x+y)%2 == 0 {
			c.setDot(x, y, color, false)
		}
	}
}

// fillBG tints the background of every cell touched by a pixel rectangle.
// A zero-width rectangle still covers one column.
func (c *canvas) fillBG(r Rect, color palette.RGB) {
	x0, y0 := c.dotXY(r.X, r.Y)
	x1, y1 := c.dotXY(r.X+r.W-1, r.Y+r.H-1)
	x1, y1 = max(x0, x1), max(y0, y1)
	for row := max(0, y0/4); row <= y1/4; row++ {
		for col := max(0, x0/2); col <= x1/2; col++ {
			if ce := c.cellAt(col, row); ce != nil {
				ce.bg, ce.hasBG = color, true
			}
		}
	}
}

func (c *canvas) text(t Text) {
	x, y := c.dotXY(t.X, t.Y)
	col, row := floorDiv(x, 2), floorDiv(y, 4)
	n := utf8.RuneCountInString(t.S)
	switch t.Align {
	case AlignCenter:
		col -= n / 2
	case AlignRight:
		col -= n - 1
	}
	for _, r := range t.S {
		if ce := c.cellAt(col, row); ce != nil {
			ce.r = r
			ce.fg, ce.hasFG = t.Color, true
		}
		col++
	}
}

func (c *canvas) glyph(g Glyph) {
	x, y := c.dotXY(g.X, g.Y)
	if x < 0 || y < 0 {
		return
	}
	if ce := c.cellAt(x/2, y/4); ce != nil {
		ce.r = g.Rune
		ce.fg, ce.hasFG = glyphColor, true
	}
}

func (c *canvas) draw(p Primitive) {
	switch v := p.(type) {
	case Rect:
		if v.Handle != SideNone {
			color := handleColor
			if v.Warn {
				color = warnColor
			}
			x, _ := c.dotXY(v.X+v.W/2, 0)
			_, y0 := c.dotXY(0, v.Y)
			_, y1 := c.dotXY(0, v.Y+v.H-1)
			for y := y0; y <= y1; y++ {
				c.setDot(x, y, color, true)
			}
			return
		}
		color := palette.Lerp(v.Color, palette.RGB{}, 0.55)
		if v.Selected {
			color = palette.Lerp(v.Color, palette.RGB{}, 0.25)
		}
		c.fillBG(v, color)
	case Path:
		for i := 1; i < len(v.Points); i++ {
			x0, y0 := c.dotXY(v.Points[i-1].X, v.Points[i-1].Y)
			x1, y1 := c.dotXY(v.Points[i].X, v.Points[i].Y)
			c.line(x0, y0, x1, y1, v.Color)
		}
		if len(v.Points) == 1 {
			x, y := c.dotXY(v.Points[0].X, v.Points[0].Y)
			c.setDot(x, y, v.Color, true)
		}
	case Area:
		for i := range v.X {
			xa, _ := c.dotXY(v.X[i], 0)
			xb := xa
			if i+1 < len(v.X) {
				xb, _ = c.dotXY(v.X[i+1], 0)
			}
			for x := xa; x <= xb; x++ {
				t := 0.0
				if xb > xa {
					t = float64(x-xa) / float64(xb-xa)
				}
				j := min(i+1, len(v.X)-1)
				top := v.Top[i] + (v.Top[j]-v.Top[i])*t
				bottom := v.Bottom[i] + (v.Bottom[j]-v.Bottom[i])*t
				c.hatch(x, top, bottom, v.Color)
			}
		}
	case Circle:
		x, y := c.dotXY(v.X, v.Y)
		c.setDot(x, y, v.Color, true)
		if v.R >= 2 {
			c.setDot(x+1, y, v.Color, true)
			c.setDot(x, y+1, v.Color, true)
			c.setDot(x+1, y+1, v.Color, true)
		}
	case Text:
		c.text(v)
	case Glyph:
		c.glyph(v)
	}
}

func (c *canvas) String(p palette.Profile) string {
	state := palette.NewStateFor(p)
	var sb strings.Builder
	for row := range c.rows {
		if row > 0 {
			sb.WriteByte('\n')
		}
		for col := range c.cols {
			ce := &c.cells[row*c.cols+col]
			if ce.hasBG {
				state.SetBackground(&sb, ce.bg)
			} else {
				state.ResetBackground(&sb)
			}
			switch {
			case ce.r != 0:
				if ce.hasFG {
					state.Set(&sb, ce.fg)
				}
				sb.WriteRune(ce.r)
			case ce.bits != 0:
				state.Set(&sb, ce.fg)
				sb.WriteRune(rune(0x2800 + int(ce.bits)))
			default:
				sb.WriteByte(' ')
			}
		}
		state.Reset(&sb)
	}
	return sb.String()
}

// Render composites the layers into rows of braille text, cols cells wide
// and rows cells high. Frame pixels are offset by the margins and anything
// outside the viewport is dropped.
func Render(ls Layers, m Margins, cols, rows int, p palette.Profile) string {
	if cols <= 0 || rows <= 0 {
		return ""
	}
	c := newCanvas(cols, rows, m)
	for _, l := range ls {
		for _, prim := range l.Prims {
			c.draw(prim)
		}
	}
	return c.String(p)
}

// View renders the chart for a viewport of cols by rows terminal cells with
// the detected color profile.
func (d *Drawer) View(cols, rows int) string {
	return Render(d.layers, d.margins, cols, rows, palette.CurrentProfile())
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && a < 0 {
		q--
	}
	return q
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
