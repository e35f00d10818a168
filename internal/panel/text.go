package panel

import "github.com/coreman2200/funtimes-ledpanel/internal/font"

// DrawChar renders ch with its top left corner at (col, row). Only lit glyph
// pixels are written; the rest of the frame is left as is.
func (p *Panel) DrawChar(ch rune, row, col int, c Color) {
	g := font.Lookup(ch)
	r, gr, b := c.R(), c.G(), c.B()
	p.mu.Lock()
	defer p.mu.Unlock()
	for rr := 0; rr < font.Rows; rr++ {
		for cc := 0; cc < font.Cols; cc++ {
			if g.On(rr, cc) {
				p.setLocked(col+cc, row+rr, r, gr, b)
			}
		}
	}
}

// DrawText renders s left to right starting at (col, row).
func (p *Panel) DrawText(s string, row, col int, c Color) {
	x := col
	for _, ch := range s {
		p.DrawChar(ch, row, x, c)
		x += font.Advance
	}
}

// ScrollStep draws one frame of s scrolling left and returns the x of the
// next frame. Once the text has left the panel it re-enters from the right
// edge. The caller keeps x between calls.
func (p *Panel) ScrollStep(s string, row, x int, c Color) (int, error) {
	p.Clear()
	p.DrawText(s, row, x, c)
	err := p.Show()
	x--
	if x < -font.TextWidth(s) {
		x = p.Width()
	}
	return x, err
}
