package topology

// Board geometry in pixels.
const (
	GridPitch = 32.0
	LEDSize   = GridPitch * 0.8
)

// Point is a vertex in board pixels, origin bottom-left.
type Point struct {
	X float32
	Y float32
}

// Quad is the four corners of an LED, in drawing order.
type Quad [4]Point

// Quad returns the LED outline for the entry's cell.
func (e Entry) Quad() Quad {
	return QuadAt(e.Cell)
}

// QuadAt returns the outline of an LED placed in cell c.
func QuadAt(c Cell) Quad {
	x := float32(c.X) * GridPitch
	y := float32(c.Y) * GridPitch
	return Quad{
		{x + LEDSize, y + LEDSize},
		{x, y + LEDSize},
		{x, y},
		{x + LEDSize, y},
	}
}

// Size returns the board size in pixels for a table.
func (t *Table) Size() (width, height float32) {
	w, h := t.Bounds()
	return float32(w) * GridPitch, float32(h) * GridPitch
}
