package avr

// Button is a push button between a port line and ground. Idle, the line
// reads high; pressed, the button pulls it low until the press expires.
type Button struct {
	port      *Port
	line      uint8
	pressed   bool
	releaseAt uint64
	presses   int
}

// NewButton connects a button to line of port and leaves it released.
func NewButton(port *Port, line uint8) *Button {
	b := &Button{port: port, line: line}
	port.Drive(line, true)
	return b
}

// Line returns the port line the button is wired to.
func (b *Button) Line() uint8 {
	return b.line
}

// Pressed reports whether the button is currently held down.
func (b *Button) Pressed() bool {
	return b.pressed
}

// Presses returns how many presses have started.
func (b *Button) Presses() int {
	return b.presses
}

// Press holds the button down until cycle `until`. A press while already
// held extends it.
func (b *Button) Press(until uint64) {
	if !b.pressed {
		b.presses++
	}
	b.pressed = true
	if until > b.releaseAt {
		b.releaseAt = until
	}
	b.port.Drive(b.line, false)
}

// step releases the button once the machine clock reaches the release cycle.
func (b *Button) step(now uint64) {
	if b.pressed && now >= b.releaseAt {
		b.pressed = false
		b.port.Drive(b.line, true)
	}
}
