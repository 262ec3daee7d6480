// Package avr is a small behavioural model of an AVR microcontroller: one
// 8-bit I/O port with change notifications, a push-button peripheral and a
// machine loop that runs a firmware model against them.
package avr

// PortListener receives register changes of a port. Both methods are called
// synchronously on the emulator goroutine, once per register write.
type PortListener interface {
	OnPinsChanged(v byte)
	OnDirectionChanged(v byte)
}

// Port is an 8-bit I/O port. Not safe for concurrent use: it belongs to the
// emulator goroutine.
type Port struct {
	name      byte
	port      byte // PORTx: output level, or pull-up enable on inputs
	ddr       byte // DDRx: 1 = output
	ext       byte // levels driven onto the lines from outside
	listeners []PortListener
}

// NewPort returns port 'name' with every line an input pulled high externally.
func NewPort(name byte) *Port {
	return &Port{name: name, ext: 0xFF}
}

// Name returns the port letter.
func (p *Port) Name() byte {
	return p.name
}

// Subscribe registers l for pin and direction notifications.
func (p *Port) Subscribe(l PortListener) {
	p.listeners = append(p.listeners, l)
}

// WritePORT stores the PORT register and notifies listeners.
func (p *Port) WritePORT(v byte) {
	p.port = v
	p.notifyPins()
}

// WriteDDR stores the DDR register and notifies listeners.
func (p *Port) WriteDDR(v byte) {
	p.ddr = v
	for _, l := range p.listeners {
		l.OnDirectionChanged(v)
	}
}

// ReadPIN returns the line levels: driven outputs, external levels on inputs.
func (p *Port) ReadPIN() byte {
	return (p.port & p.ddr) | (p.ext &^ p.ddr)
}

// ReadPORT returns the PORT register.
func (p *Port) ReadPORT() byte {
	return p.port
}

// ReadDDR returns the DDR register.
func (p *Port) ReadDDR() byte {
	return p.ddr
}

// Drive sets the level a peripheral puts on a line. It only shows up in
// ReadPIN while the line is an input.
func (p *Port) Drive(line uint8, high bool) {
	mask := byte(1) << line
	old := p.ext
	if high {
		p.ext |= mask
	} else {
		p.ext &^= mask
	}
	if p.ext != old && p.ddr&mask == 0 {
		p.notifyPins()
	}
}

func (p *Port) notifyPins() {
	v := p.ReadPIN()
	for _, l := range p.listeners {
		l.OnPinsChanged(v)
	}
}
