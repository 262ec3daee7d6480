package avr

// Write is one register write seen by a RecordingListener.
type Write struct {
	DDR   bool // true = direction register, false = pins
	Value byte
}

// RecordingListener is a test double that records every notification.
type RecordingListener struct {
	Writes []Write
}

// OnPinsChanged records a pin notification.
func (r *RecordingListener) OnPinsChanged(v byte) {
	r.Writes = append(r.Writes, Write{Value: v})
}

// OnDirectionChanged records a direction notification.
func (r *RecordingListener) OnDirectionChanged(v byte) {
	r.Writes = append(r.Writes, Write{DDR: true, Value: v})
}

// Reset clears recorded writes.
func (r *RecordingListener) Reset() {
	r.Writes = nil
}

// ScriptFirmware replays a fixed list of register writes, one per Step,
// then idles.
type ScriptFirmware struct {
	Script []Write
	Cycles uint64 // cycles per step; 0 = 1

	index  int
	resets int
}

// Reset rewinds the script.
func (f *ScriptFirmware) Reset(m *Machine) {
	f.index = 0
	f.resets++
}

// Step performs the next scripted write.
func (f *ScriptFirmware) Step(m *Machine) uint64 {
	if f.index < len(f.Script) {
		w := f.Script[f.index]
		f.index++
		if w.DDR {
			m.Port().WriteDDR(w.Value)
		} else {
			m.Port().WritePORT(w.Value)
		}
	}
	if f.Cycles == 0 {
		return 1
	}
	return f.Cycles
}

// Done reports whether the script has been fully replayed.
func (f *ScriptFirmware) Done() bool {
	return f.index >= len(f.Script)
}

// Resets returns how many times the machine reset the script.
func (f *ScriptFirmware) Resets() int {
	return f.resets
}
