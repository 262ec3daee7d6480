package gpio

// FakeWriter records writes for test assertions.
type FakeWriter struct {
	// Writes holds a copy of every value slice passed to Write.
	Writes [][]bool

	// Closed tracks if Close was called.
	Closed bool

	// WriteError, if set, will be returned by Write.
	WriteError error
}

// NewFakeWriter creates a FakeWriter.
func NewFakeWriter() *FakeWriter {
	return &FakeWriter{}
}

// Write records the values.
func (f *FakeWriter) Write(values []bool) error {
	if f.WriteError != nil {
		return f.WriteError
	}
	f.Writes = append(f.Writes, append([]bool(nil), values...))
	return nil
}

// Last returns the most recent write, or nil.
func (f *FakeWriter) Last() []bool {
	if len(f.Writes) == 0 {
		return nil
	}
	return f.Writes[len(f.Writes)-1]
}

// Close marks the writer as closed.
func (f *FakeWriter) Close() error {
	f.Closed = true
	return nil
}
