package binding

// errorMemory remembers the last error message shown to the visitor so a
// repeated failure is reported once
type errorMemory struct {
	last string
}

// observe records err and reports whether it should be surfaced.
// A nil err clears the memory.
func (m *errorMemory) observe(err error, fallback string) bool {
	if err == nil {
		m.last = ""
		return false
	}
	msg := err.Error()
	if msg == "" {
		msg = fallback
	}
	if msg == m.last {
		return false
	}
	m.last = msg
	return true
}

func (m *errorMemory) reset() {
	m.last = ""
}

func (m *errorMemory) message() string {
	return m.last
}
