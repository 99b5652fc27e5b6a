package capture

import "sync"

// MockSource is a Source for tests. It never decodes pixels; Read leaves the
// buffer untouched unless a read error is scripted for that call.
type MockSource struct {
	mu         sync.Mutex
	duration   float64
	open       bool
	openErr    error
	readErrs   map[int]error
	reads      int
	seeks      []float64
	closeCalls int
}

// NewMockSource returns a closed source reporting the given duration.
func NewMockSource(duration float64) *MockSource {
	return &MockSource{duration: duration, readErrs: make(map[int]error)}
}

// SetOpenError makes Open fail with err.
func (m *MockSource) SetOpenError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.openErr = err
}

// SetReadError makes the n-th Read (zero based) fail with err.
func (m *MockSource) SetReadError(n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readErrs[n] = err
}

func (m *MockSource) Open() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.openErr != nil {
		return m.openErr
	}
	m.open = true
	return nil
}

func (m *MockSource) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = false
	m.closeCalls++
	return nil
}

func (m *MockSource) Duration() float64 { return m.duration }

func (m *MockSource) Seek(t float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.open {
		return ErrSourceNotOpen
	}
	m.seeks = append(m.seeks, t)
	return nil
}

func (m *MockSource) Read(buf *FrameBuffer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.open {
		return ErrSourceNotOpen
	}
	n := m.reads
	m.reads++
	return m.readErrs[n]
}

func (m *MockSource) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

// Seeks returns the positions requested so far.
func (m *MockSource) Seeks() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.seeks...)
}

// CloseCalls returns how many times Close ran.
func (m *MockSource) CloseCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeCalls
}
