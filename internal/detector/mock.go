package detector

import (
	"sync"

	"gocv.io/x/gocv"

	"github.com/getesper/Gladiator-MegaFlexTronics-POC1/internal/pose"
)

// MockDetector is a test implementation of the Detector interface.
// It replays a configured sequence of skeletons, one per call.
type MockDetector struct {
	mu       sync.Mutex
	sequence []*pose.Skeleton
	fixed    *pose.Skeleton
	err      error
	calls    int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetSkeleton makes every call return s.
func (m *MockDetector) SetSkeleton(s *pose.Skeleton) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fixed = s
	m.sequence = nil
}

// SetSequence makes call i return seq[i]. Nil entries mean no body; calls
// past the end return nil.
func (m *MockDetector) SetSequence(seq []*pose.Skeleton) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequence = seq
	m.fixed = nil
	m.calls = 0
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect ran.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the next configured skeleton or error.
func (m *MockDetector) Detect(frame *gocv.Mat) (*pose.Skeleton, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.calls
	m.calls++

	if m.err != nil {
		return nil, m.err
	}
	if m.sequence != nil {
		if i >= len(m.sequence) {
			return nil, nil
		}
		return m.sequence[i], nil
	}
	return m.fixed, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}
