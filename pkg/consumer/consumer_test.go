package consumer_test

import (
	"math/rand"
	"sync"
)

const kB = 1024

// generateTestContent generates a byte slice of random content
func generateTestContent(size int64) []byte {
	content := make([]byte, size)
	for i := range content {
		content[i] = byte(rand.Intn(256))
	}
	return content
}

// memWriterAt is an in-memory io.WriterAt that records the order of writes.
type memWriterAt struct {
	mu      sync.Mutex
	buf     []byte
	offsets []int64
}

func newMemWriterAt(size int) *memWriterAt {
	return &memWriterAt{buf: make([]byte, size)}
}

func (m *memWriterAt) WriteAt(p []byte, off int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offsets = append(m.offsets, off)
	return copy(m.buf[off:], p), nil
}
