package runner

import (
	"fmt"
	"sync"
)

// cappedBuffer keeps the first limit bytes written to it and counts the
// rest. exec writes to it from a pipe-draining goroutine, so the child
// never blocks on a full pipe no matter how much it prints.
type cappedBuffer struct {
	mu      sync.Mutex
	limit   int
	buf     []byte
	dropped int64
}

func newCappedBuffer(limit int) *cappedBuffer {
	return &cappedBuffer{limit: limit}
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	room := b.limit - len(b.buf)
	if room > len(p) {
		room = len(p)
	}
	if room > 0 {
		b.buf = append(b.buf, p[:room]...)
	}
	b.dropped += int64(len(p) - room)
	return len(p), nil
}

func (b *cappedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.dropped == 0 {
		return string(b.buf)
	}
	return fmt.Sprintf("%s\n[capture truncated, %d bytes dropped]", b.buf, b.dropped)
}
