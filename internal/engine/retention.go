package engine

import v1 "github.com/sentio-lab/sentio/internal/api/v1"

// ring is a fixed-capacity buffer of recently ingested comments, kept only
// when raw-text retention is enabled. Memory stays bounded no matter how
// large the corpus grows: once full, the oldest entry is overwritten.
type ring struct {
	buf  []v1.ClassifiedComment
	next int
	full bool
}

func newRing(capacity int) *ring {
	if capacity <= 0 {
		capacity = 1
	}
	return &ring{buf: make([]v1.ClassifiedComment, capacity)}
}

func (r *ring) push(c v1.ClassifiedComment) {
	r.buf[r.next] = c
	r.next++
	if r.next == len(r.buf) {
		r.next = 0
		r.full = true
	}
}

func (r *ring) len() int {
	if r.full {
		return len(r.buf)
	}
	return r.next
}

// items returns retained comments oldest-first.
func (r *ring) items() []v1.ClassifiedComment {
	out := make([]v1.ClassifiedComment, 0, r.len())
	if r.full {
		out = append(out, r.buf[r.next:]...)
	}
	out = append(out, r.buf[:r.next]...)
	return out
}

func (r *ring) reset() {
	r.next = 0
	r.full = false
}
