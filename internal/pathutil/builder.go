package pathutil

import (
	"strconv"
	"strings"
)

// PathBuilder provides efficient incremental JSON Pointer construction.
// Uses push/pop semantics to avoid allocations during traversal.
// The full pointer is only materialized when String() is called.
type PathBuilder struct {
	segments []string // escaped tokens
	length   int      // Pre-calculated length for String() allocation
}

// Push adds a token to the pointer. The token is escaped on the way in.
func (p *PathBuilder) Push(token string) {
	seg := Escape(token)
	p.segments = append(p.segments, seg)
	p.length += len(seg) + 1 // For slash separator
}

// PushIndex adds a sequence index token.
func (p *PathBuilder) PushIndex(i int) {
	seg := strconv.Itoa(i)
	p.segments = append(p.segments, seg)
	p.length += len(seg) + 1
}

// Pop removes the last token.
func (p *PathBuilder) Pop() {
	if len(p.segments) == 0 {
		return
	}
	last := p.segments[len(p.segments)-1]
	p.segments = p.segments[:len(p.segments)-1]
	p.length -= len(last) + 1
}

// Reset clears the builder for reuse.
func (p *PathBuilder) Reset() {
	p.segments = p.segments[:0]
	p.length = 0
}

// Depth returns the number of tokens currently pushed.
func (p *PathBuilder) Depth() int {
	return len(p.segments)
}

// String materializes the pointer as "#/a/b". Only call when the pointer is needed.
func (p *PathBuilder) String() string {
	if len(p.segments) == 0 {
		return "#"
	}
	var b strings.Builder
	b.Grow(p.length + 1)
	b.WriteByte('#')
	for _, seg := range p.segments {
		b.WriteByte('/')
		b.WriteString(seg)
	}
	return b.String()
}
