package pathutil

import "sync"

const (
	initialTokens = 8  // inventory paths rarely go deeper
	maxPooledCap  = 64 // builders grown past this are left to the GC
)

var builders = sync.Pool{
	New: func() any {
		return &PathBuilder{segments: make([]string, 0, initialTokens)}
	},
}

// Get returns an empty PathBuilder from the pool. The inventory crawler
// holds one for the whole crawl and pushes a token per member it enters,
// so PathFromRoot and Depth of each reference come from the same builder.
func Get() *PathBuilder {
	p := builders.Get().(*PathBuilder)
	p.Reset()
	return p
}

// Put hands p back for reuse. Nil and oversized builders are dropped.
func Put(p *PathBuilder) {
	if p == nil || cap(p.segments) > maxPooledCap {
		return
	}
	builders.Put(p)
}
