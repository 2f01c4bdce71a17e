package entity

// UnknownContext is returned by retrieval when no relevant passage exists.
// Strategies must answer with disclosed uncertainty when they receive it.
const UnknownContext = "unknown"

// Passage is one stored chunk returned by a vector search.
type Passage struct {
	Content string
	Source  string
	Score   float32
}

// Document is one chunk prepared for indexing.
type Document struct {
	Content string
	Source  string
	Chunk   int
}

// IndexStatus reports whether the knowledge base can serve lookups.
type IndexStatus string

const (
	IndexReady   IndexStatus = "ready"
	IndexEmpty   IndexStatus = "empty"
	IndexMissing IndexStatus = "missing"
)
