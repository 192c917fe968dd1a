package domain

// Shape distinguishes how a vector store returned its documents.
type Shape int

const (
	// ShapeFlat is a single ordered list of snippets.
	ShapeFlat Shape = iota
	// ShapeNested holds one inner list per submitted query text.
	ShapeNested
)

// Documents is the snippet payload of a collection query. Entries are
// pointers so that a store can report missing documents as nil.
type Documents struct {
	Shape  Shape
	Flat   []*string
	Nested [][]*string
}

// FlatDocuments builds a flat payload.
func FlatDocuments(docs ...*string) Documents {
	return Documents{Shape: ShapeFlat, Flat: docs}
}

// NestedDocuments builds a per-query payload.
func NestedDocuments(lists ...[]*string) Documents {
	return Documents{Shape: ShapeNested, Nested: lists}
}

// QueryResult is what a collection returns for one similarity query.
type QueryResult struct {
	Documents Documents
}

// RetrievalResult holds the normalized snippets of one collection query.
type RetrievalResult struct {
	Collection string
	Snippets   []string
}

// Text returns a pointer to s, for building Documents literals.
func Text(s string) *string { return &s }
