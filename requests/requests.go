package requests

// Save asks the store to persist a new snippet.
type Save struct {
	Content string `json:"content"`
}

// Query filters the collection by a case-insensitive substring pattern. An
// empty pattern matches the whole collection.
type Query struct {
	Pattern string `json:"pattern"`
}

// Reload asks the store to reconcile its index with disk truth.
type Reload struct{}
