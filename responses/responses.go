package responses

import (
	"github.com/claudehenchoz/trinket/snippet"
)

// Save is the reply to a successful save request.
type Save struct {
	Snippet *snippet.Snippet `json:"snippet"`
}

// Query is the reply to a query request. Results preserve the index's
// newest-first ordering.
type Query struct {
	Total   int              `json:"total"`
	Results []snippet.Result `json:"results"`
}

// Reload - information about a reload
type Reload struct {
	// did it work or not
	Success bool `json:"success"`
	// this is for humans
	ErrorMessage string `json:"errorMessage,omitempty"`
	Stats        Stats  `json:"stats"`
}

// Stats collected while reloading
type Stats struct {
	NumberOfSnippets int     `json:"numberOfSnippets"`
	Runtime          float64 `json:"runtime"`
}
