package handler

// Route type
type Route string

const (
	// RouteSave persist a new snippet
	RouteSave Route = "save"
	// RouteQuery filter the collection by a substring pattern
	RouteQuery Route = "query"
	// RouteReload reconcile the index with disk truth
	RouteReload Route = "reload"
)
