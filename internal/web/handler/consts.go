package handler

const (
	// RootPath is the root path the route group.
	RootPath = "/"

	// APIPath prefixes every json route.
	APIPath = RootPath + "api"

	// ErrNilFatalLogMsg is used if a required dependency is nil.
	ErrNilFatalLogMsg = "router or service is nil"

	// InvalidBody is the error message for a request body that fails validation.
	InvalidBody = "Invalid body"
)

// OK is the body of successful calls without payload.
type OK struct {
	OK bool `json:"ok"`
}
