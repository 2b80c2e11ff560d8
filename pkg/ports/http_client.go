package ports

import "net/http"

// HTTPClient is the transport the panel client sends its requests through.
// *http.Client satisfies it; tests inject mocks.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
