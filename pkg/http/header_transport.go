package http

import "net/http"

// headerTransport sets headers the caller did not set itself. Empty values are skipped.
type headerTransport struct {
	headers   map[string]string
	transport http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	reqCopy := req.Clone(req.Context())
	for k, v := range t.headers {
		if v != "" && reqCopy.Header.Get(k) == "" {
			reqCopy.Header.Set(k, v)
		}
	}
	return t.transport.RoundTrip(reqCopy)
}

// WithStaticHeaders adds headers to every request unless the request already sets them
func WithStaticHeaders(headers map[string]string) HttpOpts {
	copied := make(map[string]string, len(headers))
	for k, v := range headers {
		copied[k] = v
	}
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &headerTransport{
			headers:   copied,
			transport: rt,
		}
	})
}

// WithAuthToken sends a bearer token. An empty token leaves requests unauthenticated.
func WithAuthToken(token string) HttpOpts {
	if token == "" {
		return func(*httpConfig) {}
	}
	return WithStaticHeaders(map[string]string{"Authorization": "Bearer " + token})
}
