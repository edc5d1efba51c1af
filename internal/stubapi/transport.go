package stubapi

import "net/http"

// appTransport routes http.Client requests into the fiber app in-process,
// so client code can exercise the full stub without opening a socket.
type appTransport struct {
	server *Server
}

func (t appTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.server.app.Test(req, -1)
}

// HTTPClient returns an http.Client whose requests are served by this
// stub in-process.
func (s *Server) HTTPClient() *http.Client {
	return &http.Client{Transport: appTransport{server: s}}
}
