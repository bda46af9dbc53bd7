package transport

import (
	"bytes"
	"io"
	"net/http"
)

func clone(r *http.Request) *http.Request {
	cloned := r.Clone(r.Context())
	// deep-copy body so the request can be replayed after a refresh
	if r.Body != nil && r.Body != http.NoBody {
		buf, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(buf))
		cloned.Body = io.NopCloser(bytes.NewReader(buf))
		cloned.ContentLength = int64(len(buf))
	}
	return cloned
}
