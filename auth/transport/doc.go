// Package transport implements the http.RoundTripper that sits behind every
// outgoing Wanderly request: it attaches the active access credential and,
// when the backend answers 401 Unauthorized, funnels the request into a
// single-flight refresh coordinator.
//
// The coordinator guarantees that for any number of overlapping
// authorization failures the refresh endpoint is called exactly once, that
// every blocked request is resolved in the order it arrived, and that a
// failed exchange terminates the session and rejects the whole queue
// uniformly. A request is retried at most once; a replay that is rejected
// again is surfaced to its caller as-is.
package transport
