// Package otel exports the SDK's refresh-cycle counters through the
// OpenTelemetry metric API.
package otel
