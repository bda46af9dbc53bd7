package otel

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/metric"

	"github.com/wanderly/wanderly-go/auth/transport"
)

var (
	ErrNilMeter  = errors.New("nil meter")
	ErrNilSource = errors.New("nil metrics source")
)

// Source is any holder of refresh-cycle counters, typically
// *transport.Metrics.
type Source interface {
	Snapshot() transport.MetricsSnapshot
}

type observedCounter struct {
	id         transport.MetricID
	instrument metric.Int64ObservableCounter
}

// Exporter publishes the transport counters as OpenTelemetry observable
// counters. Values are read from a snapshot on each collection, so the
// exporter adds no cost to the request path.
type Exporter struct {
	source       Source
	registration metric.Registration
	counters     []observedCounter
}

func NewExporter(meter metric.Meter, source Source) (*Exporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	exporter := &Exporter{
		source:   source,
		counters: make([]observedCounter, 0, len(transport.MetricDefs)),
	}
	observables := make([]metric.Observable, 0, len(transport.MetricDefs))
	for _, def := range transport.MetricDefs {
		instrument, err := meter.Int64ObservableCounter(def.Name, metric.WithDescription(def.Help))
		if err != nil {
			return nil, fmt.Errorf("create observable counter %s: %w", def.Name, err)
		}
		exporter.counters = append(exporter.counters, observedCounter{id: def.ID, instrument: instrument})
		observables = append(observables, instrument)
	}

	registration, err := meter.RegisterCallback(func(_ context.Context, observer metric.Observer) error {
		snapshot := exporter.source.Snapshot()
		for _, counter := range exporter.counters {
			observer.ObserveInt64(counter.instrument, int64(snapshot.Counters[counter.id]))
		}
		return nil
	}, observables...)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}
	exporter.registration = registration
	return exporter, nil
}

// Close unregisters the collection callback.
func (e *Exporter) Close() error {
	if e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
