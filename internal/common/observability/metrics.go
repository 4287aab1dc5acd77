package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability records job and ranking instruments through OpenTelemetry,
// exported on the default Prometheus registry.
type Observability struct {
	meterProvider   *metric.MeterProvider
	meter           otelmetric.Meter
	jobCounter      otelmetric.Int64Counter
	jobDuration     otelmetric.Float64Histogram
	rankCounter     otelmetric.Int64Counter
	rankDuration    otelmetric.Float64Histogram
	rankedCompanies otelmetric.Int64Histogram
}

func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	return newWithProvider(provider, serviceName)
}

// NewWithReader wires instruments to an explicit reader. Tests pass a
// metric.NewManualReader.
func NewWithReader(reader metric.Reader, serviceName string) *Observability {
	return newWithProvider(metric.NewMeterProvider(metric.WithReader(reader)), serviceName)
}

func newWithProvider(provider *metric.MeterProvider, serviceName string) *Observability {
	meter := provider.Meter(serviceName)

	jobCounter, _ := meter.Int64Counter(
		"jobs.processed",
		otelmetric.WithDescription("Number of jobs processed"),
	)
	jobDuration, _ := meter.Float64Histogram(
		"jobs.duration",
		otelmetric.WithDescription("Job processing duration"),
		otelmetric.WithUnit("ms"),
	)
	rankCounter, _ := meter.Int64Counter(
		"matching.runs",
		otelmetric.WithDescription("Number of ranking runs"),
	)
	rankDuration, _ := meter.Float64Histogram(
		"matching.duration",
		otelmetric.WithDescription("Ranking run duration"),
		otelmetric.WithUnit("ms"),
	)
	rankedCompanies, _ := meter.Int64Histogram(
		"matching.ranked_companies",
		otelmetric.WithDescription("Companies kept per ranking run"),
	)

	return &Observability{
		meterProvider:   provider,
		meter:           meter,
		jobCounter:      jobCounter,
		jobDuration:     jobDuration,
		rankCounter:     rankCounter,
		rankDuration:    rankDuration,
		rankedCompanies: rankedCompanies,
	}
}

// RecordJob counts one handled job and its duration.
func (o *Observability) RecordJob(ctx context.Context, taskType string, duration time.Duration) {
	if o == nil || o.jobCounter == nil {
		return
	}
	attrs := otelmetric.WithAttributes(attribute.String("task_type", taskType))
	o.jobCounter.Add(ctx, 1, attrs)
	o.jobDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
}

// RecordRanking records one engine run. mode is "live" or "degraded".
func (o *Observability) RecordRanking(ctx context.Context, mode string, duration time.Duration, kept int) {
	if o == nil || o.rankCounter == nil {
		return
	}
	attrs := otelmetric.WithAttributes(attribute.String("mode", mode))
	o.rankCounter.Add(ctx, 1, attrs)
	o.rankDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	o.rankedCompanies.Record(ctx, int64(kept), attrs)
}

func (o *Observability) Shutdown() {
	if o == nil || o.meterProvider == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = o.meterProvider.Shutdown(ctx)
}
