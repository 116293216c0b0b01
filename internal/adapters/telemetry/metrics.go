package telemetry

import (
	"context"
	"fmt"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/comitanigiacomo/kanso-learn/internal/config"
	"github.com/comitanigiacomo/kanso-learn/internal/core/services"
)

const (
	serviceName    = "kanso-learn"
	serviceVersion = "1.0.0"
	meterName      = "github.com/comitanigiacomo/kanso-learn"
)

var _ services.StudyMetrics = (*Recorder)(nil)

// Recorder counts study activity.
type Recorder struct {
	sessionsTotal  metric.Int64Counter
	deletedTotal   metric.Int64Counter
	minutesTotal   metric.Int64Counter
	completedTotal metric.Int64Counter
}

func NewRecorder(meter metric.Meter) (*Recorder, error) {
	sessionsTotal, err := meter.Int64Counter(
		"kanso_study_sessions_total",
		metric.WithDescription("Study sessions logged"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sessions counter: %w", err)
	}

	deletedTotal, err := meter.Int64Counter(
		"kanso_study_sessions_deleted_total",
		metric.WithDescription("Study sessions deleted"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating deleted counter: %w", err)
	}

	minutesTotal, err := meter.Int64Counter(
		"kanso_study_minutes_total",
		metric.WithDescription("Minutes logged, split by the direction attribute"),
		metric.WithUnit("min"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating minutes counter: %w", err)
	}

	completedTotal, err := meter.Int64Counter(
		"kanso_resources_completed_total",
		metric.WithDescription("Learning resources marked as completed"),
		metric.WithUnit("{resource}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating completed counter: %w", err)
	}

	return &Recorder{
		sessionsTotal:  sessionsTotal,
		deletedTotal:   deletedTotal,
		minutesTotal:   minutesTotal,
		completedTotal: completedTotal,
	}, nil
}

func (r *Recorder) SessionLogged(ctx context.Context, minutes int, linked bool) {
	r.sessionsTotal.Add(ctx, 1, metric.WithAttributes(attribute.Bool("linked_resource", linked)))
	r.minutesTotal.Add(ctx, int64(minutes), metric.WithAttributes(attribute.String("direction", "logged")))
}

// Counters are monotonic, so deletions are counted rather than subtracted.
func (r *Recorder) SessionDeleted(ctx context.Context, minutes int) {
	r.deletedTotal.Add(ctx, 1)
	r.minutesTotal.Add(ctx, int64(minutes), metric.WithAttributes(attribute.String("direction", "deleted")))
}

func (r *Recorder) ResourceCompleted(ctx context.Context) {
	r.completedTotal.Add(ctx, 1)
}

// Setup builds the meter provider. Without an endpoint metrics are recorded
// in process but never exported. The returned func flushes and shuts down.
func Setup(ctx context.Context, cfg config.Telemetry) (*Recorder, func(context.Context) error, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("creating resource: %w", err)
	}

	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}

	if cfg.Endpoint != "" {
		expOpts := []otlpmetricgrpc.Option{
			otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
		}
		if cfg.Insecure {
			expOpts = append(expOpts, otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
			expOpts = append(expOpts, otlpmetricgrpc.WithInsecure())
		}

		exp, err := otlpmetricgrpc.New(ctx, expOpts...)
		if err != nil {
			return nil, nil, fmt.Errorf("creating OTLP exporter: %w", err)
		}
		opts = append(opts, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)))
		log.Printf("[METRICS] Exporting to %s", cfg.Endpoint)
	} else {
		log.Println("[METRICS] No OTLP endpoint configured, metrics stay local")
	}

	provider := sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(provider)

	recorder, err := NewRecorder(provider.Meter(meterName))
	if err != nil {
		_ = provider.Shutdown(ctx)
		return nil, nil, err
	}

	return recorder, provider.Shutdown, nil
}
