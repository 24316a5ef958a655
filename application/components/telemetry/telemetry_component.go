package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/taskdeck/taskdeck/application/components/logging"
	"github.com/taskdeck/taskdeck/application/consts"
	"github.com/taskdeck/taskdeck/application/core"
)

// TelemetryComponent installs the global OTel tracer and meter
// providers. Spans started by the http middleware flow through the
// exporter selected here.
type TelemetryComponent struct {
	*core.BaseComponent
	cfg      *Config
	traces   *sdktrace.TracerProvider
	metrics  *sdkmetric.MeterProvider
	cleanups []func(context.Context) error
	started  bool
}

func NewTelemetryComponent(cfg *Config) *TelemetryComponent {
	return &TelemetryComponent{
		BaseComponent: core.NewBaseComponent(consts.COMPONENT_TELEMETRY, consts.COMPONENT_LOGGING),
		cfg:           cfg,
	}
}

func (tc *TelemetryComponent) Start(ctx context.Context) error {
	if err := tc.BaseComponent.Start(ctx); err != nil {
		return err
	}
	if tc.cfg == nil || !tc.cfg.Enabled {
		return errors.New("telemetry disabled or missing config")
	}
	tc.cfg.applyDefaults()

	// service_name comes from app_info.app_name; there is no guessable default
	if tc.cfg.ServiceName == "" {
		return errors.New("telemetry service_name must be set")
	}

	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithProcess(),
		resource.WithOS(),
		resource.WithHost(),
		resource.WithAttributes(semconv.ServiceName(tc.cfg.ServiceName)),
	)
	if err != nil {
		return fmt.Errorf("telemetry resource init: %w", err)
	}

	spanExp, metricExp, err := tc.buildExporters(ctx)
	if err != nil {
		return err
	}

	tc.traces = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(spanExp),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(tc.cfg.SampleRatio))),
		sdktrace.WithResource(res),
	)
	tc.metrics = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExp, sdkmetric.WithInterval(15*time.Second))),
	)
	tc.cleanups = append(tc.cleanups,
		tc.shutdownWithTimeout(tc.traces.Shutdown),
		tc.shutdownWithTimeout(tc.metrics.Shutdown),
	)

	otel.SetTracerProvider(tc.traces)
	otel.SetMeterProvider(tc.metrics)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	tc.started = true
	logging.Info(ctx, "telemetry started",
		zap.String("exporter", string(tc.cfg.Exporter)),
		zap.Float64("sample_ratio", tc.cfg.SampleRatio),
		zap.String("service_name", tc.cfg.ServiceName),
	)
	return nil
}

// buildExporters creates the span and metric exporters for the
// configured backend in one place so both always agree.
func (tc *TelemetryComponent) buildExporters(ctx context.Context) (sdktrace.SpanExporter, sdkmetric.Exporter, error) {
	switch tc.cfg.Exporter {
	case ExporterStdout:
		w, err := tc.outputWriter()
		if err != nil {
			return nil, nil, err
		}
		traceOpts := []stdouttrace.Option{stdouttrace.WithWriter(w)}
		if tc.cfg.StdoutPretty {
			traceOpts = append(traceOpts, stdouttrace.WithPrettyPrint())
		}
		spanExp, err := stdouttrace.New(traceOpts...)
		if err != nil {
			return nil, nil, fmt.Errorf("stdout trace exporter: %w", err)
		}
		metricExp, err := stdoutmetric.New(stdoutmetric.WithWriter(w))
		if err != nil {
			return nil, nil, fmt.Errorf("stdout metric exporter: %w", err)
		}
		return spanExp, metricExp, nil

	case ExporterOTLP:
		if tc.cfg.OTLP == nil || tc.cfg.OTLP.Endpoint == "" {
			return nil, nil, errors.New("otlp exporter selected but otlp.endpoint empty")
		}
		timeout := tc.cfg.otlpTimeout()
		traceOpts := []otlptracegrpc.Option{
			otlptracegrpc.WithEndpoint(tc.cfg.OTLP.Endpoint),
			otlptracegrpc.WithTimeout(timeout),
		}
		metricOpts := []otlpmetricgrpc.Option{
			otlpmetricgrpc.WithEndpoint(tc.cfg.OTLP.Endpoint),
			otlpmetricgrpc.WithTimeout(timeout),
		}
		if tc.cfg.OTLP.Insecure {
			traceOpts = append(traceOpts, otlptracegrpc.WithInsecure())
			metricOpts = append(metricOpts, otlpmetricgrpc.WithInsecure())
		} else {
			traceOpts = append(traceOpts, otlptracegrpc.WithDialOption(grpc.WithBlock()))
			metricOpts = append(metricOpts, otlpmetricgrpc.WithDialOption(grpc.WithBlock()))
		}
		spanExp, err := otlptracegrpc.New(ctx, traceOpts...)
		if err != nil {
			return nil, nil, fmt.Errorf("otlp trace exporter: %w", err)
		}
		metricExp, err := otlpmetricgrpc.New(ctx, metricOpts...)
		if err != nil {
			return nil, nil, fmt.Errorf("otlp metric exporter: %w", err)
		}
		return spanExp, metricExp, nil
	}
	return nil, nil, fmt.Errorf("unsupported exporter: %s", tc.cfg.Exporter)
}

func (tc *TelemetryComponent) shutdownWithTimeout(fn func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		c, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return fn(c)
	}
}

func (tc *TelemetryComponent) outputWriter() (io.Writer, error) {
	if tc.cfg.StdoutFile == "" {
		return os.Stdout, nil
	}
	f, err := os.OpenFile(tc.cfg.StdoutFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open telemetry output file: %w", err)
	}
	tc.cleanups = append(tc.cleanups, func(context.Context) error { return f.Close() })
	return f, nil
}

func (tc *TelemetryComponent) Stop(ctx context.Context) error {
	if !tc.started {
		return nil
	}
	var errs []error
	for i := len(tc.cleanups) - 1; i >= 0; i-- {
		if err := tc.cleanups[i](ctx); err != nil {
			errs = append(errs, err)
			logging.Warn(ctx, "telemetry shutdown error", zap.Error(err))
		}
	}
	if err := tc.BaseComponent.Stop(ctx); err != nil {
		errs = append(errs, err)
	}
	tc.started = false
	return errors.Join(errs...)
}

func (tc *TelemetryComponent) HealthCheck() error {
	if err := tc.BaseComponent.HealthCheck(); err != nil {
		return err
	}
	if tc.traces == nil || tc.metrics == nil {
		return errors.New("telemetry providers not initialized")
	}
	return nil
}

func (tc *TelemetryComponent) Tracer(name string) trace.Tracer {
	if tc.traces == nil {
		return otel.Tracer(name)
	}
	return tc.traces.Tracer(name)
}
