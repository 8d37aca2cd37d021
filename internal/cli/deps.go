package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tjfontaine/polyglot-fetch/internal/config"
	"github.com/tjfontaine/polyglot-fetch/internal/history"
	"github.com/tjfontaine/polyglot-fetch/internal/request"
	"github.com/tjfontaine/polyglot-fetch/internal/storage"
	"github.com/tjfontaine/polyglot-fetch/internal/storage/memory"
	"github.com/tjfontaine/polyglot-fetch/internal/storage/sqlite"
	"github.com/tjfontaine/polyglot-fetch/internal/telemetry"
	"github.com/tjfontaine/polyglot-fetch/internal/transport"
	"github.com/tjfontaine/polyglot-fetch/pkg/fetch"
)

const serviceName = "fetchctl"

// deps holds everything a command opened and must release.
type deps struct {
	client   *fetch.Client
	store    storage.Store
	registry *prometheus.Registry
	tracer   telemetry.ShutdownFunc

	metricsFile string
	logger      *slog.Logger
}

func openStore(cfg config.StorageConfig) (storage.Store, error) {
	switch cfg.Type {
	case "memory":
		return memory.New(), nil
	case "sqlite":
		store, err := sqlite.New(cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("open history: %w", err)
		}
		return store, nil
	}
	return nil, nil
}

// openDeps wires a client from cfg. Traces go to traceOut.
func openDeps(cfg *config.Config, logger *slog.Logger, traceOut io.Writer) (_ *deps, err error) {
	d := &deps{
		metricsFile: cfg.Telemetry.MetricsFile,
		logger:      logger,
	}
	defer func() {
		if err != nil {
			d.Close(context.Background())
		}
	}()

	if d.store, err = openStore(cfg.Storage); err != nil {
		return nil, err
	}

	httpOpts := []transport.HTTPOption{
		transport.WithTimeout(cfg.Client.Timeout),
		transport.WithMiddleware(transport.Logging(logger)),
	}
	if cfg.Client.SafeDial {
		httpOpts = append(httpOpts, transport.WithSafeDialer())
	}

	recorderOpts := []history.Option{history.WithLogger(logger)}
	if d.store != nil {
		recorderOpts = append(recorderOpts, history.WithStore(d.store))
	}

	if cfg.Telemetry.MetricsFile != "" {
		d.registry = prometheus.NewRegistry()
		metrics := telemetry.NewMetrics(d.registry)
		httpOpts = append(httpOpts, transport.WithMiddleware(metrics.InstrumentRoundTripper))
		recorderOpts = append(recorderOpts, history.WithOutcomeCounter(metrics))
	}

	if cfg.Telemetry.Tracing {
		if d.tracer, err = telemetry.InitTracer(serviceName, traceOut, logger); err != nil {
			return nil, fmt.Errorf("init tracing: %w", err)
		}
		httpOpts = append(httpOpts, transport.WithTracing())
	}

	requestOpts := []request.Option{
		request.WithUserAgent(cfg.Client.UserAgent),
		request.WithRequestIDs(cfg.Client.RequestID),
	}
	for k, v := range cfg.Client.Headers {
		requestOpts = append(requestOpts, request.WithDefaultHeader(k, v))
	}

	d.client, err = fetch.New(
		fetch.WithBaseURL(cfg.Client.BaseURL),
		fetch.WithHTTPOptions(httpOpts...),
		fetch.WithFileRoot(cfg.Client.FileRoot),
		fetch.WithRequestOptions(requestOpts...),
		fetch.WithAcceptedRange(cfg.Classifier.AcceptMin, cfg.Classifier.AcceptMax),
		fetch.WithRetain(cfg.Pipeline.Retain),
		fetch.WithRecorder(history.NewRecorder(recorderOpts...)),
		fetch.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	return d, nil
}

// Close releases everything in reverse order of opening. Failures are
// logged; the command's own result is what matters to the caller.
func (d *deps) Close(ctx context.Context) {
	if d.client != nil {
		d.client.Close()
	}
	if d.registry != nil {
		if err := telemetry.WriteFile(d.metricsFile, d.registry); err != nil {
			d.logger.Error("failed to write metrics", slog.String("path", d.metricsFile), slog.String("error", err.Error()))
		}
	}
	if d.tracer != nil {
		if err := d.tracer(ctx); err != nil {
			d.logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
		}
	}
	if d.store != nil {
		if err := d.store.Close(); err != nil {
			d.logger.Error("failed to close history", slog.String("error", err.Error()))
		}
	}
}
