// Package telemetry delivers finished-run records to the collector.
//
// Delivery is best effort. Report never blocks the caller: the record is
// posted on its own goroutine with its own timeout and the outcome only
// reaches the diagnostics log and an optional observer.
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/louisbranch/aurora-runner/internal/platform/errors"
	"github.com/louisbranch/aurora-runner/internal/platform/timeouts"
	"github.com/louisbranch/aurora-runner/internal/services/shared/sessionrecord"
)

const tracerName = "github.com/louisbranch/aurora-runner/internal/services/runner/telemetry"

// Outcome classifies one delivery attempt.
type Outcome string

const (
	OutcomeOK             Outcome = "ok"
	OutcomeHTTPError      Outcome = "http-error"
	OutcomeTimeout        Outcome = "timeout"
	OutcomeNetworkError   Outcome = "network-error"
	OutcomeDisabled       Outcome = "disabled"
	OutcomeInvalidPayload Outcome = "invalid-payload"
)

// Sent reports whether the collector accepted the record.
func (o Outcome) Sent() bool {
	return o == OutcomeOK
}

// Result describes how a record delivery ended.
type Result struct {
	RunID      string
	Record     sessionrecord.Record
	Outcome    Outcome
	StatusCode int
	Duration   time.Duration
	Err        error
}

// Config holds telemetry delivery settings.
type Config struct {
	Endpoint   string        `env:"TELEMETRY_ENDPOINT"`
	SigningKey string        `env:"TELEMETRY_SIGNING_KEY"`
	Timeout    time.Duration `env:"TELEMETRY_TIMEOUT"`
}

// Emitter posts session records to an HTTP endpoint.
type Emitter struct {
	endpoint string
	timeout  time.Duration
	client   *http.Client
	signer   *Signer
	observer func(Result)
	logf     func(string, ...any)
	tracer   trace.Tracer

	wg sync.WaitGroup
}

// Option configures an Emitter.
type Option func(*Emitter)

// WithHTTPClient replaces the HTTP client used for delivery.
func WithHTTPClient(client *http.Client) Option {
	return func(e *Emitter) {
		e.client = client
	}
}

// WithObserver receives every delivery result. It runs on the delivery
// goroutine and must not block.
func WithObserver(observer func(Result)) Option {
	return func(e *Emitter) {
		e.observer = observer
	}
}

// WithLogger routes diagnostics to logf.
func WithLogger(logf func(string, ...any)) Option {
	return func(e *Emitter) {
		e.logf = logf
	}
}

// WithSigner attaches a bearer token to every delivery.
func WithSigner(signer *Signer) Option {
	return func(e *Emitter) {
		e.signer = signer
	}
}

// NewEmitter builds an Emitter from cfg. An empty endpoint disables delivery.
func NewEmitter(cfg Config, opts ...Option) *Emitter {
	e := &Emitter{
		endpoint: cfg.Endpoint,
		timeout:  cfg.Timeout,
		client:   http.DefaultClient,
		logf:     log.Printf,
		tracer:   otel.Tracer(tracerName),
	}
	if e.timeout <= 0 {
		e.timeout = timeouts.TelemetryDelivery
	}
	if cfg.SigningKey != "" {
		e.signer = NewSigner(cfg.SigningKey)
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	if e.client == nil {
		e.client = http.DefaultClient
	}
	if e.logf == nil {
		e.logf = func(string, ...any) {}
	}
	return e
}

// Enabled reports whether an endpoint is configured.
func (e *Emitter) Enabled() bool {
	return e != nil && e.endpoint != ""
}

// Report hands record to a detached delivery goroutine.
func (e *Emitter) Report(runID string, record sessionrecord.Record) {
	if e == nil {
		return
	}
	if skipped, ok := e.precheck(runID, record); !ok {
		e.finish(skipped)
		return
	}
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.Deliver(context.Background(), runID, record)
	}()
}

// Wait blocks until every in-flight delivery has finished.
func (e *Emitter) Wait() {
	if e == nil {
		return
	}
	e.wg.Wait()
}

// Deliver posts record and returns the classified result. The attempt is
// bounded by the configured timeout.
func (e *Emitter) Deliver(ctx context.Context, runID string, record sessionrecord.Record) Result {
	if e == nil {
		return Result{RunID: runID, Record: record, Outcome: OutcomeDisabled}
	}
	if skipped, ok := e.precheck(runID, record); !ok {
		e.finish(skipped)
		return skipped
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	ctx, span := e.tracer.Start(ctx, "telemetry.deliver", trace.WithAttributes(
		attribute.String("run.id", runID),
		attribute.String("record.status", record.Status),
	))
	defer span.End()

	started := time.Now()
	result := e.post(ctx, runID, record)
	result.Duration = time.Since(started)

	span.SetAttributes(attribute.String("telemetry.outcome", string(result.Outcome)))
	if result.StatusCode != 0 {
		span.SetAttributes(attribute.Int("http.status_code", result.StatusCode))
	}
	if result.Err != nil {
		span.RecordError(result.Err)
		span.SetStatus(codes.Error, string(result.Outcome))
	}

	e.finish(result)
	return result
}

func (e *Emitter) precheck(runID string, record sessionrecord.Record) (Result, bool) {
	result := Result{RunID: runID, Record: record}
	if !e.Enabled() {
		result.Outcome = OutcomeDisabled
		result.Err = apperrors.New(apperrors.CodeTelemetryDisabled, "telemetry endpoint not configured")
		return result, false
	}
	if err := record.Validate(); err != nil {
		result.Outcome = OutcomeInvalidPayload
		result.Err = apperrors.Wrap(apperrors.CodeTelemetryInvalidPayload, "validate record", err)
		return result, false
	}
	return result, true
}

func (e *Emitter) post(ctx context.Context, runID string, record sessionrecord.Record) Result {
	result := Result{RunID: runID, Record: record}

	body, err := json.Marshal(record)
	if err != nil {
		result.Outcome = OutcomeInvalidPayload
		result.Err = apperrors.Wrap(apperrors.CodeTelemetryEncode, "encode record", err)
		return result
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		result.Outcome = OutcomeNetworkError
		result.Err = apperrors.Wrap(apperrors.CodeTelemetryNetwork, "build request", err)
		return result
	}
	req.Header.Set("Content-Type", "application/json")
	if runID != "" {
		req.Header.Set(sessionrecord.RunIDHeader, runID)
	}
	if e.signer != nil {
		token, err := e.signer.Sign(runID)
		if err != nil {
			result.Outcome = OutcomeInvalidPayload
			result.Err = apperrors.Wrap(apperrors.CodeTelemetrySign, "sign record", err)
			return result
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		result.Outcome, result.Err = classifyTransportError(ctx, err)
		return result
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	result.StatusCode = resp.StatusCode
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		result.Outcome = OutcomeHTTPError
		result.Err = apperrors.New(apperrors.CodeTelemetryHTTPStatus, fmt.Sprintf("collector responded %s", resp.Status))
		return result
	}
	result.Outcome = OutcomeOK
	return result
}

func classifyTransportError(ctx context.Context, err error) (Outcome, error) {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return OutcomeTimeout, apperrors.Wrap(apperrors.CodeTelemetryTimeout, "post record", err)
	case errors.As(err, &netErr) && netErr.Timeout():
		return OutcomeTimeout, apperrors.Wrap(apperrors.CodeTelemetryTimeout, "post record", err)
	default:
		return OutcomeNetworkError, apperrors.Wrap(apperrors.CodeTelemetryNetwork, "post record", err)
	}
}

// finish routes result to the diagnostics log and the observer.
func (e *Emitter) finish(result Result) {
	switch result.Outcome {
	case OutcomeOK:
		e.logf("telemetry run %s delivered in %s", result.RunID, result.Duration)
	case OutcomeDisabled:
		e.logf("telemetry run %s skipped: disabled", result.RunID)
	default:
		e.logf("telemetry run %s failed (%s): %v", result.RunID, result.Outcome, result.Err)
	}
	if e.observer != nil {
		e.observer(result)
	}
}
