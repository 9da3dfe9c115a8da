package api

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/louisbranch/aurora-runner/internal/platform/errors"
	"github.com/louisbranch/aurora-runner/internal/services/collector/filter"
	"github.com/louisbranch/aurora-runner/internal/services/collector/storage"
	"github.com/louisbranch/aurora-runner/internal/services/shared/sessionrecord"
)

const (
	// MaxRecordBytes caps the ingest request body.
	MaxRecordBytes = 16 << 10
	// DefaultPageSize applies when page_size is omitted.
	DefaultPageSize = 50
	// MaxPageSize clamps larger page_size values.
	MaxPageSize = 200
)

var (
	errNotFound     = apperrors.New(apperrors.CodeNotFound, "not found")
	errUnavailable  = apperrors.New(apperrors.CodeStorageUnavailable, "storage unavailable")
	errTooLarge     = apperrors.New(apperrors.CodeRequestTooLarge, "request body too large")
	errUnsupported  = apperrors.New(apperrors.CodeUnsupportedMedia, "content type must be application/json")
	errUnauthorized = apperrors.New(apperrors.CodeRecordUnauthorized, "invalid record signature")
	errPageSize     = apperrors.New(apperrors.CodePageSizeInvalid, "page size must be a positive integer")
)

// recordResponse is the JSON shape of one stored record.
type recordResponse struct {
	ID           string    `json:"id"`
	RunID        string    `json:"run_id,omitempty"`
	Score        int64     `json:"score"`
	Distance     int64     `json:"distance"`
	Level        int       `json:"level"`
	Status       string    `json:"status"`
	DifficultyID string    `json:"difficulty_id"`
	EndedAt      time.Time `json:"ended_at"`
	ReceivedAt   time.Time `json:"received_at"`
}

type listResponse struct {
	Records       []recordResponse `json:"records"`
	NextPageToken string           `json:"next_page_token,omitempty"`
}

type ingestResponse struct {
	ID        string `json:"id,omitempty"`
	RunID     string `json:"run_id,omitempty"`
	Duplicate bool   `json:"duplicate"`
}

type statsEntry struct {
	DifficultyID  string `json:"difficulty_id"`
	Runs          int64  `json:"runs"`
	Victories     int64  `json:"victories"`
	BestScore     int64  `json:"best_score"`
	TotalDistance int64  `json:"total_distance"`
}

type statsResponse struct {
	Difficulties []statsEntry `json:"difficulties"`
}

func toRecordResponse(record storage.SessionRecord) recordResponse {
	return recordResponse{
		ID:           record.ID,
		RunID:        record.RunID,
		Score:        record.Record.Score,
		Distance:     record.Record.Distance,
		Level:        record.Record.Level,
		Status:       record.Record.Status,
		DifficultyID: record.Record.DifficultyID,
		EndedAt:      record.Record.EndedAt.UTC(),
		ReceivedAt:   record.ReceivedAt.UTC(),
	}
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, h.resolver, err)
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	if h.ping != nil {
		if err := h.ping(r.Context()); err != nil {
			h.logf("health check failed: %v", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ingest stores one session record. A repeated run id is acknowledged
// without storing a second copy.
func (h *handler) ingest(w http.ResponseWriter, r *http.Request) {
	runID := strings.TrimSpace(r.Header.Get(sessionrecord.RunIDHeader))
	ctx, span := h.tracer.Start(r.Context(), "collector.ingest", trace.WithAttributes(
		attribute.String("run.id", runID),
	))
	defer span.End()

	err := h.ingestRecord(w, r.WithContext(ctx), runID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(apperrors.CodeOf(err)))
		h.fail(w, r, err)
	}
}

func (h *handler) ingestRecord(w http.ResponseWriter, r *http.Request, runID string) error {
	if err := h.verifier.Verify(r.Header.Get("Authorization"), runID); err != nil {
		h.logf("reject record run=%q: %v", runID, err)
		return errUnauthorized
	}

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return errUnsupported
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxRecordBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errTooLarge
		}
		return apperrors.WithMetadata(apperrors.CodeRecordInvalid, "read body", map[string]string{
			"Field":  "body",
			"Reason": "could not be read",
		})
	}

	var record sessionrecord.Record
	if err := json.Unmarshal(body, &record); err != nil {
		return apperrors.WithMetadata(apperrors.CodeRecordInvalid, "decode body", map[string]string{
			"Field":  "body",
			"Reason": "is not valid JSON",
		})
	}
	if err := record.Validate(); err != nil {
		return err
	}

	recordID, err := h.newID()
	if err != nil {
		return apperrors.Wrap(apperrors.CodeUnknown, "generate record id", err)
	}
	stored := storage.SessionRecord{
		ID:         recordID,
		RunID:      runID,
		Record:     record,
		ReceivedAt: h.now().UTC(),
	}
	switch err := h.store.PutSessionRecord(r.Context(), stored); {
	case errors.Is(err, storage.ErrAlreadyExists):
		writeJSON(w, http.StatusAccepted, ingestResponse{RunID: runID, Duplicate: true})
		return nil
	case err != nil:
		h.logf("store record run=%q: %v", runID, err)
		return errUnavailable
	}
	trace.SpanFromContext(r.Context()).SetAttributes(attribute.String("record.id", recordID))
	writeJSON(w, http.StatusAccepted, ingestResponse{ID: recordID, RunID: runID})
	return nil
}

func (h *handler) list(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	pageSize := DefaultPageSize
	if raw := strings.TrimSpace(query.Get("page_size")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value <= 0 {
			h.fail(w, r, errPageSize)
			return
		}
		pageSize = min(value, MaxPageSize)
	}

	where, err := filter.ParseSessionRecordFilter(query.Get("filter"))
	if err != nil {
		h.fail(w, r, apperrors.Wrap(apperrors.CodeFilterInvalid, "parse filter", err))
		return
	}

	page, err := h.store.ListSessionRecords(r.Context(), storage.ListOptions{
		PageSize:  pageSize,
		PageToken: strings.TrimSpace(query.Get("page_token")),
		Where:     where,
	})
	if err != nil {
		h.logf("list records: %v", err)
		h.fail(w, r, errUnavailable)
		return
	}

	resp := listResponse{
		Records:       make([]recordResponse, 0, len(page.Records)),
		NextPageToken: page.NextPageToken,
	}
	for _, record := range page.Records {
		resp.Records = append(resp.Records, toRecordResponse(record))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) get(w http.ResponseWriter, r *http.Request) {
	record, err := h.store.GetSessionRecord(r.Context(), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, storage.ErrNotFound):
		h.fail(w, r, errNotFound)
		return
	case err != nil:
		h.logf("get record: %v", err)
		h.fail(w, r, errUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, toRecordResponse(record))
}

func (h *handler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats(r.Context())
	if err != nil {
		h.logf("stats: %v", err)
		h.fail(w, r, errUnavailable)
		return
	}
	resp := statsResponse{Difficulties: make([]statsEntry, 0, len(stats))}
	for _, entry := range stats {
		resp.Difficulties = append(resp.Difficulties, statsEntry{
			DifficultyID:  entry.DifficultyID,
			Runs:          entry.Runs,
			Victories:     entry.Victories,
			BestScore:     entry.BestScore,
			TotalDistance: entry.TotalDistance,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) leaderboard(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.TopSessionRecords(r.Context(), LeaderboardSize)
	if err != nil {
		h.logf("leaderboard: %v", err)
		h.fail(w, r, errUnavailable)
		return
	}
	templ.Handler(LeaderboardPage(records, h.bundle, h.resolver.Resolve(r))).ServeHTTP(w, r)
}
