package api

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/louisbranch/aurora-runner/internal/platform/errors"
	errori18n "github.com/louisbranch/aurora-runner/internal/platform/errors/i18n"
	"github.com/louisbranch/aurora-runner/internal/services/shared/i18nhttp"
)

var errInternal = apperrors.New(apperrors.CodeUnknown, "internal error")

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders err with a message localized for the request.
func writeError(w http.ResponseWriter, r *http.Request, resolver *i18nhttp.Resolver, err error) {
	code := apperrors.CodeOf(err)
	metadata := apperrors.MetadataOf(err)
	locale := resolver.Resolve(r)
	writeJSON(w, code.HTTPStatus(), errorBody{Error: errorDetail{
		Code:      string(code),
		Message:   errori18n.GetCatalog(locale).Format(string(code), metadata),
		Metadata:  metadata,
		RequestID: RequestIDFromContext(r.Context()),
	}})
}
