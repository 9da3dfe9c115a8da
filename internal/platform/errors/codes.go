// Package errors provides structured error handling shared by the runner and
// the collector.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Telemetry delivery outcomes (runner side)
	CodeTelemetryDisabled       Code = "TELEMETRY_DISABLED"
	CodeTelemetryInvalidPayload Code = "TELEMETRY_INVALID_PAYLOAD"
	CodeTelemetryEncode         Code = "TELEMETRY_ENCODE_FAILED"
	CodeTelemetrySign           Code = "TELEMETRY_SIGN_FAILED"
	CodeTelemetryHTTPStatus     Code = "TELEMETRY_HTTP_ERROR"
	CodeTelemetryTimeout        Code = "TELEMETRY_TIMEOUT"
	CodeTelemetryNetwork        Code = "TELEMETRY_NETWORK_ERROR"

	// Collector errors
	CodeRecordInvalid      Code = "RECORD_INVALID"
	CodeRecordUnauthorized Code = "RECORD_UNAUTHORIZED"
	CodeFilterInvalid      Code = "FILTER_INVALID"
	CodePageSizeInvalid    Code = "PAGE_SIZE_INVALID"
	CodeNotFound           Code = "NOT_FOUND"
	CodeStorageUnavailable Code = "STORAGE_UNAVAILABLE"
	CodeRequestTooLarge    Code = "REQUEST_TOO_LARGE"
	CodeUnsupportedMedia   Code = "UNSUPPORTED_MEDIA_TYPE"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	// BadRequest - validation failures, bad input
	case CodeRecordInvalid,
		CodeFilterInvalid,
		CodePageSizeInvalid,
		CodeTelemetryInvalidPayload:
		return http.StatusBadRequest

	case CodeRecordUnauthorized:
		return http.StatusUnauthorized

	case CodeNotFound:
		return http.StatusNotFound

	case CodeRequestTooLarge:
		return http.StatusRequestEntityTooLarge

	case CodeUnsupportedMedia:
		return http.StatusUnsupportedMediaType

	case CodeStorageUnavailable:
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}
