package imagegen

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind is the failure category surfaced to callers.
type ErrorKind string

const (
	KindInvalidCredential   ErrorKind = "invalid_credential"
	KindInsufficientBalance ErrorKind = "insufficient_balance"
	KindForbidden           ErrorKind = "forbidden"
	KindBadRequest          ErrorKind = "bad_request"
	KindRateLimited         ErrorKind = "rate_limited"
	KindUpstreamFailure     ErrorKind = "upstream_failure"
	KindStreamDecodeFailure ErrorKind = "stream_decode_failure"
	KindNoImagesProduced    ErrorKind = "no_images_produced"
)

var publicMessages = map[ErrorKind]string{
	KindInvalidCredential:   "Invalid or expired NovelAI token",
	KindInsufficientBalance: "Insufficient Anlas balance for this generation",
	KindForbidden:           "This model is not available for your subscription",
	KindBadRequest:          "The generation request was rejected as invalid",
	KindRateLimited:         "Too many concurrent generations, try again shortly",
	KindUpstreamFailure:     "Image generation failed",
	KindStreamDecodeFailure: "Image generation failed",
	KindNoImagesProduced:    "No images were generated",
}

// passthrough lists the upstream codes surfaced with their original status.
var passthrough = map[int]ErrorKind{
	http.StatusBadRequest:      KindBadRequest,
	http.StatusUnauthorized:    KindInvalidCredential,
	http.StatusPaymentRequired: KindInsufficientBalance,
	http.StatusForbidden:       KindForbidden,
	http.StatusTooManyRequests: KindRateLimited,
}

// ClassifiedError is a terminal generation failure. StatusCode is the code
// surfaced outward; Detail keeps the raw upstream text for server logs only.
type ClassifiedError struct {
	Kind       ErrorKind
	StatusCode int
	// UpstreamStatus is the code the remote service returned, when any.
	UpstreamStatus int
	Detail         string
	Err            error
}

func (e *ClassifiedError) Error() string {
	msg := fmt.Sprintf("%s (status %d)", e.Kind, e.StatusCode)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ClassifiedError) Unwrap() error {
	return e.Err
}

// HTTPStatus is the status code to report to the caller.
func (e *ClassifiedError) HTTPStatus() int {
	if e.StatusCode == 0 {
		return http.StatusInternalServerError
	}
	return e.StatusCode
}

// PublicMessage is the category message safe to show an end user.
func (e *ClassifiedError) PublicMessage() string {
	if msg, ok := publicMessages[e.Kind]; ok {
		return msg
	}
	return publicMessages[KindUpstreamFailure]
}

// ClassifyStatus maps a non-2xx upstream response. body is kept verbatim.
func ClassifyStatus(status int, body string) *ClassifiedError {
	if kind, ok := passthrough[status]; ok {
		return &ClassifiedError{Kind: kind, StatusCode: status, UpstreamStatus: status, Detail: body}
	}
	return &ClassifiedError{
		Kind:           KindUpstreamFailure,
		StatusCode:     http.StatusInternalServerError,
		UpstreamStatus: status,
		Detail:         fmt.Sprintf("upstream status %d: %s", status, body),
	}
}

// ClassifyTransport wraps a connection, timeout or cancellation failure.
func ClassifyTransport(err error) *ClassifiedError {
	return &ClassifiedError{
		Kind:       KindUpstreamFailure,
		StatusCode: http.StatusInternalServerError,
		Detail:     "transport failure",
		Err:        err,
	}
}

// ClassifyDecode wraps a malformed frame or payload.
func ClassifyDecode(err error) *ClassifiedError {
	return &ClassifiedError{
		Kind:       KindStreamDecodeFailure,
		StatusCode: http.StatusInternalServerError,
		Detail:     "malformed response stream",
		Err:        err,
	}
}

// NoImages reports a well-formed response that carried no images.
func NoImages() *ClassifiedError {
	return &ClassifiedError{
		Kind:       KindNoImagesProduced,
		StatusCode: http.StatusInternalServerError,
		Detail:     "response contained no images",
	}
}

// AsClassified extracts a ClassifiedError from err's chain.
func AsClassified(err error) (*ClassifiedError, bool) {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// IsKind reports whether err carries a ClassifiedError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	ce, ok := AsClassified(err)
	return ok && ce.Kind == kind
}
