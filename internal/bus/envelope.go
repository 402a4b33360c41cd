package bus

import (
	"net/http"

	"github.com/golem-exeunit/ai-runtime-supervisor/internal/apperr"
)

// errorEnvelope is the {kind, message} pair every failed request/reply call
// returns, per the wire taxonomy: BadState surfaces as "Activity", Transport
// surfaces as "Service", NotFound passes through verbatim.
type errorEnvelope struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func newErrorEnvelope(err error) errorEnvelope {
	return errorEnvelope{Kind: wireKind(apperr.KindOf(err)), Message: err.Error()}
}

func wireKind(k apperr.Kind) string {
	switch k {
	case apperr.BadState:
		return "Activity"
	case apperr.Transport:
		return "Service"
	case apperr.NotFound:
		return "NotFound"
	default:
		return string(k)
	}
}

func httpStatusFor(k apperr.Kind) int {
	switch k {
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.BadState, apperr.BadConfig:
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}
