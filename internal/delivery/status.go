package delivery

import (
	"encoding/json"

	"github.com/welldanyogia/mail-dispatch/internal/provider"
)

// Status is the canonical delivery outcome reported to callers regardless of
// which provider answered.
type Status int

const (
	// StatusUndefined is the never-set default. It is also kept when the final
	// provider code has no canonical mapping.
	StatusUndefined Status = iota
	StatusOK
	StatusBadRequest
	StatusInternalError
)

var statusText = map[Status]string{
	StatusUndefined:     "UNDEFINED",
	StatusOK:            "200: OK",
	StatusBadRequest:    "400: BAD REQUEST",
	StatusInternalError: "500: INTERNAL SERVER ERROR",
}

func (s Status) String() string {
	if text, ok := statusText[s]; ok {
		return text
	}
	return statusText[StatusUndefined]
}

// MarshalJSON encodes the status as its human-readable string.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// FromCode maps a provider code to its canonical status. Unknown codes map to
// StatusUndefined.
func FromCode(code provider.Code) Status {
	switch code {
	case provider.CodeOK:
		return StatusOK
	case provider.CodeBadRequest:
		return StatusBadRequest
	case provider.CodeInternalError:
		return StatusInternalError
	default:
		return StatusUndefined
	}
}
