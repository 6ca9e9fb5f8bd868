package respond

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

// Envelope is the response wrapper the storefront backend uses.
type Envelope struct {
	Status  int        `json:"status"`
	Message string     `json:"message"`
	Payload *Payload   `json:"payload,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// Payload nests the response data.
type Payload struct {
	ResponseData any `json:"responseData"`
}

// ErrorBody is the nested error object on failures.
type ErrorBody struct {
	Message string `json:"message"`
}

// JSON writes a success response carrying data under payload.responseData.
func JSON(w http.ResponseWriter, status int, message string, data any) {
	write(w, status, Envelope{Status: status, Message: message, Payload: &Payload{ResponseData: data}})
}

// Error writes a failure with the message both at the top level and in the
// nested error object.
func Error(w http.ResponseWriter, status int, message string) {
	write(w, status, Envelope{Status: status, Message: message, Error: &ErrorBody{Message: message}})
}

// Raw writes payload as-is, without the envelope.
func Raw(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logrus.WithError(err).Warn("respond: encode payload failed")
	}
}

func write(w http.ResponseWriter, status int, payload Envelope) {
	Raw(w, status, payload)
}
