package common

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// Envelope is the body of every API response: {"error": null, "data": ...}
// on success and {"error": "error", "data": "<message>"} on failure.
type Envelope struct {
	Error *string `json:"error"`
	Data  any     `json:"data"`
}

// Page wraps one page of a listing together with the unpaged total.
type Page[T any] struct {
	Results []T `json:"results"`
	Total   int `json:"total"`
}

var errorMarker = "error"

func RespondWithData(w http.ResponseWriter, code int, data any) {
	RespondWithJSON(w, code, Envelope{Data: data})
}

func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, Envelope{Error: &errorMarker, Data: message})
}

// RespondWithErr picks status and message from err. Unexpected failures are
// logged and reported without their internals.
func RespondWithErr(w http.ResponseWriter, err error) {
	code := HTTPStatusFromError(err)
	if code == http.StatusInternalServerError {
		log.WithError(err).Error("request failed")
	}
	RespondWithError(w, code, PublicMessage(err))
}

func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "error", "data": "Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
