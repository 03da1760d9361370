package app

import (
	"encoding/json"
	"net/http"

	"github.com/arcbank/offlinegate/internal/domain"
)

// Synthesized responses. The soft-offline and queued-ack payloads are part
// of the wire contract with the hosting pages, so their shape is fixed here
// rather than derived.

const softOfflineBody = `{"error":"Offline","offline":true}`

func jsonHeaders() []domain.Header {
	return []domain.Header{{Name: "Content-Type", Value: "application/json"}}
}

// softOfflineResponse is served for the session-check endpoint when the
// network is down and no cached copy exists. A 200 with an explicit offline
// flag lets the UI degrade gracefully instead of treating absent session
// data as a hard error.
func softOfflineResponse() *domain.Response {
	return &domain.Response{
		Status:  http.StatusOK,
		Headers: jsonHeaders(),
		Body:    []byte(softOfflineBody),
	}
}

type queuedAck struct {
	Success bool   `json:"success"`
	Queued  bool   `json:"queued"`
	Message string `json:"message"`
}

// queuedAckResponse acknowledges a mutation that was queued for background
// replay. The 202 status and queued flag let the UI distinguish "queued"
// from "permanently failed" without blocking.
func queuedAckResponse(message string) *domain.Response {
	body, _ := json.Marshal(queuedAck{Queued: true, Message: message})
	return &domain.Response{
		Status:  http.StatusAccepted,
		Headers: jsonHeaders(),
		Body:    body,
	}
}

// offlineRedirect sends the caller to the dedicated offline page.
func offlineRedirect(location string) *domain.Response {
	return &domain.Response{
		Status:  http.StatusFound,
		Headers: []domain.Header{{Name: "Location", Value: location}},
	}
}

// unavailableResponse is the minimal failure response when no fallback of
// any kind exists for a GENERAL route.
func unavailableResponse() *domain.Response {
	return &domain.Response{
		Status:  http.StatusServiceUnavailable,
		Headers: []domain.Header{{Name: "Content-Type", Value: "text/plain; charset=utf-8"}},
		Body:    []byte("offline"),
	}
}
