package api

import (
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"net/http"
)

// PetList is the body of GET /api/pets.
type PetList struct {
	Pets interface{} `json:"pets"`
}

// KeyResponse is the body of a successful GET /api/key.
type KeyResponse struct {
	Key string `json:"key"`
}

// WriteJSON serialises v as JSON and writes it to w with the given HTTP status code.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("WriteJSON: failed to encode response", "error", err)
	}
}

// WriteEmpty writes a 200 with no body, as PetFriends does for deletes.
func WriteEmpty(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
}

// WriteErrorPage writes the HTML error page the live service returns for
// client and server errors. The body is deliberately not JSON.
func WriteErrorPage(w http.ResponseWriter, status int, description string) {
	title := http.StatusText(status)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := fmt.Fprintf(w,
		"<!doctype html>\n<html lang=en>\n<title>%d %s</title>\n<h1>%s</h1>\n<p>%s</p>\n",
		status, title, title, html.EscapeString(description))
	if err != nil {
		slog.Error("WriteErrorPage: failed to write response", "error", err)
	}
}
