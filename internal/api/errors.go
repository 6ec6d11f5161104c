package api

import "net/http"

// BadRequest writes a 400 error page.
func BadRequest(w http.ResponseWriter, msg string) {
	WriteErrorPage(w, http.StatusBadRequest, msg)
}

// Forbidden writes a 403 error page.
func Forbidden(w http.ResponseWriter, msg string) {
	WriteErrorPage(w, http.StatusForbidden, msg)
}

// NotFound writes a 404 error page.
func NotFound(w http.ResponseWriter, msg string) {
	WriteErrorPage(w, http.StatusNotFound, msg)
}

// TooLarge writes a 413 error page.
func TooLarge(w http.ResponseWriter, msg string) {
	WriteErrorPage(w, http.StatusRequestEntityTooLarge, msg)
}

// InternalError writes a 500 error page.
func InternalError(w http.ResponseWriter, msg string) {
	WriteErrorPage(w, http.StatusInternalServerError, msg)
}
