// Package web defines common components for a web application.
package web

import (
	"net/http"

	"github.com/go-petr/pet-ledger/pkg/errorspkg"
)

// Response holds the common response type for all APIs.
type Response struct {
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// Error wraps a given err into json frinedly struct.
func Error(err error) Response {
	return Response{Error: err.Error()}
}

// StatusCode maps the error kind to the http status code.
func StatusCode(err error) int {
	switch errorspkg.KindOf(err) {
	case errorspkg.KindInvalidInput:
		return http.StatusBadRequest
	case errorspkg.KindNotFound:
		return http.StatusNotFound
	case errorspkg.KindInsufficientFunds:
		return http.StatusPaymentRequired
	case errorspkg.KindDuplicate:
		return http.StatusConflict
	case errorspkg.KindUpstreamUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// PublicError hides the details of internal errors from clients.
func PublicError(err error) error {
	if errorspkg.KindOf(err) == errorspkg.KindInternal {
		return errorspkg.ErrInternal
	}

	return err
}
