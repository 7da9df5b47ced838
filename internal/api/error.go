package api

import (
	"errors"
	"net/http"

	"livechat-backend/internal/service/chat"
	"livechat-backend/internal/service/staff"
	"livechat-backend/internal/service/widget"
)

type HTTPError struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	ErrorLog   error  `json:"-"`
}

func (e HTTPError) Error() string {
	if e.ErrorLog != nil {
		return e.Message + ": " + e.ErrorLog.Error()
	}
	return e.Message
}

func NewHTTPError(statusCode int, message string, err error) HTTPError {
	return HTTPError{StatusCode: statusCode, Message: message, ErrorLog: err}
}

// serviceError maps service error codes onto HTTP statuses. Anything
// unrecognized is a 500 with a generic body so internals never leak.
func serviceError(err error) HTTPError {
	var chatErr *chat.Error
	if errors.As(err, &chatErr) {
		return codeToHTTPError(string(chatErr.Code), chatErr.Message, err)
	}
	var widgetErr *widget.Error
	if errors.As(err, &widgetErr) {
		return codeToHTTPError(string(widgetErr.Code), widgetErr.Message, err)
	}
	var staffErr *staff.Error
	if errors.As(err, &staffErr) {
		return codeToHTTPError(string(staffErr.Code), staffErr.Message, err)
	}
	return NewHTTPError(http.StatusInternalServerError, "internal server error", err)
}

func codeToHTTPError(code, message string, err error) HTTPError {
	switch code {
	case "validation_error":
		return NewHTTPError(http.StatusBadRequest, message, err)
	case "unauthorized":
		return NewHTTPError(http.StatusUnauthorized, message, err)
	case "forbidden":
		return NewHTTPError(http.StatusForbidden, message, err)
	case "not_found":
		return NewHTTPError(http.StatusNotFound, message, err)
	case "conflict":
		return NewHTTPError(http.StatusConflict, message, err)
	}
	return NewHTTPError(http.StatusInternalServerError, "internal server error", err)
}
