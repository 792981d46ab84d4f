package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Operation names a backend call. Each one carries the message shown when
// the backend does not report one of its own.
type Operation string

const (
	OpGetCurrent  Operation = "get_current"
	OpGetForecast Operation = "get_forecast"
	OpGetHistory  Operation = "get_history"
	OpCreate      Operation = "create"
	OpUpdate      Operation = "update"
	OpDelete      Operation = "delete"
	OpExport      Operation = "export"
	OpGetVideo    Operation = "get_video"
)

var fallbackMessages = map[Operation]string{
	OpGetCurrent:  "Failed to fetch weather",
	OpGetForecast: "Failed to fetch weather",
	OpGetHistory:  "Failed to fetch history",
	OpCreate:      "Failed to save weather",
	OpUpdate:      "Failed to update weather",
	OpDelete:      "Failed to delete weather",
	OpExport:      "Failed to export",
	OpGetVideo:    "Failed to fetch YouTube video",
}

// FallbackMessage returns the fixed message for an operation.
func (op Operation) FallbackMessage() string {
	if msg, ok := fallbackMessages[op]; ok {
		return msg
	}
	return "Request failed"
}

// maxMessageLength bounds plain-text error bodies surfaced to the user.
const maxMessageLength = 512

var errHTTPStatus = errors.New("unexpected status code")

// RequestError covers network failures and non-success responses.
// Message is what the user sees.
type RequestError struct {
	Op         Operation
	StatusCode int
	Message    string
	Err        error
}

func (e *RequestError) Error() string {
	return e.Message
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// MalformedResponseError is returned when a success response cannot be
// decoded into the expected schema.
type MalformedResponseError struct {
	Op  Operation
	Err error
}

func (e *MalformedResponseError) Error() string {
	return e.Op.FallbackMessage() + ": malformed response"
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

func newRequestError(op Operation, status int, body []byte, err error) *RequestError {
	msg := backendMessage(body)
	if msg == "" {
		msg = op.FallbackMessage()
	}
	if err == nil {
		err = fmt.Errorf("%w: %d", errHTTPStatus, status)
	}
	return &RequestError{
		Op:         op,
		StatusCode: status,
		Message:    msg,
		Err:        err,
	}
}

func malformed(op Operation, err error) *MalformedResponseError {
	return &MalformedResponseError{Op: op, Err: err}
}

// backendMessage extracts the message a backend put in an error body:
// plain text, a JSON string, or a JSON object with message/error.
func backendMessage(body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return ""
	}

	switch body[0] {
	case '{':
		var payload struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return ""
		}
		if payload.Message != "" {
			return payload.Message
		}
		return payload.Error
	case '"':
		var msg string
		if err := json.Unmarshal(body, &msg); err != nil {
			return ""
		}
		return strings.TrimSpace(msg)
	case '[', '<':
		return ""
	}

	msg := string(body)
	if len(msg) > maxMessageLength {
		msg = msg[:maxMessageLength]
	}
	return msg
}
