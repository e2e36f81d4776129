package query

import "fmt"

// Code classifies a query failure.
type Code string

const (
	CodeInvalidParams  Code = "INVALID_PARAMS"
	CodeNotFound       Code = "NOT_FOUND"
	CodeInvalidQuery   Code = "INVALID_QUERY"
	CodeCacheMiss      Code = "CACHE_MISS"
	CodeBadJQ          Code = "BAD_JQ"
	CodeAPIUnavailable Code = "API_UNAVAILABLE"
)

// Error is the typed failure returned by handlers and the dispatcher.
// Handlers return it, never panic across the handler boundary.
type Error struct {
	Code      Code   `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func invalidParams(message, detail string) *Error {
	return &Error{Code: CodeInvalidParams, Message: message, Detail: detail}
}

func notFound(message string) *Error {
	return &Error{Code: CodeNotFound, Message: message}
}

func invalidQuery(queryType string) *Error {
	return &Error{
		Code:    CodeInvalidQuery,
		Message: fmt.Sprintf("unknown or unimplemented query type %q", queryType),
		Detail:  "use the query discovery listing for the supported catalog",
	}
}

func cacheMiss(key string) *Error {
	return &Error{
		Code:      CodeCacheMiss,
		Message:   fmt.Sprintf("no indexed graph for key %q", key),
		Retryable: true,
		Detail:    "resubmit the same request so the snapshot can be fetched and indexed",
	}
}

func badJQ(err error) *Error {
	return &Error{Code: CodeBadJQ, Message: err.Error()}
}
