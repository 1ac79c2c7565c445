/*
Package core holds types and functions shared by all parts of the MTEXT
geometry engine.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package core

import (
	"errors"
	"fmt"
)

// General error codes
const (
	NOERROR     int = 0
	EMISSING    int = 122 // resource does not exist
	EINVALID    int = 123 // validation failed
	ECONNECTION int = 124 // remote resource not connected
	EINTERNAL   int = 125 // internal error
	EFONTDECODE int = 126 // malformed font data
	EUNKNOWNOP  int = 127 // unknown operation in a protocol message
	ECODEC      int = 128 // transfer header and payload do not match
	EDESTROYED  int = 129 // execution context has been torn down
)

// errorTexts are the default messages for error codes.
var errorTexts = map[int]string{
	NOERROR:     "OK",
	EMISSING:    "not found",
	EINVALID:    "invalid",
	ECONNECTION: "transmission-error",
	EINTERNAL:   "internal error",
	EFONTDECODE: "font decode error",
	EUNKNOWNOP:  "unknown operation",
	ECODEC:      "transfer codec mismatch",
	EDESTROYED:  "destroyed",
}

func errorText(ecode int) string {
	if text, ok := errorTexts[ecode]; ok {
		return text
	}
	return "undefined error"
}

// AppError is an error with an associated error code and a user-message.
type AppError interface {
	error
	ErrorCode() int
	UserMessage() string
}

// codedError decorates a cause with a code and a message for users.
type codedError struct {
	cause error
	code  int
	msg   string
}

func newCodedError(cause error, code int, msg string) codedError {
	if cause == nil {
		cause = errors.New(errorText(code))
	}
	return codedError{cause: cause, code: code, msg: msg}
}

func (e codedError) Unwrap() error {
	return e.cause
}

func (e codedError) Error() string {
	if e.msg == "" || e.msg == e.cause.Error() {
		return fmt.Sprintf("[%d] %v", e.code, e.cause)
	}
	return fmt.Sprintf("[%d] %s: %v", e.code, e.msg, e.cause)
}

func (e codedError) ErrorCode() int {
	return e.code
}

func (e codedError) UserMessage() string {
	return e.msg
}

var _ AppError = codedError{}

// ErrorWithCode adds an error code to err's error chain. A nil err is
// replaced by an error with the code's default text.
func ErrorWithCode(err error, code int) error {
	return newCodedError(err, code, errorText(code))
}

// WrapError wraps an error in a core error, featuring an error code and
// a user message.
// If err is nil, an error denoting the code's default text is wrapped.
func WrapError(err error, code int, format string, v ...interface{}) error {
	return newCodedError(err, code, fmt.Sprintf(format, v...))
}

// Code returns the status code associated with an error.
// If no status code is found, it returns EINTERNAL.
// If err is nil, NOERROR is returned.
func Code(err error) (code int) {
	if err == nil {
		return NOERROR
	}
	if e := AppError(nil); errors.As(err, &e) {
		return e.ErrorCode()
	}
	return EINTERNAL
}

// UserMessage returns the message for users carried by err, or the
// default text of err's code. If err is nil, it returns "".
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if e := AppError(nil); errors.As(err, &e) {
		return e.UserMessage()
	}
	return errorText(Code(err))
}

// Error creates an error with an error code and a user-message.
func Error(code int, format string, v ...interface{}) error {
	return newCodedError(nil, code, fmt.Sprintf(format, v...))
}

// Is reports whether err carries error code code anywhere in its chain.
func Is(err error, code int) bool {
	return err != nil && Code(err) == code
}
