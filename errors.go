// Copyright 2025 The Bodyparser Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bodyparser

import (
	"errors"
	"fmt"
	"net/http"
)

// Static errors for decoding operations.
//
// Use [errors.Is] to check for them:
//
//	var failure *Failure
//	if errors.As(err, &failure) && errors.Is(failure, ErrPayloadTooLarge) {
//	    // size violation
//	}
var (
	ErrInvalidLimitFormat   = errors.New("invalid limit format")
	ErrInvalidLimitType     = errors.New("invalid limit type")
	ErrInvalidContentLength = errors.New("invalid content length")
	ErrPayloadTooLarge      = errors.New("payload too large")
	ErrInvalidSyntax        = errors.New("invalid body syntax")
	ErrMaxNestingExceeded   = errors.New("exceeded maximum nesting depth")
	ErrTooManyParameters    = errors.New("too many parameters")
	ErrTooManyFields        = errors.New("too many form fields")
	ErrKeyTooLong           = errors.New("parameter key too long")
	ErrValueTooLarge        = errors.New("parameter value too large")
	ErrFieldNameTooLong     = errors.New("field name too long")
	ErrFieldValueTooLarge   = errors.New("field value too large")
	ErrFilenameTooLong      = errors.New("filename too long")
	ErrNotObjectOrArray     = errors.New("body must be an object or array")
	ErrVerificationFailed   = errors.New("body verification failed")
	ErrBodyRead             = errors.New("failed to read request body")
	ErrDecoderFault         = errors.New("unexpected decoder fault")
)

// maxMessageLength caps the message length surfaced to clients. Nothing
// beyond the truncated message ever leaves the decode boundary.
const maxMessageLength = 100

// Failure describes an expected decode violation as a structured result.
// Decoders return a *Failure for limit and format violations instead of
// propagating raw errors, so the orchestration layer can map each failure
// to an HTTP status without inspecting error text.
//
// Failure implements the error interface and unwraps to one of the static
// errors above.
type Failure struct {
	// Status is the suggested HTTP status code (400 or 413).
	Status int

	// Message is a human-safe description, already truncated to a length
	// that is safe to echo back to the client.
	Message string

	// Err is the underlying static error kind.
	Err error
}

// Error returns the failure message.
func (f *Failure) Error() string {
	return f.Message
}

// Unwrap returns the underlying error kind for errors.Is / errors.As.
func (f *Failure) Unwrap() error {
	return f.Err
}

// newFailure builds a Failure with a truncated message.
func newFailure(status int, kind error, message string) *Failure {
	return &Failure{
		Status:  status,
		Message: truncateMessage(message),
		Err:     kind,
	}
}

// badRequest builds a 400 Failure.
func badRequest(kind error, message string) *Failure {
	return newFailure(http.StatusBadRequest, kind, message)
}

// payloadTooLarge builds a 413 Failure naming the violated limit.
func payloadTooLarge(limit int64) *Failure {
	return newFailure(http.StatusRequestEntityTooLarge, ErrPayloadTooLarge,
		fmt.Sprintf("request entity too large: limit is %d bytes", limit))
}

// truncateMessage bounds a message to maxMessageLength bytes.
func truncateMessage(message string) string {
	if len(message) > maxMessageLength {
		return message[:maxMessageLength]
	}

	return message
}
