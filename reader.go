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
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
)

// readChunkSize is the buffer size for incremental body reads. The total
// bytes pulled from a stream never exceed the budget by more than one
// chunk.
const readChunkSize = 8 << 10

// readBounded consumes body incrementally under a byte budget. The instant
// the running total exceeds maxBytes the body is closed and the read fails
// with [ErrPayloadTooLarge]; no attempt is made to buffer the oversized
// content. A nil body yields nil bytes and no error.
//
// Transport-level read faults fail with [ErrBodyRead], distinct from the
// size-exceeded case so callers can map them to different status codes.
func readBounded(body io.ReadCloser, maxBytes int64) ([]byte, error) {
	if body == nil || body == http.NoBody {
		return nil, nil
	}

	var buf bytes.Buffer
	var total int64
	chunk := make([]byte, readChunkSize)

	for {
		n, err := body.Read(chunk)
		if n > 0 {
			total += int64(n)
			if total > maxBytes {
				// Cancel the stream: no further chunks are pulled.
				body.Close()

				return nil, fmt.Errorf("%w: limit is %d bytes", ErrPayloadTooLarge, maxBytes)
			}
			buf.Write(chunk[:n])
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return buf.Bytes(), nil
			}

			return nil, fmt.Errorf("%w: %w", ErrBodyRead, err)
		}
	}
}

// checkContentLength validates a present Content-Length header before any
// body read. A malformed header fails with 400; a declared length above
// the limit fails with 413 without touching the stream. The header check
// is advisory only: the bounded read still enforces the budget against
// the bytes actually received.
func checkContentLength(r *http.Request, limit int64) *Failure {
	header := r.Header.Get("Content-Length")
	if header == "" {
		return nil
	}

	size, err := strconv.ParseInt(header, 10, 64)
	if err != nil || size < 0 {
		return badRequest(ErrInvalidContentLength, "invalid content length header")
	}

	if size > limit {
		return payloadTooLarge(limit)
	}

	return nil
}
