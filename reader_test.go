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
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingReader tracks bytes handed out and whether Close was called.
type countingReader struct {
	reader    io.Reader
	bytesRead int64
	closed    bool
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.reader.Read(p)
	c.bytesRead += int64(n)

	return n, err
}

func (c *countingReader) Close() error {
	c.closed = true

	return nil
}

// failingReader fails after yielding some data.
type failingReader struct {
	data []byte
	done bool
}

func (f *failingReader) Read(p []byte) (int, error) {
	if !f.done {
		f.done = true
		n := copy(p, f.data)

		return n, nil
	}

	return 0, errors.New("connection reset")
}

func (f *failingReader) Close() error { return nil }

// TestReadBounded_WithinBudget tests a body that fits the budget
func TestReadBounded_WithinBudget(t *testing.T) {
	t.Parallel()

	body := &countingReader{reader: strings.NewReader("hello world")}

	data, err := readBounded(body, 64)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
}

// TestReadBounded_BudgetExceeded tests early abort: the stream is closed
// and the total bytes pulled never exceed the budget plus one chunk
func TestReadBounded_BudgetExceeded(t *testing.T) {
	t.Parallel()

	payload := bytes.Repeat([]byte("x"), 100*readChunkSize)
	body := &countingReader{reader: bytes.NewReader(payload)}

	_, err := readBounded(body, 1024)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
	assert.True(t, body.closed, "stream must be cancelled on overflow")
	assert.LessOrEqual(t, body.bytesRead, int64(1024+readChunkSize),
		"no more than one chunk past the budget may be pulled")
}

// TestReadBounded_ExactBudget tests a body of exactly the budget size
func TestReadBounded_ExactBudget(t *testing.T) {
	t.Parallel()

	payload := strings.Repeat("a", 512)
	body := &countingReader{reader: strings.NewReader(payload)}

	data, err := readBounded(body, 512)
	require.NoError(t, err)
	assert.Len(t, data, 512)
}

// TestReadBounded_StreamFault tests that transport faults map to
// ErrBodyRead, distinct from the size-exceeded case
func TestReadBounded_StreamFault(t *testing.T) {
	t.Parallel()

	_, err := readBounded(&failingReader{data: []byte("partial")}, 1024)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBodyRead)
	assert.NotErrorIs(t, err, ErrPayloadTooLarge)
}

// TestReadBounded_NilBody tests the no-body short circuit
func TestReadBounded_NilBody(t *testing.T) {
	t.Parallel()

	data, err := readBounded(nil, 1024)
	require.NoError(t, err)
	assert.Nil(t, data)
}

// TestCheckContentLength tests the header precheck ahead of any read
func TestCheckContentLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		header     string
		limit      int64
		wantStatus int
		wantErr    error
	}{
		{"absent header passes", "", 1024, 0, nil},
		{"within limit passes", "512", 1024, 0, nil},
		{"at limit passes", "1024", 1024, 0, nil},
		{"over limit rejected", "2000000", 1 << 20, 413, ErrPayloadTooLarge},
		{"malformed rejected", "12abc", 1024, 400, ErrInvalidContentLength},
		{"negative rejected", "-1", 1024, 400, ErrInvalidContentLength},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest("POST", "/", nil)
			if tt.header != "" {
				r.Header.Set("Content-Length", tt.header)
			}

			failure := checkContentLength(r, tt.limit)
			if tt.wantErr == nil {
				assert.Nil(t, failure)

				return
			}

			require.NotNil(t, failure)
			assert.Equal(t, tt.wantStatus, failure.Status)
			assert.ErrorIs(t, failure, tt.wantErr)
		})
	}
}
