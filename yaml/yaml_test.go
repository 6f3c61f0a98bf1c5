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

package yaml_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bodyparser "github.com/BackendStack21/0http-bun-sub001"
	"github.com/BackendStack21/0http-bun-sub001/yaml"
)

// TestDecoder tests YAML decoding end to end through the parser
func TestDecoder(t *testing.T) {
	t.Parallel()

	parser := bodyparser.New(bodyparser.WithCustomDecoder(yaml.Decoder()))

	var decoded any
	handler := parser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decoded = bodyparser.Decoded(r)
	}))

	body := "name: John\ntags:\n  - a\n  - b\n"
	r := httptest.NewRequest("POST", "/", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/yaml")

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, r)
	require.Equal(t, http.StatusOK, recorder.Code)

	value := decoded.(map[string]any)
	assert.Equal(t, "John", value["name"])
	assert.Equal(t, []any{"a", "b"}, value["tags"])
}

// TestDecoder_Scrubbed tests denylisted key removal from YAML documents
func TestDecoder_Scrubbed(t *testing.T) {
	t.Parallel()

	parser := bodyparser.New(bodyparser.WithCustomDecoder(yaml.Decoder()))

	var decoded any
	handler := parser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decoded = bodyparser.Decoded(r)
	}))

	r := httptest.NewRequest("POST", "/", strings.NewReader("__proto__: evil\nok: true\n"))
	r.Header.Set("Content-Type", "application/x-yaml")

	handler.ServeHTTP(httptest.NewRecorder(), r)

	value := decoded.(map[string]any)
	assert.NotContains(t, value, "__proto__")
	assert.Equal(t, true, value["ok"])
}

// TestDecoder_Malformed tests invalid YAML rejection
func TestDecoder_Malformed(t *testing.T) {
	t.Parallel()

	parser := bodyparser.New(bodyparser.WithCustomDecoder(yaml.Decoder()))
	handler := parser(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	}))

	r := httptest.NewRequest("POST", "/", strings.NewReader("key: [unclosed"))
	r.Header.Set("Content-Type", "application/yaml")

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, r)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

// TestDecoder_Options tests type and limit overrides
func TestDecoder_Options(t *testing.T) {
	t.Parallel()

	decoder := yaml.Decoder(yaml.WithType("application/vnd.config"), yaml.WithLimit(16))
	assert.Equal(t, "application/vnd.config", decoder.Type)
	assert.Equal(t, int64(16), decoder.Limit)

	parser := bodyparser.New(bodyparser.WithCustomDecoder(decoder))
	handler := parser(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	}))

	r := httptest.NewRequest("POST", "/", strings.NewReader("key: "+strings.Repeat("x", 64)))
	r.Header.Set("Content-Type", "application/vnd.config")

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, r)
	assert.Equal(t, http.StatusRequestEntityTooLarge, recorder.Code)

	assert.Panics(t, func() { yaml.Decoder(yaml.WithLimit("bogus")) })
}
