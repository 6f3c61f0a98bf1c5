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
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDecodeURLEncoded_NestedObjects tests bracket-path form decoding
func TestDecodeURLEncoded_NestedObjects(t *testing.T) {
	t.Parallel()

	body := "user[name]=John&user[age]=30&user[address][city]=NYC"
	value, failure := decodeURLEncoded([]byte(body), defaultConfig())
	require.Nil(t, failure)

	fields := value.(map[string]any)
	user := fields["user"].(map[string]any)
	assert.Equal(t, "John", user["name"])
	assert.Equal(t, "30", user["age"])
	assert.Equal(t, map[string]any{"city": "NYC"}, user["address"])
}

// TestDecodeURLEncoded_Sequences tests empty-bracket sequence building
func TestDecodeURLEncoded_Sequences(t *testing.T) {
	t.Parallel()

	value, failure := decodeURLEncoded([]byte("colors[]=red&colors[]=blue"), defaultConfig())
	require.Nil(t, failure)

	fields := value.(map[string]any)
	assert.Equal(t, []any{"red", "blue"}, fields["colors"])
}

// TestDecodeURLEncoded_FlatMode tests decoding with nesting disabled
func TestDecodeURLEncoded_FlatMode(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.parseNested = false

	value, failure := decodeURLEncoded([]byte("user[name]=John&tag=a&tag=b"), cfg)
	require.Nil(t, failure)

	fields := value.(map[string]any)
	assert.Equal(t, "John", fields["user[name]"])
	assert.Equal(t, []any{"a", "b"}, fields["tag"])
}

// TestDecodeURLEncoded_FlatModeDenylist tests that denylisted keys are
// dropped even with nesting disabled
func TestDecodeURLEncoded_FlatModeDenylist(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.parseNested = false

	value, failure := decodeURLEncoded([]byte("__proto__=evil&ok=1"), cfg)
	require.Nil(t, failure)

	fields := value.(map[string]any)
	assert.NotContains(t, fields, "__proto__")
	assert.Equal(t, "1", fields["ok"])
}

// TestDecodeURLEncoded_PercentDecoding tests escape handling in keys and
// values
func TestDecodeURLEncoded_PercentDecoding(t *testing.T) {
	t.Parallel()

	value, failure := decodeURLEncoded([]byte("full+name=John%20Doe&q=a%26b"), defaultConfig())
	require.Nil(t, failure)

	fields := value.(map[string]any)
	assert.Equal(t, "John Doe", fields["full name"])
	assert.Equal(t, "a&b", fields["q"])
}

// TestDecodeURLEncoded_MalformedEscape tests rejection of bad escapes
func TestDecodeURLEncoded_MalformedEscape(t *testing.T) {
	t.Parallel()

	_, failure := decodeURLEncoded([]byte("key=%zz"), defaultConfig())
	require.NotNil(t, failure)
	assert.Equal(t, http.StatusBadRequest, failure.Status)
	assert.ErrorIs(t, failure, ErrInvalidSyntax)
}

// TestDecodeURLEncoded_TooManyParameters tests the parameter count limit
func TestDecodeURLEncoded_TooManyParameters(t *testing.T) {
	t.Parallel()

	pairs := make([]string, 0, maxFormParams+1)
	for i := 0; i < maxFormParams+1; i++ {
		pairs = append(pairs, fmt.Sprintf("k%d=v", i))
	}

	_, failure := decodeURLEncoded([]byte(strings.Join(pairs, "&")), defaultConfig())
	require.NotNil(t, failure)
	assert.Equal(t, http.StatusBadRequest, failure.Status)
	assert.ErrorIs(t, failure, ErrTooManyParameters)

	// Exactly at the limit succeeds.
	_, failure = decodeURLEncoded([]byte(strings.Join(pairs[:maxFormParams], "&")), defaultConfig())
	assert.Nil(t, failure)
}

// TestDecodeURLEncoded_KeyAndValueLength tests per-key and per-value
// length limits
func TestDecodeURLEncoded_KeyAndValueLength(t *testing.T) {
	t.Parallel()

	longKey := strings.Repeat("k", maxFormKeyLength+1)
	_, failure := decodeURLEncoded([]byte(longKey+"=v"), defaultConfig())
	require.NotNil(t, failure)
	assert.ErrorIs(t, failure, ErrKeyTooLong)

	longValue := strings.Repeat("v", maxFormValueLength+1)
	_, failure = decodeURLEncoded([]byte("k="+longValue), defaultConfig())
	require.NotNil(t, failure)
	assert.ErrorIs(t, failure, ErrValueTooLarge)
}

// TestDecodeURLEncoded_EmptyBody tests the empty-body result
func TestDecodeURLEncoded_EmptyBody(t *testing.T) {
	t.Parallel()

	value, failure := decodeURLEncoded([]byte(""), defaultConfig())
	require.Nil(t, failure)
	assert.Equal(t, map[string]any{}, value)
}
