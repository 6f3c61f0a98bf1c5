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
	"net/url"
	"strings"
)

// Structural limits for form-encoded bodies.
const (
	maxFormParams      = 1000
	maxFormKeyLength   = 1000
	maxFormValueLength = 10000
)

// decodeURLEncoded decodes an application/x-www-form-urlencoded body into
// a [FieldMap]. Pairs are processed in wire order so bracket-path keys and
// same-key promotion see values in the order the client sent them.
func decodeURLEncoded(raw []byte, cfg *config) (any, *Failure) {
	result := map[string]any{}
	body := strings.TrimSpace(string(raw))
	if body == "" {
		return result, nil
	}

	pairs := strings.Split(body, "&")
	if len(pairs) > maxFormParams {
		return nil, badRequest(ErrTooManyParameters,
			fmt.Sprintf("too many parameters: limit is %d", maxFormParams))
	}

	for _, pair := range pairs {
		if pair == "" {
			continue
		}

		rawKey, rawValue, _ := strings.Cut(pair, "=")

		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return nil, badRequest(ErrInvalidSyntax, "malformed url-encoded key")
		}

		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return nil, badRequest(ErrInvalidSyntax, "malformed url-encoded value")
		}

		if len(key) > maxFormKeyLength {
			return nil, badRequest(ErrKeyTooLong,
				fmt.Sprintf("parameter key too long: limit is %d", maxFormKeyLength))
		}
		if len(value) > maxFormValueLength {
			return nil, badRequest(ErrValueTooLarge,
				fmt.Sprintf("parameter value too large: limit is %d", maxFormValueLength))
		}

		if !cfg.parseNested {
			assignFlat(result, key, value)

			continue
		}

		if err := insertNested(result, key, value, 0); err != nil {
			return nil, badRequest(ErrMaxNestingExceeded, err.Error())
		}
	}

	return result, nil
}
