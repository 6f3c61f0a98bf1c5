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
	"strings"

	"github.com/goccy/go-json"
)

// maxJSONDepth is the brace/bracket nesting ceiling for structured-text
// bodies. The depth is computed before parsing, so a pathological payload
// is rejected without ever building its value tree.
const maxJSONDepth = 100

// decodeJSON decodes a structured-text body. The byte budget, the nesting
// pre-scan, and the strict-mode check all run before the parse itself.
// The decoded value is scrubbed of denylisted keys.
func decodeJSON(raw []byte, cfg *config) (any, *Failure) {
	text := strings.TrimSpace(string(raw))
	if text == "" {
		if cfg.emptyBody == EmptyBodyObject {
			return map[string]any{}, nil
		}

		return nil, nil
	}

	if cfg.strict && text[0] != '{' && text[0] != '[' {
		return nil, badRequest(ErrNotObjectOrArray, "body must be an object or array")
	}

	if err := scanNestingDepth(raw, maxJSONDepth); err != nil {
		return nil, badRequest(err, err.Error())
	}

	parse := cfg.jsonParser
	if parse == nil {
		parse = builtinJSONParser
	}

	value, err := parse(raw)
	if err != nil {
		return nil, badRequest(ErrInvalidSyntax, fmt.Sprintf("invalid JSON: %v", err))
	}

	return scrubValue(value), nil
}

// builtinJSONParser is the default structured-text parse.
func builtinJSONParser(data []byte) (any, error) {
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, err
	}

	return value, nil
}

// scanNestingDepth walks data byte by byte and tracks brace/bracket depth,
// skipping string literals with escape awareness so brackets inside quoted
// strings never count. It is safe to iterate bytes for the ASCII
// delimiters because UTF-8 never embeds them in multi-byte sequences.
func scanNestingDepth(data []byte, maxDepth int) error {
	var depth int
	var inString, escaped bool

	for i := 0; i < len(data); i++ {
		b := data[i]

		if escaped {
			escaped = false

			continue
		}

		if inString {
			switch b {
			case '\\':
				escaped = true
			case '"':
				inString = false
			}

			continue
		}

		switch b {
		case '"':
			inString = true
		case '{', '[':
			depth++
			if depth > maxDepth {
				return fmt.Errorf("%w of %d", ErrMaxNestingExceeded, maxDepth)
			}
		case '}', ']':
			if depth > 0 {
				depth--
			}
		}
	}

	return nil
}
