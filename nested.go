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
	"regexp"
)

// maxNestedKeyDepth is the recursion ceiling for bracket-path keys.
// Untrusted input can never drive key decoding deeper than this.
const maxNestedKeyDepth = 20

// pollutionDenylist holds property names that are refused at every dynamic
// key-assignment site across all decoders. The names cover the prototype
// pollution surface of the wire formats this package decodes for; keeping
// the check uniform means no decoder output ever carries one of them, at
// any nesting level.
var pollutionDenylist = map[string]struct{}{
	"__proto__":            {},
	"constructor":          {},
	"prototype":            {},
	"hasOwnProperty":       {},
	"isPrototypeOf":        {},
	"propertyIsEnumerable": {},
	"valueOf":              {},
	"toString":             {},
}

// isDenylistedKey reports whether key must never be assigned.
func isDenylistedKey(key string) bool {
	_, found := pollutionDenylist[key]

	return found
}

// nestedKeyPattern splits a bracket-path key into base, first index, and
// the remainder: "user[address][city]" → ("user", "address", "[city]").
var nestedKeyPattern = regexp.MustCompile(`^([^\[]+)\[([^\]]*)\](.*)$`)

// insertNested inserts value into target under a flat bracket-path key,
// creating intermediate maps and sequences on demand.
//
// An empty index with no remainder appends to a sequence ("colors[]");
// a non-empty index descends into a map ("user[name]"). A scalar already
// occupying a container slot is replaced by the container. Denylisted keys
// are silently ignored at every level: no error, no mutation.
//
// depth counts recursion levels and starts at 0; exceeding
// maxNestedKeyDepth fails with [ErrMaxNestingExceeded].
func insertNested(target map[string]any, key string, value any, depth int) error {
	if depth > maxNestedKeyDepth {
		return fmt.Errorf("%w of %d", ErrMaxNestingExceeded, maxNestedKeyDepth)
	}

	if isDenylistedKey(key) {
		return nil
	}

	match := nestedKeyPattern.FindStringSubmatch(key)
	if match == nil {
		assignFlat(target, key, value)

		return nil
	}

	base, index, rest := match[1], match[2], match[3]
	if isDenylistedKey(base) {
		return nil
	}

	// Terminal empty index appends to a sequence: "colors[]" pushes onto
	// target["colors"]. Any other shape addresses a nested map.
	if index == "" && rest == "" {
		switch slot := target[base].(type) {
		case []any:
			target[base] = append(slot, value)
		case map[string]any:
			// The slot already holds a map; the push is a no-op.
		default:
			// Absent or scalar: replace with a fresh sequence.
			target[base] = []any{value}
		}

		return nil
	}

	child, ok := target[base].(map[string]any)
	if !ok {
		// Replace any scalar or sequence occupying the slot.
		child = map[string]any{}
		target[base] = child
	}

	if rest != "" {
		return insertNested(child, index+rest, value, depth+1)
	}

	if isDenylistedKey(index) {
		return nil
	}
	child[index] = value

	return nil
}

// assignFlat assigns value directly under key, promoting a repeated key to
// an ordered sequence. Denylisted keys are dropped.
func assignFlat(target map[string]any, key string, value any) {
	if isDenylistedKey(key) {
		return
	}

	existing, exists := target[key]
	if !exists {
		target[key] = value

		return
	}

	if seq, ok := existing.([]any); ok {
		target[key] = append(seq, value)

		return
	}

	target[key] = []any{existing, value}
}

// scrubValue removes denylisted keys from a decoded value in place,
// descending through maps and sequences. It backstops decoders whose
// underlying codec builds containers outside this package (JSON, YAML,
// TOML, MessagePack), keeping the no-denylisted-keys invariant uniform.
func scrubValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		for key, nested := range v {
			if isDenylistedKey(key) {
				delete(v, key)

				continue
			}
			v[key] = scrubValue(nested)
		}

		return v
	case []any:
		for i, nested := range v {
			v[i] = scrubValue(nested)
		}

		return v
	default:
		return value
	}
}
