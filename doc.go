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

// Package bodyparser decodes untrusted HTTP request bodies into structured
// values under strict resource and structural bounds.
//
// The package provides a single middleware entry point that selects a
// decoder by content type, enforces a byte budget while the body streams
// in, applies per-format structural limits (nesting depth, field counts,
// field and filename sizes), and refuses a fixed denylist of property
// names at every dynamic key assignment. Adversarial input can neither
// exhaust memory, drive unbounded recursion, nor plant keys that corrupt
// downstream object handling.
//
// # Quick Start
//
//	parser := bodyparser.New(
//	    bodyparser.WithJSONLimit("1mb"),
//	    bodyparser.WithMultipartLimit("10mb"),
//	)
//
//	http.Handle("/api", parser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
//	    body := bodyparser.Decoded(r)
//	    files := bodyparser.Files(r)
//	    // ...
//	})))
//
// # Built-in Formats
//
// Four formats are decoded out of the box, each under its own byte budget
// and structural limits:
//
//   - structured text (JSON and +json types) → nested maps and sequences
//   - text/* → string
//   - application/x-www-form-urlencoded → nested maps via bracket-path
//     keys ("user[address][city]=NYC", "colors[]=red")
//   - multipart/form-data → field map plus file map with sanitized
//     filenames
//
// # Extended Formats
//
// The yaml, toml, msgpack, and proto subpackages provide decoders for
// additional wire formats, registered through [WithCustomDecoder]:
//
//	parser := bodyparser.New(
//	    bodyparser.WithCustomDecoder(yaml.Decoder()),
//	    bodyparser.WithCustomDecoder(msgpack.Decoder()),
//	)
//
// # Error Contract
//
// Expected violations never panic: decoders return a [Failure] carrying
// the HTTP status (413 for size violations, 400 for everything else) and
// a message truncated to a safe length. Nothing beyond that message is
// ever echoed to a client.
package bodyparser
