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
	"os"
)

// FieldMap is a string-keyed mapping from field name to either a single
// string or an ordered sequence of values. A second occurrence of the same
// key promotes the existing entry into a sequence. Keys on the pollution
// denylist are never inserted.
type FieldMap = map[string]any

// FileMap maps an upload field name to a *FileField, or to a []*FileField
// when the same field name carries several files. Keys follow the same
// denylist and promotion rules as [FieldMap].
type FileMap = map[string]any

// FileField holds one uploaded file from a multipart body.
//
// Filename is sanitized and safe to use as a path component; OriginalName
// preserves the raw client-supplied name for diagnostics only and must
// never be used to build filesystem paths.
type FileField struct {
	// Filename is the sanitized file name.
	Filename string

	// OriginalName is the name exactly as received from the client.
	OriginalName string

	// Size is the number of bytes in Data.
	Size int64

	// DeclaredType is the Content-Type the client declared for the part,
	// including any parameters.
	DeclaredType string

	// MimeType is DeclaredType with parameters stripped (e.g. "image/png"
	// for "image/png; name=a"). Defaults to application/octet-stream when
	// no type was declared.
	MimeType string

	// Data is the raw file content.
	Data []byte
}

// Save writes the file content to path with 0600 permissions.
//
// Example:
//
//	files := bodyparser.Files(r)
//	if f, ok := files["avatar"].(*bodyparser.FileField); ok {
//	    if err := f.Save("./uploads/" + f.Filename); err != nil {
//	        // handle error
//	    }
//	}
func (f *FileField) Save(path string) error {
	return os.WriteFile(path, f.Data, 0o600)
}

// HasBody reports whether the method conventionally carries a request body.
// Decoders are no-ops for all other methods.
func HasBody(method string) bool {
	switch method {
	case "POST", "PUT", "PATCH":
		return true
	default:
		return false
	}
}
