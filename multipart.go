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
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/elnormous/contenttype"
)

// Structural limits for multipart bodies.
const (
	maxMultipartFields  = 100
	maxFieldNameLength  = 1000
	maxFieldValueLength = 100000
	maxFilenameLength   = 255
)

// defaultUploadName replaces a filename that sanitization emptied.
const defaultUploadName = "upload"

// defaultFileType is the declared type used when a part carries none.
const defaultFileType = "application/octet-stream"

// decodeMultipart consumes a multipart/form-data body part by part, so the
// per-file and cumulative byte budgets abort mid-stream instead of after
// the whole body is buffered. It returns the value fields and the file
// fields as parallel maps.
func decodeMultipart(r *http.Request, cfg *config) (any, FileMap, *Failure) {
	reader, err := r.MultipartReader()
	if err != nil {
		return nil, nil, badRequest(ErrInvalidSyntax, "malformed multipart body")
	}

	fields := map[string]any{}
	files := FileMap{}
	var cumulative int64
	var count int

	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, badRequest(ErrInvalidSyntax, "malformed multipart body")
		}

		count++
		if count > maxMultipartFields {
			return nil, nil, badRequest(ErrTooManyFields,
				fmt.Sprintf("too many form fields: limit is %d", maxMultipartFields))
		}

		name := part.FormName()
		if len(name) > maxFieldNameLength {
			return nil, nil, badRequest(ErrFieldNameTooLong,
				fmt.Sprintf("field name too long: limit is %d", maxFieldNameLength))
		}

		remaining := cfg.multipartLimit - cumulative

		if filename := partFilename(part); filename != "" {
			file, failure := readFilePart(part, filename, remaining)
			if failure != nil {
				return nil, nil, failure
			}
			cumulative += file.Size
			assignFile(files, name, file)

			continue
		}

		value, failure := readValuePart(part, remaining)
		if failure != nil {
			return nil, nil, failure
		}
		cumulative += int64(len(value))
		assignFlat(fields, name, value)
	}

	return fields, files, nil
}

// partFilename extracts the filename exactly as the client sent it.
// multipart.Part.FileName applies filepath.Base, which would hide
// traversal attempts from sanitization and lose the original name kept
// for diagnostics.
func partFilename(part *multipart.Part) string {
	_, params, err := mime.ParseMediaType(part.Header.Get("Content-Disposition"))
	if err != nil {
		return part.FileName()
	}

	return params["filename"]
}

// readFilePart reads one file part under the remaining cumulative budget
// and builds its FileField.
func readFilePart(part *multipart.Part, filename string, remaining int64) (*FileField, *Failure) {
	if len(filename) > maxFilenameLength {
		return nil, badRequest(ErrFilenameTooLong,
			fmt.Sprintf("filename too long: limit is %d", maxFilenameLength))
	}

	// NopCloser keeps readBounded's overflow cancellation from draining
	// the rest of the part through multipart.Part.Close.
	data, err := readBounded(io.NopCloser(part), remaining)
	if err != nil {
		if errors.Is(err, ErrPayloadTooLarge) {
			return nil, payloadTooLarge(remaining)
		}

		return nil, badRequest(ErrBodyRead, "failed to read uploaded file")
	}

	declared := part.Header.Get("Content-Type")
	if declared == "" {
		declared = defaultFileType
	}

	return &FileField{
		Filename:     sanitizeFilename(filename),
		OriginalName: filename,
		Size:         int64(len(data)),
		DeclaredType: declared,
		MimeType:     normalizeMimeType(declared),
		Data:         data,
	}, nil
}

// readValuePart reads one value part under both the per-value length limit
// and the remaining cumulative budget.
func readValuePart(part *multipart.Part, remaining int64) (string, *Failure) {
	budget := int64(maxFieldValueLength)
	cumulativeBound := false
	if remaining < budget {
		budget = remaining
		cumulativeBound = true
	}

	data, err := readBounded(io.NopCloser(part), budget)
	if err != nil {
		if errors.Is(err, ErrPayloadTooLarge) {
			if cumulativeBound {
				return "", payloadTooLarge(remaining)
			}

			return "", badRequest(ErrFieldValueTooLarge,
				fmt.Sprintf("field value too large: limit is %d", maxFieldValueLength))
		}

		return "", badRequest(ErrBodyRead, "failed to read form field")
	}

	return string(data), nil
}

// assignFile inserts a file under its field name, promoting a repeated
// name to a sequence. Denylisted names are dropped.
func assignFile(files FileMap, name string, file *FileField) {
	if isDenylistedKey(name) {
		return
	}

	existing, exists := files[name]
	if !exists {
		files[name] = file

		return
	}

	if seq, ok := existing.([]*FileField); ok {
		files[name] = append(seq, file)

		return
	}

	if single, ok := existing.(*FileField); ok {
		files[name] = []*FileField{single, file}
	}
}

// sanitizeFilename strips null bytes, traversal sequences, path
// separators, and leading dots from a client-supplied filename. An empty
// result falls back to defaultUploadName. The original name is kept
// separately on the FileField for diagnostics.
func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"\x00", "",
		"..", "",
		"/", "",
		"\\", "",
	)
	name = replacer.Replace(name)
	name = strings.TrimLeft(name, ".")

	if name == "" {
		return defaultUploadName
	}

	return name
}

// normalizeMimeType strips parameters from a declared content type:
// "image/png; name=a" becomes "image/png". An unparsable declaration
// falls back to the default file type.
func normalizeMimeType(declared string) string {
	mediaType := contenttype.NewMediaType(declared)
	if mediaType.Type == "" || mediaType.Subtype == "" {
		return defaultFileType
	}

	return mediaType.Type + "/" + mediaType.Subtype
}
