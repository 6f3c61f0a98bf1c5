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

package bodyparser_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"

	bodyparser "github.com/BackendStack21/0http-bun-sub001"
)

func ExampleNew() {
	parser := bodyparser.New(
		bodyparser.WithJSONLimit("1mb"),
	)

	handler := parser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := bodyparser.Decoded(r).(map[string]any)
		fmt.Println(body["name"])
	}))

	r := httptest.NewRequest("POST", "/users", strings.NewReader(`{"name":"Ada"}`))
	r.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(httptest.NewRecorder(), r)

	// Output: Ada
}

func ExampleURLEncoded() {
	parser := bodyparser.URLEncoded()

	handler := parser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := bodyparser.Decoded(r).(map[string]any)
		fmt.Println(body["user"].(map[string]any)["city"])
	}))

	r := httptest.NewRequest("POST", "/profile", strings.NewReader("user[city]=NYC"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	handler.ServeHTTP(httptest.NewRecorder(), r)

	// Output: NYC
}
