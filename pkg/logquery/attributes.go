/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package logquery

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

const emptyAttributes = "{}"

// EncodeAttributes renders attributes as a JSON object with keys in byte-wise
// sorted order, so equal maps always produce identical text. Nil and empty maps
// encode to "{}".
func EncodeAttributes(attrs map[string]string) (string, error) {
	if len(attrs) == 0 {
		return emptyAttributes, nil
	}

	// encoding/json would silently rewrite invalid UTF-8, breaking the round trip.
	for key, value := range attrs {
		if !utf8.ValidString(key) {
			return "", fmt.Errorf("%w: key %q is not valid UTF-8", ErrAttributeEncoding, key)
		}

		if !utf8.ValidString(value) {
			return "", fmt.Errorf("%w: value of %q is not valid UTF-8", ErrAttributeEncoding, key)
		}
	}

	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(attrs); err != nil {
		return "", fmt.Errorf("%w: %w", ErrAttributeEncoding, err)
	}

	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// DecodeAttributes parses text produced by EncodeAttributes. The result is never nil.
func DecodeAttributes(text string) (map[string]string, error) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "{") {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrMalformedAttributes)
	}

	var attrs map[string]string
	if err := json.Unmarshal([]byte(trimmed), &attrs); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedAttributes, err)
	}

	if attrs == nil {
		attrs = make(map[string]string)
	}

	return attrs, nil
}
