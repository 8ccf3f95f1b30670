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
	"errors"
	"fmt"
)

var (
	// Validation errors, raised before a query reaches storage.

	ErrInvalidOperator  = errors.New("invalid range operator")
	ErrMissingTimestamp = errors.New("timestamp is required")

	// Attribute codec errors.

	ErrAttributeEncoding   = errors.New("attributes cannot be canonically encoded")
	ErrMalformedAttributes = errors.New("malformed attributes")

	// Row decoding.

	ErrMalformedRow = errors.New("malformed log row")

	// Storage.

	ErrStorage = errors.New("storage error")
)

// StorageError is an opaque failure reported by the storage collaborator.
type StorageError struct {
	Op  string
	Err error
}

// NewStorageError wraps err unless it already is a StorageError.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}

	var se *StorageError
	if errors.As(err, &se) {
		return err
	}

	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is makes every StorageError match ErrStorage.
func (*StorageError) Is(target error) bool {
	return target == ErrStorage
}
