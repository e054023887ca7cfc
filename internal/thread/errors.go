// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package thread

import (
	"errors"
	"fmt"
)

// ErrThreadNotFound is returned when an operation names a thread id that is
// not in the store. Use errors.Is to check for it.
var ErrThreadNotFound = errors.New("thread not found")

// CapacityError reports that a hard resource cap was hit. The operation was
// refused and no existing data was touched; the caller recovers by resolving
// or deleting something first.
type CapacityError struct {
	Resource string // "threads" or "messages"
	Limit    int
}

// Error implements the error interface.
func (e *CapacityError) Error() string {
	return fmt.Sprintf("%s capacity reached (limit %d)", e.Resource, e.Limit)
}

// Is lets callers match any CapacityError for the same resource with
// errors.Is.
func (e *CapacityError) Is(target error) bool {
	t, ok := target.(*CapacityError)
	if !ok {
		return false
	}
	return e.Resource == t.Resource
}

// Sentinel capacity errors for errors.Is comparisons.
var (
	ErrThreadCapacity  = &CapacityError{Resource: "threads", Limit: MaxThreads}
	ErrMessageCapacity = &CapacityError{Resource: "messages", Limit: MaxMessagesPerThread}
)
