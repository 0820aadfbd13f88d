// Package errorspkg provides common app errors.
package errorspkg

import "errors"

// ErrInternal indicates a storage or other internal failure.
// The underlying cause is logged where it happens and is not exposed to clients.
var ErrInternal = errors.New("internal")
