// Package domain defines the session model, Redis key layout and session errors.
package domain

import (
	"github.com/clio-platform/clio/internal/errors"
)

// Session error definitions.
//
// ErrInvalidSession and ErrSessionSuperseded are expected outcomes that map to 401.
// ErrStoreUnavailable means the session store could not be reached within the retry
// ceiling and maps to 503. Callers must never treat it as a valid session.
var (
	// ErrInvalidSession indicates the token is unknown, expired, corrupt or bound to another instance.
	ErrInvalidSession = errors.Wrap(errors.ErrUnauthorized, "invalid session")

	// ErrSessionSuperseded indicates the session was regenerated and the caller must re-authenticate.
	ErrSessionSuperseded = errors.Wrap(errors.ErrUnauthorized, "session superseded")

	// ErrStoreUnavailable indicates the session store failed after all retries.
	ErrStoreUnavailable = errors.Wrap(errors.ErrUnavailable, "session store unavailable")

	// ErrInvalidIdentity indicates the identity handed to create or regenerate is unusable.
	ErrInvalidIdentity = errors.Wrap(errors.ErrInvalidInput, "invalid identity")
)
