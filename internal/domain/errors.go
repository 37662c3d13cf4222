package domain

import (
	"errors"
	"fmt"
)

// ErrConfigMissing marks a required credential that was absent at the point
// of use. Distinct from runtime fetch failures: it means the service is
// misconfigured, not that the provider misbehaved.
var ErrConfigMissing = errors.New("required credential not configured")

// MediaUnavailableError reports that an attachment could not be retrieved
// from the messaging provider. The orchestrator converts it into the fixed
// user-facing failure reply.
type MediaUnavailableError struct {
	Reason string
	Err    error
}

func (e *MediaUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("media unavailable: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("media unavailable: %s", e.Reason)
}

func (e *MediaUnavailableError) Unwrap() error {
	return e.Err
}
