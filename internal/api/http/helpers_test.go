package httpapi

import (
	"github.com/match-hub/match-hub/internal/apperr"
	"github.com/match-hub/match-hub/internal/domain/lock"
)

func appMatchLockErr() error {
	return apperr.Wrap(apperr.CodeLockAcquisitionFailed, "match post is busy, try again", lock.ErrNotAcquired)
}
