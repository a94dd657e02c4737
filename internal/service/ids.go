package service

import (
	"github.com/google/uuid"

	appErrors "github.com/noah-isme/student-portal-api/pkg/errors"
)

// requireID rejects ids that cannot name a stored row. Primary keys are UUIDs.
func requireID(id, resource string) error {
	if _, err := uuid.Parse(id); err != nil {
		return appErrors.Clone(appErrors.ErrNotFound, resource+" not found")
	}
	return nil
}
