package flows

import (
	"context"

	"github.com/MrEthical07/goSession/refresh"
)

// LogoutDeps captures logout flow dependencies.
type LogoutDeps struct {
	Store refresh.Store
}

// RunLogout removes the live refresh record for subjectID. Deleting a record
// that does not exist is not an error.
func RunLogout(ctx context.Context, subjectID string, deps LogoutDeps) error {
	return deps.Store.Delete(ctx, subjectID)
}
