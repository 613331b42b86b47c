package scraper

import (
	"context"
	"errors"

	"github.com/accountdoctor/accountdoctor/internal/models"
)

// Common errors returned by profile providers.
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrRateLimited     = errors.New("scraper rate limited")
)

// ProfileProvider fetches a public profile and normalizes it into the
// snapshot shape the scoring engine consumes. The raw payload is returned
// alongside so callers can archive it.
type ProfileProvider interface {
	GetName() string
	FetchProfile(ctx context.Context, username string) (*models.ProfileSnapshot, []byte, error)
	IsEnabled() bool
}
