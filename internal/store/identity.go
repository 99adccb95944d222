package store

import (
	"context"

	"bdmatch-workers/internal/models"
)

// TokenVerifier validates a caller access token and returns the user ID it
// belongs to. Implemented by the Keycloak client; mocked in tests.
type TokenVerifier interface {
	ResolveUserID(ctx context.Context, token string) (string, error)
}

// IdentityResolver turns an access token into a full caller identity by
// verifying the token and loading the user's marketplace profiles.
type IdentityResolver struct {
	verifier TokenVerifier
	profiles *ProfileStore
}

func NewIdentityResolver(verifier TokenVerifier, profiles *ProfileStore) *IdentityResolver {
	return &IdentityResolver{verifier: verifier, profiles: profiles}
}

// Resolve returns the identity behind the token. Fails with UNAUTHORIZED
// when the token is missing, inactive, or belongs to no known user.
func (r *IdentityResolver) Resolve(ctx context.Context, accessToken string) (*models.Identity, error) {
	userID, err := r.verifier.ResolveUserID(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	return r.profiles.GetIdentityByUserID(ctx, userID)
}
