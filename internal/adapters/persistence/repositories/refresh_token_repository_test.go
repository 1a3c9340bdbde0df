package repositories

import (
	"context"
	"testing"
	"time"

	"helacredit/internal/adapters/persistence/models"
)

func TestCountActiveByUserIDSkipsRevokedAndExpired(t *testing.T) {
	db := newTestDB(t)
	repo := NewRefreshTokenRepository(db)
	ctx := context.Background()

	user := &models.User{
		Username: "sessions",
		Email:    "sessions@example.com",
		Password: "x",
		Role:     "USER",
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	now := time.Now()
	live := &models.RefreshToken{UserID: user.ID, TokenHash: "live", ExpiresAt: now.Add(time.Hour)}
	expired := &models.RefreshToken{UserID: user.ID, TokenHash: "expired", ExpiresAt: now.Add(-time.Hour)}
	revoked := &models.RefreshToken{UserID: user.ID, TokenHash: "revoked", ExpiresAt: now.Add(time.Hour), RevokedAt: &now}
	for _, token := range []*models.RefreshToken{live, expired, revoked} {
		if err := repo.Create(ctx, token); err != nil {
			t.Fatalf("seed token %s: %v", token.TokenHash, err)
		}
	}

	count, err := repo.CountActiveByUserID(ctx, user.ID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("active sessions = %d, want 1", count)
	}

	if err := repo.RevokeAllByUserID(ctx, user.ID); err != nil {
		t.Fatalf("revoke all: %v", err)
	}
	count, err = repo.CountActiveByUserID(ctx, user.ID)
	if err != nil {
		t.Fatalf("count after revoke: %v", err)
	}
	if count != 0 {
		t.Errorf("active sessions after revoke = %d, want 0", count)
	}
}
