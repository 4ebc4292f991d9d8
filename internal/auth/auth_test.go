package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/georgemallousis-design/MyWarehouse/internal/db"
	"github.com/georgemallousis-design/MyWarehouse/internal/model"
	"github.com/georgemallousis-design/MyWarehouse/internal/store"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, salt, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "" || salt == "" {
		t.Fatal("expected non-empty hash and salt")
	}

	if !VerifyPassword("correct horse battery staple", hash, salt) {
		t.Error("expected matching password to verify")
	}
	if VerifyPassword("wrong password", hash, salt) {
		t.Error("expected wrong password to fail")
	}
	if VerifyPassword("correct horse battery staple", hash, "not-hex") {
		t.Error("expected malformed salt to fail")
	}
}

func TestHashPasswordUniqueSalts(t *testing.T) {
	hash1, salt1, _ := HashPassword("same-password")
	hash2, salt2, _ := HashPassword("same-password")

	if salt1 == salt2 {
		t.Error("expected distinct salts per user")
	}
	if hash1 == hash2 {
		t.Error("expected distinct hashes with distinct salts")
	}
}

func TestAuthenticate(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	hash, salt, _ := HashPassword("secret-pass")
	if _, err := store.CreateUser(ctx, database, "gm", hash, salt, model.RoleAdmin1); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	user, err := Authenticate(ctx, database, "gm", "secret-pass")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if user.Username != "gm" || user.Role != model.RoleAdmin1 {
		t.Errorf("unexpected user: %+v", user)
	}

	// Wrong password and unknown username must be indistinguishable.
	_, errWrong := Authenticate(ctx, database, "gm", "nope")
	_, errMissing := Authenticate(ctx, database, "ghost", "nope")
	if !errors.Is(errWrong, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for wrong password, got %v", errWrong)
	}
	if !errors.Is(errMissing, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for missing user, got %v", errMissing)
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	secret := "test-secret-key"

	token, err := GenerateToken(secret, "admin", model.RoleAdmin1)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := ValidateToken(secret, token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}

	if claims.Username != "admin" {
		t.Errorf("expected username 'admin', got %q", claims.Username)
	}
	if claims.Role != model.RoleAdmin1 {
		t.Errorf("expected role 'admin1', got %q", claims.Role)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, _ := GenerateToken("secret1", "admin", model.RoleAdmin1)

	_, err := ValidateToken("secret2", token)
	if err == nil {
		t.Error("expected error for wrong secret")
	}
}

func TestValidateTokenInvalid(t *testing.T) {
	_, err := ValidateToken("secret", "not-a-token")
	if err == nil {
		t.Error("expected error for invalid token")
	}
}

func TestTokenExpiry(t *testing.T) {
	secret := "test"
	token, _ := GenerateToken(secret, "test", model.RoleViewer)
	claims, _ := ValidateToken(secret, token)

	expiresAt := claims.ExpiresAt.Time
	expectedExpiry := time.Now().Add(TokenExpiry)

	// Should be within a few seconds.
	diff := expectedExpiry.Sub(expiresAt)
	if diff < -5*time.Second || diff > 5*time.Second {
		t.Errorf("token expiry too far from expected: diff=%v", diff)
	}
}
