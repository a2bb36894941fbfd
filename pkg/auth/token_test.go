package auth

import (
	"testing"
	"time"

	"github.com/coursebay/coursebay-backend/pkg/config"
	"github.com/coursebay/coursebay-backend/pkg/enums"
)

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "coursebay",
		ExpirationMinutes: 30,
	}
	now := time.Now().UTC()

	payload := AccessTokenPayload{
		UserID: 42,
		Role:   enums.UserRoleSeller,
	}

	token, err := MintAccessToken(cfg, now, payload)
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}

	if claims.UserID != 42 {
		t.Fatalf("expected user_id 42, got %d", claims.UserID)
	}
	if claims.Role != enums.UserRoleSeller {
		t.Fatalf("unexpected role %s", claims.Role)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("unexpected issuer %s", claims.Issuer)
	}
	if claims.ID == "" {
		t.Fatal("expected jti to be populated")
	}
}

func TestParseAccessToken_WrongIssuer(t *testing.T) {
	mintCfg := config.JWTConfig{Secret: "secret", Issuer: "someone-else", ExpirationMinutes: 30}
	parseCfg := config.JWTConfig{Secret: "secret", Issuer: "coursebay", ExpirationMinutes: 30}

	token, err := MintAccessToken(mintCfg, time.Now().UTC(), AccessTokenPayload{UserID: 1, Role: enums.UserRoleBuyer})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	if _, err := ParseAccessToken(parseCfg, token); err == nil {
		t.Fatal("expected issuer mismatch to fail")
	}
}

func TestMintAccessToken_InvalidPayload(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "coursebay", ExpirationMinutes: 30}

	if _, err := MintAccessToken(cfg, time.Now().UTC(), AccessTokenPayload{UserID: 0, Role: enums.UserRoleBuyer}); err == nil {
		t.Fatal("expected zero user id to fail")
	}
	if _, err := MintAccessToken(cfg, time.Now().UTC(), AccessTokenPayload{UserID: 7, Role: "superuser"}); err == nil {
		t.Fatal("expected unknown role to fail")
	}
}
