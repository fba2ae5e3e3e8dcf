package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/maheshrc27/repurpose-api/pkg/utils"
)

func TestTokenCommandMintsValidToken(t *testing.T) {
	var out bytes.Buffer
	cmd := newTokenCmd("env-secret")
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--user", "ops"})

	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	claims, err := utils.ValidateToken("env-secret", strings.TrimSpace(out.String()))
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != "ops" || claims.Issuer != utils.TokenIssuer {
		t.Errorf("claims = %+v", claims)
	}
}

func TestTokenCommandSecretFlagWins(t *testing.T) {
	var out bytes.Buffer
	cmd := newTokenCmd("env-secret")
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--secret", "flag-secret"})

	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if _, err := utils.ValidateToken("flag-secret", strings.TrimSpace(out.String())); err != nil {
		t.Errorf("token not signed with the flag secret: %v", err)
	}
}

func TestTokenCommandNeedsSecret(t *testing.T) {
	cmd := newTokenCmd("")
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(nil)

	if err := cmd.Execute(); !errors.Is(err, errNoSecret) {
		t.Errorf("err = %v", err)
	}
}
