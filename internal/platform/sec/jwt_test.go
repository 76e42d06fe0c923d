// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/sleepora/internal/platform/sec"
)

const testIssuer = "https://id.test"

func newKeyPair(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

/*
TestVerifier_RoundTrip checks that a signed token verifies and keeps its identity claims.
*/
func TestVerifier_RoundTrip(t *testing.T) {
	key := newKeyPair(t)
	signer := sec.NewSigner(key, testIssuer)
	verifier := sec.NewVerifier(&key.PublicKey, testIssuer)

	token, err := signer.Sign("idp|42", "ana@sleepora.shop", "Ana", time.Minute)
	require.NoError(t, err)

	claims, err := verifier.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "idp|42", claims.Subject)
	assert.Equal(t, "ana@sleepora.shop", claims.Email)
	assert.True(t, claims.EmailVerified)
}

/*
TestVerifier_Rejects covers expired tokens, foreign issuers and foreign keys.
*/
func TestVerifier_Rejects(t *testing.T) {
	key := newKeyPair(t)
	verifier := sec.NewVerifier(&key.PublicKey, testIssuer)

	expired, err := sec.NewSigner(key, testIssuer).Sign("idp|1", "", "", -time.Minute)
	require.NoError(t, err)

	foreignIssuer, err := sec.NewSigner(key, "https://evil.test").Sign("idp|1", "", "", time.Minute)
	require.NoError(t, err)

	foreignKey, err := sec.NewSigner(newKeyPair(t), testIssuer).Sign("idp|1", "", "", time.Minute)
	require.NoError(t, err)

	noSubject, err := sec.NewSigner(key, testIssuer).Sign("", "", "", time.Minute)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"expired":        expired,
		"foreign_issuer": foreignIssuer,
		"foreign_key":    foreignKey,
		"no_subject":     noSubject,
		"garbage":        "not-a-jwt",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := verifier.VerifyToken(token)
			assert.Error(t, err)
		})
	}
}
