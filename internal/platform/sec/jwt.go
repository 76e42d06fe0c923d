// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec verifies identity tokens issued by the external identity provider.
//
// # Architecture
//
// Sleepora never stores passwords. Users sign in with the identity provider, which
// issues RS256 JWTs. The API only holds the provider's public key and turns a valid
// token into [AuthClaims]. Roles are not trusted from the token; they are resolved
// from the stored profile by the access package.
package sec

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMissingSubject is returned when a structurally valid token carries no subject.
var ErrMissingSubject = errors.New("sec: token has no subject")

// AuthClaims is the identity payload carried by provider-issued access tokens.
type AuthClaims struct {
	jwt.RegisteredClaims

	Email         string `json:"email,omitempty"`
	Name          string `json:"name,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty"`
}

// # Verification

// Verifier checks the signature and validity of provider tokens using RS256.
type Verifier struct {
	publicKey *rsa.PublicKey
	issuer    string
}

// NewVerifier constructs a [Verifier] from an already-parsed public key.
func NewVerifier(publicKey *rsa.PublicKey, issuer string) *Verifier {
	return &Verifier{publicKey: publicKey, issuer: issuer}
}

// LoadVerifier reads a PEM-encoded RSA public key from disk.
func LoadVerifier(publicKeyPath, issuer string) (*Verifier, error) {
	publicKeyData, err := os.ReadFile(publicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to read public key from %s: %w", publicKeyPath, err)
	}

	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyData)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to parse public key: %w", err)
	}

	return NewVerifier(publicKey, issuer), nil
}

// VerifyToken parses tokenString and returns its claims when the signature,
// issuer and expiry are valid and a subject is present.
func (verifier *Verifier) VerifyToken(tokenString string) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return verifier.publicKey, nil
	}, jwt.WithIssuer(verifier.issuer), jwt.WithExpirationRequired())

	if err != nil {
		return nil, fmt.Errorf("sec: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("sec: invalid token claims")
	}

	if claims.Subject == "" {
		return nil, ErrMissingSubject
	}

	return claims, nil
}

// # Signing

// Signer mints RS256 tokens in the identity provider's format. It backs the
// sleeporactl dev-token command and tests; production tokens come from the provider.
type Signer struct {
	privateKey *rsa.PrivateKey
	issuer     string
}

// NewSigner constructs a [Signer] from an already-parsed private key.
func NewSigner(privateKey *rsa.PrivateKey, issuer string) *Signer {
	return &Signer{privateKey: privateKey, issuer: issuer}
}

// LoadSigner reads a PEM-encoded RSA private key from disk.
func LoadSigner(privateKeyPath, issuer string) (*Signer, error) {
	privateKeyData, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to read private key from %s: %w", privateKeyPath, err)
	}

	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyData)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to parse private key: %w", err)
	}

	return NewSigner(privateKey, issuer), nil
}

// Sign issues a token for subject that expires after timeToLive.
func (signer *Signer) Sign(subject, email, name string, timeToLive time.Duration) (string, error) {
	currentTime := time.Now()
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    signer.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
		Email:         email,
		Name:          name,
		EmailVerified: email != "",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signedToken, err := token.SignedString(signer.privateKey)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}
