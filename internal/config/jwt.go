package config

import (
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
)

type SessionClaims struct {
	SessionId string `json:"session_id"`
	jwt.RegisteredClaims
}

type JWT struct {
	publicKey     *rsa.PublicKey
	privateKey    *rsa.PrivateKey
	signingMethod jwt.SigningMethod
	tokenLifetime time.Duration
}

func loadPrivateKey(v *viper.Viper) (*rsa.PrivateKey, error) {
	if key := v.GetString("jwt_private_key"); key != "" {
		return jwt.ParseRSAPrivateKeyFromPEM([]byte(key))
	}
	path := v.GetString("jwt_private_key_file")
	if path == "" {
		return nil, fmt.Errorf("no JWT_PRIVATE_KEY or JWT_PRIVATE_KEY_FILE env variable set")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read JWT private key: %w", err)
	}
	return jwt.ParseRSAPrivateKeyFromPEM(b)
}

func loadPublicKey(v *viper.Viper) (*rsa.PublicKey, error) {
	if key := v.GetString("jwt_public_key"); key != "" {
		return jwt.ParseRSAPublicKeyFromPEM([]byte(key))
	}
	path := v.GetString("jwt_public_key_file")
	if path == "" {
		return nil, fmt.Errorf("no JWT_PUBLIC_KEY or JWT_PUBLIC_KEY_FILE env variable set")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read JWT public key: %w", err)
	}
	return jwt.ParseRSAPublicKeyFromPEM(b)
}

// NewJWT loads the signing key pair. In development an ephemeral pair is
// generated when none is configured; tokens then die with the process.
func NewJWT(cfg *App) (*JWT, error) {
	privateKey, err := loadPrivateKey(cfg.v)
	if err != nil && cfg.Development {
		if privateKey, err = rsa.GenerateKey(rand.Reader, 2048); err != nil {
			return nil, fmt.Errorf("unable to generate JWT key: %w", err)
		}
		return NewJWTFromKey(privateKey, cfg.TokenLifetime), nil
	}
	if err != nil {
		return nil, err
	}

	publicKey, err := loadPublicKey(cfg.v)
	if err != nil {
		return nil, err
	}

	return &JWT{
		privateKey:    privateKey,
		publicKey:     publicKey,
		signingMethod: jwt.SigningMethodRS256,
		tokenLifetime: cfg.TokenLifetime,
	}, nil
}

func NewJWTFromKey(key *rsa.PrivateKey, lifetime time.Duration) *JWT {
	return &JWT{
		privateKey:    key,
		publicKey:     &key.PublicKey,
		signingMethod: jwt.SigningMethodRS256,
		tokenLifetime: lifetime,
	}
}

func (j *JWT) SignSession(sessionId string) (string, error) {
	now := time.Now()
	claims := &SessionClaims{
		SessionId: sessionId,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.tokenLifetime)),
		},
	}
	return jwt.NewWithClaims(j.signingMethod, claims).SignedString(j.privateKey)
}

func (j *JWT) ParseSessionClaims(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&SessionClaims{},
		func(t *jwt.Token) (interface{}, error) {
			return j.publicKey, nil
		},
		jwt.WithValidMethods([]string{j.signingMethod.Alg()}),
	)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok {
		return nil, fmt.Errorf("malformed claims")
	}
	return claims, nil
}
