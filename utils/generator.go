package utils

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/onecare/backend/cache"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// CodeGenerator produces human-readable encounter short codes of the form
// ENC-XXXXXXXX. Uses only capital letters and numbers, omitting easily
// confused characters: 0, O, 1, I.
type CodeGenerator struct {
	usedCodes    map[string]bool
	mutex        sync.Mutex
	characterSet []rune
}

func NewCodeGenerator() *CodeGenerator {
	return &CodeGenerator{
		usedCodes:    make(map[string]bool),
		characterSet: []rune("ABCDEFGHJKLMNPQRSTUVWXYZ23456789"),
	}
}

// GenerateEncounterCode creates a new unique encounter short code.
func (g *CodeGenerator) GenerateEncounterCode() (string, error) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	// Maximum attempts to avoid infinite loops
	maxAttempts := 100
	for attempts := 0; attempts < maxAttempts; attempts++ {
		suffix, err := g.generateRandom(8)
		if err != nil {
			return "", err
		}

		code := "ENC-" + suffix
		if !g.usedCodes[code] {
			g.usedCodes[code] = true
			return code, nil
		}
	}

	return "", fmt.Errorf("failed to generate unique encounter code after %d attempts", maxAttempts)
}

func (g *CodeGenerator) generateRandom(length int) (string, error) {
	result := make([]rune, length)
	charSetLength := big.NewInt(int64(len(g.characterSet)))

	for i := 0; i < length; i++ {
		randomIndex, err := rand.Int(rand.Reader, charSetLength)
		if err != nil {
			return "", err
		}
		result[i] = g.characterSet[randomIndex.Int64()]
	}

	return string(result), nil
}

// CleanupOldCodes resets the in-memory code set once it grows past maxSize.
func (g *CodeGenerator) CleanupOldCodes(maxSize int) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if len(g.usedCodes) > maxSize {
		g.usedCodes = make(map[string]bool)
	}
}

// TokenIssuer signs login tokens and keeps the issued claims in redis so a
// token can be verified and revoked by its jti.
type TokenIssuer struct {
	cache     *cache.Cache
	secretKey []byte
	duration  time.Duration
}

// NewTokenIssuer creates a TokenIssuer. sessionHours is the configured
// SESSION_DURATION value; falls back to 24 when unparsable.
func NewTokenIssuer(redisClient *redis.Client, secretKey, sessionHours string) *TokenIssuer {
	hours, err := strconv.Atoi(sessionHours)
	if err != nil || hours <= 0 {
		hours = 24
	}
	return &TokenIssuer{
		cache:     cache.NewCache(redisClient, "jwt:"),
		secretKey: []byte(secretKey),
		duration:  time.Duration(hours) * time.Hour,
	}
}

// IssueToken creates a signed JWT for the given user ID and role.
func (g *TokenIssuer) IssueToken(ctx context.Context, userID, role string) (string, error) {
	jti := uuid.New().String()

	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  time.Now().Add(g.duration).Unix(),
		"iat":  time.Now().Unix(),
		"jti":  jti,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(g.secretKey)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token")
	}

	if err := g.cache.Set(ctx, jti, claims, g.duration); err != nil {
		return "", errors.Wrap(err, "failed to cache token")
	}

	return signedToken, nil
}

// VerifyToken parses a token, checks its signature and confirms the jti is
// still present in the cache. Returns the claims on success.
func (g *TokenIssuer) VerifyToken(ctx context.Context, tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return g.secretKey, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	jti, ok := claims["jti"].(string)
	if !ok {
		return nil, errors.New("invalid token identifier")
	}

	var cachedClaims jwt.MapClaims
	if err := g.cache.Get(ctx, jti, &cachedClaims); err != nil {
		return nil, errors.Wrap(err, "token not found in cache")
	}

	return claims, nil
}

// RevokeToken removes a token from the cache by its jti.
func (g *TokenIssuer) RevokeToken(ctx context.Context, jti string) error {
	return g.cache.Delete(ctx, jti)
}
