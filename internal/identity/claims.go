package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"tablepos/internal/domain"
)

// Claims carried by a POS terminal or staff bearer token.
type Claims struct {
	RestaurantID int    `json:"restaurantId"`
	UserID       string `json:"userId"`
	Role         string `json:"role"`
	jwt.RegisteredClaims
}

type TokenResolver struct {
	secret []byte
	now    func() time.Time
}

func NewTokenResolver(secret string) *TokenResolver {
	return &TokenResolver{secret: []byte(secret), now: time.Now}
}

// Resolve validates an HS256 token and returns the actor it names.
func (r *TokenResolver) Resolve(tokenStr string) (domain.Actor, error) {
	if tokenStr == "" {
		return domain.Actor{}, errors.New("missing token")
	}
	if len(r.secret) == 0 {
		return domain.Actor{}, errors.New("token authentication is not configured")
	}

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return r.secret, nil
	}, jwt.WithTimeFunc(r.now))
	if err != nil {
		return domain.Actor{}, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return domain.Actor{}, errors.New("invalid token")
	}

	if claims.RestaurantID <= 0 {
		return domain.Actor{}, errors.New("token does not name a restaurant")
	}

	return domain.Actor{
		RestaurantID: claims.RestaurantID,
		UserID:       claims.UserID,
		Role:         claims.Role,
	}, nil
}

// Issue signs a token for actor valid for ttl.
func (r *TokenResolver) Issue(actor domain.Actor, ttl time.Duration) (string, error) {
	now := r.now()
	claims := Claims{
		RestaurantID: actor.RestaurantID,
		UserID:       actor.UserID,
		Role:         actor.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(r.secret)
}
