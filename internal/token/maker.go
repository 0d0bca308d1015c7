package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
)

// Различные ошибки при работе с токенами
var (
	ErrMalformedToken   = errors.New("token is malformed")
	ErrInvalidSignature = errors.New("token signature is invalid")
	ErrExpiredToken     = errors.New("token has expired")
)

// MinSecretKeySize - минимальная длина секрета для HS256
const MinSecretKeySize = 32

// Claim - данные пользователя внутри токена
type Claim struct {
	Email string
	Name  string
}

// Payload содержит данные JWT токена
type Payload struct {
	Claim
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Maker - интерфейс для управления токенами
type Maker interface {
	CreateToken(claim Claim, duration time.Duration) (string, error)
	VerifyToken(token string) (*Payload, error)
}

type jwtClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.StandardClaims
}

// JWTMaker - реализация JWT токенов
type JWTMaker struct {
	secretKey []byte
	now       func() time.Time
}

// NewJWTMaker создает JWTMaker; секрет берется из конфигурации процесса
func NewJWTMaker(secretKey string) (*JWTMaker, error) {
	if len(secretKey) < MinSecretKeySize {
		return nil, fmt.Errorf("secret key must be at least %d characters", MinSecretKeySize)
	}
	return &JWTMaker{secretKey: []byte(secretKey), now: time.Now}, nil
}

// CreateToken подписывает токен со сроком жизни duration
func (maker *JWTMaker) CreateToken(claim Claim, duration time.Duration) (string, error) {
	if duration <= 0 {
		return "", fmt.Errorf("token duration must be positive, got %s", duration)
	}

	issuedAt := maker.now()
	claims := jwtClaims{
		Email: claim.Email,
		Name:  claim.Name,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  issuedAt.Unix(),
			ExpiresAt: issuedAt.Add(duration).Unix(),
		},
	}

	jwtToken := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := jwtToken.SignedString(maker.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken проверяет подпись и срок действия. Возвращает одну из
// ErrMalformedToken, ErrInvalidSignature, ErrExpiredToken
func (maker *JWTMaker) VerifyToken(token string) (*Payload, error) {
	keyFunc := func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidSignature
		}
		return maker.secretKey, nil
	}

	// Срок проверяем сами, чтобы отличать истечение от порчи
	parser := jwt.Parser{SkipClaimsValidation: true}
	claims := &jwtClaims{}
	_, err := parser.ParseWithClaims(token, claims, keyFunc)
	if err != nil {
		var vErr *jwt.ValidationError
		if errors.As(err, &vErr) {
			switch {
			case vErr.Errors&jwt.ValidationErrorMalformed != 0:
				return nil, ErrMalformedToken
			case vErr.Errors&(jwt.ValidationErrorSignatureInvalid|jwt.ValidationErrorUnverifiable) != 0:
				return nil, ErrInvalidSignature
			}
		}
		return nil, ErrMalformedToken
	}

	if claims.Email == "" || claims.ExpiresAt == 0 {
		return nil, ErrMalformedToken
	}

	expiresAt := time.Unix(claims.ExpiresAt, 0)
	if maker.now().Unix() > claims.ExpiresAt {
		return nil, ErrExpiredToken
	}

	return &Payload{
		Claim:     Claim{Email: claims.Email, Name: claims.Name},
		IssuedAt:  time.Unix(claims.IssuedAt, 0),
		ExpiresAt: expiresAt,
	}, nil
}
