package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"nutriplan/domain"
)

const tokenTTL = 24 * time.Hour

type (
	JWTService interface {
		GenerateToken(telegramID string) (string, time.Time, error)
		ValidateToken(token string) (*jwt.Token, error)
		GetTelegramIDByToken(token string) (int64, error)
	}

	jwtUserClaim struct {
		TelegramID string `json:"telegram_id"`
		jwt.RegisteredClaims
	}

	jwtService struct {
		secretKey string
		issuer    string
		now       func() time.Time
	}
)

func NewJWTService(secretKey string) JWTService {
	return &jwtService{
		secretKey: secretKey,
		issuer:    "NUTRIPLAN",
		now:       time.Now,
	}
}

func (j *jwtService) GenerateToken(telegramID string) (string, time.Time, error) {
	if j.secretKey == "" {
		return "", time.Time{}, fmt.Errorf("jwt secret is empty")
	}
	issuedAt := j.now()
	expiresAt := issuedAt.Add(tokenTTL)
	claims := jwtUserClaim{
		telegramID,
		jwt.RegisteredClaims{
			Subject:   telegramID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func (j *jwtService) parseToken(t_ *jwt.Token) (any, error) {
	if _, ok := t_.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method %v", t_.Header["alg"])
	}
	return []byte(j.secretKey), nil
}

func (j *jwtService) ValidateToken(token string) (*jwt.Token, error) {
	return jwt.ParseWithClaims(token, &jwtUserClaim{}, j.parseToken)
}

func (j *jwtService) GetTelegramIDByToken(token string) (int64, error) {
	t_Token, err := j.ValidateToken(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, domain.ErrTokenExpired
		}
		return 0, domain.ErrTokenInvalid
	}
	if !t_Token.Valid {
		return 0, domain.ErrTokenInvalid
	}

	claims, ok := t_Token.Claims.(*jwtUserClaim)
	if !ok || claims.Issuer != j.issuer {
		return 0, domain.ErrTokenInvalid
	}
	id, err := strconv.ParseInt(claims.TelegramID, 10, 64)
	if err != nil {
		return 0, domain.ErrTokenInvalid
	}
	return id, nil
}
