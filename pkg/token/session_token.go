// Package token 提供会话 cookie 的签名、校验以及随机标识的生成。
package token

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionIDBytes 为会话 ID 的随机字节数（128 位）。
const SessionIDBytes = 16

// SessionTokenManager 负责签发与校验携带会话 ID 的 JWT。
type SessionTokenManager struct {
	secretKey []byte
}

// SessionClaims 定义了会话 cookie 中存储的数据。不设置过期时间，会话随 cookie 一同存在。
type SessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// NewSessionTokenManager 创建一个新的 SessionTokenManager 实例。
func NewSessionTokenManager(secret string) *SessionTokenManager {
	return &SessionTokenManager{secretKey: []byte(secret)}
}

// GenerateToken 为给定的会话 ID 签发 token。
func (m *SessionTokenManager) GenerateToken(sessionID string) (string, error) {
	if sessionID == "" {
		return "", errors.New("empty session id")
	}
	claims := SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

// VerifyToken 校验 token 并返回其中的会话 ID。签名不匹配或内容无效时返回错误。
func (m *SessionTokenManager) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secretKey, nil
	})
	if err != nil {
		return "", err
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid && claims.SessionID != "" {
		return claims.SessionID, nil
	}
	return "", errors.New("invalid token")
}

// GenerateRandomString 返回 n 个随机字节的十六进制编码。
func GenerateRandomString(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// NewSessionID 生成一个 128 位随机会话 ID。
func NewSessionID() (string, error) {
	return GenerateRandomString(SessionIDBytes)
}
