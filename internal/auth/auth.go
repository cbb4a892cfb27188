// Package auth issues and verifies the HMAC-signed tokens the
// MindSpace API hands out at login. The client parses the same claims
// without verification to learn its role and principal id.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Service struct{ hmac []byte }

func NewService(secret string) *Service { return &Service{hmac: []byte(secret)} }

type Claims struct {
	Sub       string `json:"sub"`
	Role      string `json:"role"` // "student", "parent" or "psychologist"
	StudentID *int   `json:"studentId,omitempty"`
	ParentID  *int   `json:"parentId,omitempty"`
	jwt.RegisteredClaims
}

func (s *Service) Issue(sub, role string, studentID, parentID *int) (string, error) {
	now := time.Now()
	claims := &Claims{
		Sub:       sub,
		Role:      role,
		StudentID: studentID,
		ParentID:  parentID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "mindspaced",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(8 * time.Hour)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.hmac)
}

func (s *Service) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.hmac, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	c, _ := token.Claims.(*Claims)
	return c, nil
}

// ParseUnverified decodes claims without checking the signature. The
// device never holds the server secret; it only needs to read its own
// role and id out of the token it was just handed over TLS.
func ParseUnverified(tokenStr string) (*Claims, error) {
	var claims Claims
	_, _, err := jwt.NewParser().ParseUnverified(tokenStr, &claims)
	if err != nil {
		return nil, err
	}
	return &claims, nil
}
