// Copyright 2025 Edgaze
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCookieName is the cookie carrying a browser session token for
// endpoints that accept both bearer and cookie credentials.
const SessionCookieName = "edgaze_session"

// Resolver validates bearer credentials and returns the user they identify.
// It has no side effects and is safe for concurrent use.
type Resolver struct {
	secret []byte
}

// NewResolver creates a resolver that verifies HS256 tokens with the given
// signing secret.
func NewResolver(secret []byte) *Resolver {
	return &Resolver{secret: secret}
}

// Authenticate extracts the bearer token from the Authorization header and
// returns the verified user ID. A missing header fails with ErrMissingToken.
func (r *Resolver) Authenticate(req *http.Request) (string, error) {
	tokenString := bearerToken(req)
	if tokenString == "" {
		return "", ErrMissingToken
	}
	return r.validate(tokenString)
}

// AuthenticateWithSession behaves like Authenticate but falls back to the
// session cookie when no bearer token is present. The bearer path is
// preferred when both are available.
func (r *Resolver) AuthenticateWithSession(req *http.Request) (string, error) {
	if tokenString := bearerToken(req); tokenString != "" {
		return r.validate(tokenString)
	}

	cookie, err := req.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return "", ErrMissingToken
	}
	return r.validate(cookie.Value)
}

// validate parses and verifies a token string and extracts the subject claim.
func (r *Resolver) validate(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return r.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", ErrInvalidToken
	}

	return sub, nil
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header, returning "" when the header is absent or malformed.
func bearerToken(req *http.Request) string {
	header := req.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
