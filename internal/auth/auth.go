// Package auth decodes the session token issued by the external identity service.
//
// Tokens are consumed, never issued. Without a secret the payload is trusted as
// is; with a secret the HS256 signature and expiry are checked as well.
package auth

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultCookieName is the cookie the token is stored in.
const DefaultCookieName = "token"

// Known roles.
const (
	RoleApplicant = "ROLE_APPLICANT"
	RoleCompany   = "ROLE_COMPANY"
)

// ErrNoToken is returned when a request carries neither the cookie nor a bearer header.
var ErrNoToken = errors.New("no token in request")

// InvalidTokenError wraps any failure to decode or verify a token.
type InvalidTokenError struct {
	Cause error
}

func (e *InvalidTokenError) Error() string {
	return fmt.Sprintf("invalid token: %v", e.Cause)
}

func (e *InvalidTokenError) Unwrap() error {
	return e.Cause
}

// FlexibleID accepts a JSON string or number and keeps its text form.
type FlexibleID string

func (f *FlexibleID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("profileId must be a string or number: %w", err)
	}
	*f = FlexibleID(n.String())
	return nil
}

// Claims is the token payload.
type Claims struct {
	ProfileID FlexibleID `json:"profileId"`
	Email     string     `json:"email,omitempty"`
	Roles     []string   `json:"roles,omitempty"`
	TokenType string     `json:"token_type,omitempty"`
	jwt.RegisteredClaims
}

// Identity is the authenticated caller.
type Identity struct {
	// UserID is the token subject. It owns persisted resumes and is uuid.Nil
	// when the subject is missing or not a UUID.
	UserID    uuid.UUID
	ProfileID string
	Email     string
	Roles     []string
}

// HasRole reports whether the identity carries role.
func (i *Identity) HasRole(role string) bool {
	return i != nil && slices.Contains(i.Roles, role)
}

// IsApplicant reports whether the identity is a job applicant.
func (i *Identity) IsApplicant() bool { return i.HasRole(RoleApplicant) }

// IsCompany reports whether the identity is a company account.
func (i *Identity) IsCompany() bool { return i.HasRole(RoleCompany) }

// SessionKey identifies the editing session of this identity.
func (i *Identity) SessionKey() string {
	if i.ProfileID != "" {
		return "profile:" + i.ProfileID
	}
	if i.UserID != uuid.Nil {
		return "user:" + i.UserID.String()
	}
	return ""
}

// Decoder turns token strings into identities.
type Decoder struct {
	secret []byte
}

// NewDecoder creates a decoder. An empty secret disables signature verification.
func NewDecoder(secret string) *Decoder {
	d := &Decoder{}
	if secret != "" {
		d.secret = []byte(secret)
	}
	return d
}

// Verifies reports whether the decoder checks signatures.
func (d *Decoder) Verifies() bool {
	return len(d.secret) > 0
}

// Decode parses tokenString into an identity.
func (d *Decoder) Decode(tokenString string) (*Identity, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, &InvalidTokenError{Cause: fmt.Errorf("token string is empty")}
	}

	claims := &Claims{}
	if d.Verifies() {
		_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return d.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			return nil, &InvalidTokenError{Cause: err}
		}
	} else {
		if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
			return nil, &InvalidTokenError{Cause: err}
		}
	}

	return identityFromClaims(claims)
}

// ValidateToken implements the middleware token validator.
func (d *Decoder) ValidateToken(tokenString string) (*Identity, error) {
	return d.Decode(tokenString)
}

func identityFromClaims(c *Claims) (*Identity, error) {
	id := &Identity{
		ProfileID: string(c.ProfileID),
		Email:     c.Email,
		Roles:     c.Roles,
	}
	if c.Subject != "" {
		if uid, err := uuid.Parse(c.Subject); err == nil {
			id.UserID = uid
		}
	}
	if id.SessionKey() == "" {
		return nil, &InvalidTokenError{Cause: fmt.Errorf("token has neither profileId nor a UUID subject")}
	}
	return id, nil
}

// TokenFromRequest returns the token from the named cookie, falling back to an
// Authorization bearer header.
func TokenFromRequest(r *http.Request, cookieName string) (string, error) {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	if c, err := r.Cookie(cookieName); err == nil && strings.TrimSpace(c.Value) != "" {
		return strings.TrimSpace(c.Value), nil
	}

	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1], nil
	}
	return "", ErrNoToken
}
