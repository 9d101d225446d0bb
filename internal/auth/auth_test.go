package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"google.golang.org/api/idtoken"
)

func TestJWTRoundTrip(t *testing.T) {
	j, err := NewJWT("top-secret", time.Hour)
	if err != nil {
		t.Fatalf("new jwt: %v", err)
	}

	token, err := j.Issue(Identity{UserID: "u1", Email: "ada@example.com", Name: "Ada"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	id, err := j.Validate(context.Background(), token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if id.UserID != "u1" || id.Email != "ada@example.com" || id.Name != "Ada" {
		t.Fatalf("unexpected identity %+v", id)
	}
}

func TestJWTRejects(t *testing.T) {
	j, _ := NewJWT("top-secret", time.Hour)
	other, _ := NewJWT("another-secret", time.Hour)

	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	expired, _ := NewJWT("top-secret", time.Minute)
	expired.now = func() time.Time { return issued }
	expiredToken, _ := expired.Issue(Identity{UserID: "u1"})

	foreign, _ := other.Issue(Identity{UserID: "u1"})
	unsigned, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject: "u1",
		Issuer:  issuer,
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{name: "empty", token: "", want: ErrMissingToken},
		{name: "garbage", token: "not-a-token", want: ErrInvalidToken},
		{name: "wrong secret", token: foreign, want: ErrInvalidToken},
		{name: "expired", token: expiredToken, want: ErrInvalidToken},
		{name: "none algorithm", token: unsigned, want: ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := j.Validate(context.Background(), tt.token); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestGoogleValidator(t *testing.T) {
	g := NewGoogle("client-id")

	var gotAudience string
	g.validate = func(_ context.Context, token, audience string) (*idtoken.Payload, error) {
		gotAudience = audience
		if token != "good" {
			return nil, errors.New("idtoken: invalid token")
		}
		return &idtoken.Payload{
			Subject: "google-123",
			Claims:  map[string]interface{}{"email": "ada@example.com", "name": "Ada"},
		}, nil
	}

	id, err := g.Validate(context.Background(), "good")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if id.UserID != "google-123" || id.Email != "ada@example.com" || gotAudience != "client-id" {
		t.Fatalf("unexpected identity %+v (audience %q)", id, gotAudience)
	}

	if _, err := g.Validate(context.Background(), "bad"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestNewAndBearerToken(t *testing.T) {
	if _, err := New("jwt", "", "", 0); err == nil {
		t.Fatalf("expected an error for an empty secret")
	}
	if _, err := New("saml", "s", "", 0); err == nil {
		t.Fatalf("expected an error for an unknown mode")
	}
	if v, err := New("google", "", "aud", 0); err != nil || v == nil {
		t.Fatalf("unexpected google validator error %v", err)
	}

	tests := map[string]string{
		"Bearer abc":   "abc",
		"bearer  abc ": "abc",
		"Basic abc":    "",
		"Bearer":       "",
		"":             "",
	}
	for header, want := range tests {
		got, ok := BearerToken(header)
		if got != want || ok != (want != "") {
			t.Fatalf("BearerToken(%q) = %q, %v", header, got, ok)
		}
	}
}
