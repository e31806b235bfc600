package token

import (
	"context"
	"fmt"

	"github.com/camholmes12/pgiamauth/pkg/pgiamauth"
)

var _ pgiamauth.TokenGenerator = (*StaticGenerator)(nil)

// StaticGenerator returns a fixed token on every call. It stands in for the
// identity service in tests and lets the full provider path run against
// password-auth databases in local development.
type StaticGenerator struct {
	token string
}

// NewStaticGenerator creates a generator that always returns token.
func NewStaticGenerator(token string) (*StaticGenerator, error) {
	if token == "" {
		return nil, fmt.Errorf("static token must not be empty")
	}
	return &StaticGenerator{token: token}, nil
}

// GenerateToken returns the fixed token.
func (g *StaticGenerator) GenerateToken(ctx context.Context, identity pgiamauth.ConnectionIdentity) (string, error) {
	return g.token, nil
}

// String identifies the generator without revealing the token.
func (g *StaticGenerator) String() string {
	return "StaticGenerator"
}
