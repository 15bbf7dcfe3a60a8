package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sungenyeint/money-tracker/internal/models"
)

// DefaultCertsURL publishes the x509 certificates that sign Firebase ID tokens.
const DefaultCertsURL = "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"

const firebaseIssuerPrefix = "https://securetoken.google.com/"

type tokenClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// JWTVerifier validates signed JWTs.
type JWTVerifier struct {
	methods  []string
	issuer   string
	audience string
	keys     func(ctx context.Context, token *jwt.Token) (any, error)
}

// NewFirebaseVerifier validates RS256 ID tokens minted for projectID.
// Signing keys are fetched from certsURL and cached.
func NewFirebaseVerifier(projectID, certsURL string, client *http.Client) (*JWTVerifier, error) {
	if projectID == "" {
		return nil, fmt.Errorf("FIREBASE_PROJECT_ID environment variable is required")
	}
	if certsURL == "" {
		certsURL = DefaultCertsURL
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	certs := newCertSource(certsURL, client)
	return &JWTVerifier{
		methods:  []string{jwt.SigningMethodRS256.Alg()},
		issuer:   firebaseIssuerPrefix + projectID,
		audience: projectID,
		keys: func(ctx context.Context, token *jwt.Token) (any, error) {
			kid, _ := token.Header["kid"].(string)
			if kid == "" {
				return nil, errors.New("token has no kid header")
			}
			return certs.key(ctx, kid)
		},
	}, nil
}

// NewHMACVerifier validates HS256 tokens signed with secret. issuer and
// audience are checked when non-empty.
func NewHMACVerifier(secret []byte, issuer, audience string) (*JWTVerifier, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("AUTH_HMAC_SECRET environment variable is required")
	}
	return &JWTVerifier{
		methods:  []string{jwt.SigningMethodHS256.Alg()},
		issuer:   issuer,
		audience: audience,
		keys: func(ctx context.Context, token *jwt.Token) (any, error) {
			return secret, nil
		},
	}, nil
}

// Verify parses and validates token. Any failure wraps models.ErrUnauthenticated.
func (v *JWTVerifier) Verify(ctx context.Context, token string) (Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods(v.methods),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(30 * time.Second),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return v.keys(ctx, t)
	}, opts...)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", models.ErrUnauthenticated, err)
	}
	if claims.Subject == "" {
		return Identity{}, fmt.Errorf("%w: token has no subject", models.ErrUnauthenticated)
	}

	return Identity{UserID: claims.Subject, Email: claims.Email}, nil
}
