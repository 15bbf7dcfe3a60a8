package auth

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	defaultCertsTTL    = time.Hour
	minCertsRefreshGap = time.Minute
)

// certSource caches the provider's public keys by kid.
type certSource struct {
	url    string
	client *http.Client
	now    func() time.Time

	mu          sync.Mutex
	keys        map[string]*rsa.PublicKey
	expires     time.Time
	lastFetched time.Time
}

func newCertSource(url string, client *http.Client) *certSource {
	return &certSource{url: url, client: client, now: time.Now}
}

// key returns the public key for kid, refreshing the set when it has expired.
// An unknown kid triggers at most one refresh per minCertsRefreshGap.
func (c *certSource) key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	_, known := c.keys[kid]
	stale := now.After(c.expires)
	if stale || (!known && now.Sub(c.lastFetched) >= minCertsRefreshGap) {
		if err := c.refresh(ctx); err != nil {
			if c.keys == nil {
				return nil, err
			}
			slog.Warn("failed to refresh signing certificates, using cached set", "error", err)
		}
	}

	key, ok := c.keys[kid]
	if !ok {
		return nil, fmt.Errorf("unknown signing key %q", kid)
	}
	return key, nil
}

func (c *certSource) refresh(ctx context.Context) error {
	c.lastFetched = c.now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return fmt.Errorf("failed to create certificates request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch signing certificates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("certificates request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var pems map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&pems); err != nil {
		return fmt.Errorf("failed to decode signing certificates: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(pems))
	for kid, pem := range pems {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pem))
		if err != nil {
			slog.Warn("skipping unreadable signing certificate", "kid", kid, "error", err)
			continue
		}
		keys[kid] = key
	}

	c.keys = keys
	c.expires = c.lastFetched.Add(maxAge(resp.Header.Get("Cache-Control")))
	slog.Info("refreshed signing certificates", "count", len(keys), "expires", c.expires)
	return nil
}

// maxAge extracts max-age from a Cache-Control header, defaulting to one hour.
func maxAge(header string) time.Duration {
	for _, directive := range strings.Split(header, ",") {
		name, value, ok := strings.Cut(strings.TrimSpace(directive), "=")
		if !ok || !strings.EqualFold(name, "max-age") {
			continue
		}
		if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultCertsTTL
}
