package client

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"customs-gateway/internal/domain/entity"
)

// PublicIPResolver asks an external echo service (ipify by default) for the
// public address of the host.
type PublicIPResolver struct {
	url     string
	client  *http.Client
	timeout time.Duration
}

func NewPublicIPResolver(url string, timeout time.Duration) *PublicIPResolver {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &PublicIPResolver{
		url:     url,
		client:  &http.Client{},
		timeout: timeout,
	}
}

func (r *PublicIPResolver) PublicIP(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", entity.ErrGeolocationUnavailable, err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: public ip lookup: %w", entity.ErrGeolocationUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: public ip lookup returned %d", entity.ErrGeolocationUnavailable, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64))
	if err != nil {
		return "", fmt.Errorf("%w: %w", entity.ErrGeolocationUnavailable, err)
	}
	ip := strings.TrimSpace(string(body))
	if net.ParseIP(ip) == nil {
		return "", fmt.Errorf("%w: public ip lookup returned %q", entity.ErrGeolocationUnavailable, ip)
	}
	return ip, nil
}
