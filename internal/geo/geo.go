// Package geo resolves visitor location and device attributes from request
// metadata, with a best-effort IP lookup fallback. Resolution never fails:
// anything that cannot be determined comes back as Unknown.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/linnemanlabs/go-core/log"
)

// Unknown is the placeholder for any attribute that could not be resolved.
const Unknown = "Unknown"

const defaultLookupTimeout = 2 * time.Second

// Location holds the resolved geo/device attributes for one pulse.
type Location struct {
	Country   string
	City      string
	IP        string
	UserAgent string
}

// Hints carries the raw request metadata the resolver works from. Country
// and City are edge-provided (CDN viewer headers) and win when present.
type Hints struct {
	Country      string
	City         string
	ForwardedFor string
	RemoteAddr   string
	UserAgent    string
}

// HintsFromRequest extracts resolver hints from an incoming HTTP request.
func HintsFromRequest(r *http.Request) Hints {
	return Hints{
		Country:      r.Header.Get("CloudFront-Viewer-Country"),
		City:         r.Header.Get("CloudFront-Viewer-City"),
		ForwardedFor: r.Header.Get("X-Forwarded-For"),
		RemoteAddr:   r.RemoteAddr,
		UserAgent:    r.Header.Get("User-Agent"),
	}
}

// Resolver prefers edge-provided headers and falls back to an ip-api style
// JSON lookup when country or city is still unknown. The lookup runs under
// a short timeout and its failure only leaves Unknown values behind.
type Resolver struct {
	endpoint string
	client   *http.Client
	logger   log.Logger
}

// NewResolver creates a Resolver. An empty endpoint disables the fallback
// lookup entirely; timeout <= 0 uses a 2s default.
func NewResolver(endpoint string, timeout time.Duration, logger log.Logger) *Resolver {
	if timeout <= 0 {
		timeout = defaultLookupTimeout
	}
	if logger == nil {
		logger = log.Nop()
	}
	return &Resolver{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// Resolve returns the best location it can determine for the given hints.
func (r *Resolver) Resolve(ctx context.Context, h Hints) Location {
	loc := Location{
		Country:   Unknown,
		City:      Unknown,
		IP:        clientIP(h),
		UserAgent: h.UserAgent,
	}
	if h.Country != "" {
		loc.Country = h.Country
	}
	if h.City != "" {
		loc.City = h.City
	}
	if loc.UserAgent == "" {
		loc.UserAgent = Unknown
	}

	if loc.Country != Unknown && loc.City != Unknown {
		return loc
	}
	if r.endpoint == "" || !lookupable(loc.IP) {
		return loc
	}

	country, city, err := r.lookup(ctx, loc.IP)
	if err != nil {
		r.logger.Warn(ctx, "ip lookup failed", "ip", loc.IP, "error", err.Error())
		return loc
	}
	if country != "" {
		loc.Country = country
	}
	if city != "" {
		loc.City = city
	}
	return loc
}

type lookupResponse struct {
	Status  string `json:"status"`
	Country string `json:"country"`
	City    string `json:"city"`
}

func (r *Resolver) lookup(ctx context.Context, ip string) (country, city string, err error) {
	u := fmt.Sprintf("%s/json/%s?fields=status,country,city", r.endpoint, url.PathEscape(ip))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return "", "", fmt.Errorf("create request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("lookup request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("lookup returned %d", resp.StatusCode)
	}

	var lr lookupResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&lr); err != nil {
		return "", "", fmt.Errorf("decode lookup response: %w", err)
	}
	if lr.Status != "success" {
		return "", "", fmt.Errorf("lookup status %q", lr.Status)
	}
	return lr.Country, lr.City, nil
}

// clientIP picks the first X-Forwarded-For hop, falling back to the socket
// peer address.
func clientIP(h Hints) string {
	if h.ForwardedFor != "" {
		first, _, _ := strings.Cut(h.ForwardedFor, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if h.RemoteAddr != "" {
		if host, _, err := net.SplitHostPort(h.RemoteAddr); err == nil {
			return host
		}
		return h.RemoteAddr
	}
	return Unknown
}

// lookupable rejects addresses the lookup service cannot place.
func lookupable(ip string) bool {
	if ip == "" || ip == Unknown {
		return false
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	return !parsed.IsLoopback() && !parsed.IsPrivate() && !parsed.IsUnspecified()
}
