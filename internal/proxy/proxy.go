package proxy

import (
	"encoding/json"
	"fmt"
	"net/http"
	stdhttputil "net/http/httputil"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/lystzs/family-asset-manager/pkg/logger"
)

// Path prefixes served by the proxy
const (
	APIPrefix = "/api/proxy/"
	WSPrefix  = "/ws/"
)

// RequestIDHeader is forwarded to the backend for log correlation
const RequestIDHeader = "X-Request-ID"

// Proxy forwards dashboard requests to the internal backend origin.
// The origin is never exposed: callers only see the /api/proxy and /ws paths.
// ⭐ SSOT: 백엔드 내부 URL 재작성은 여기서만
type Proxy struct {
	target *url.URL
	rp     *stdhttputil.ReverseProxy
	logger *logger.Logger
}

// New creates a proxy to internalURL (BACKEND_INTERNAL_URL)
func New(internalURL string, log *logger.Logger) (*Proxy, error) {
	target, err := url.Parse(internalURL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend internal URL: %w", err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("backend internal URL must include scheme and host")
	}

	p := &Proxy{target: target, logger: log}
	p.rp = &stdhttputil.ReverseProxy{
		Rewrite:        p.rewrite,
		ErrorHandler:   p.handleError,
		ModifyResponse: stripOrigin,
	}
	return p, nil
}

// ServeHTTP implements http.Handler
func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if _, ok := TargetPath(r.URL.Path); !ok {
		http.NotFound(w, r)
		return
	}
	if r.Header.Get(RequestIDHeader) == "" {
		r.Header.Set(RequestIDHeader, uuid.New().String())
	}
	p.rp.ServeHTTP(w, r)
}

// TargetPath maps a dashboard path to the backend path.
// /api/proxy/{path} → /{path}, /ws/{path} → /ws/{path}
func TargetPath(path string) (string, bool) {
	switch {
	case strings.HasPrefix(path, APIPrefix):
		return "/" + strings.TrimPrefix(path, APIPrefix), true
	case strings.HasPrefix(path, WSPrefix):
		return path, true
	}
	return "", false
}

func (p *Proxy) rewrite(pr *stdhttputil.ProxyRequest) {
	path, _ := TargetPath(pr.In.URL.Path)

	out := pr.Out.URL
	out.Scheme = p.target.Scheme
	out.Host = p.target.Host
	out.Path = joinPath(p.target.Path, path)
	out.RawPath = ""
	out.RawQuery = pr.In.URL.RawQuery

	pr.Out.Host = p.target.Host
	pr.SetXForwarded()
}

func joinPath(base, path string) string {
	if base == "" || base == "/" {
		return path
	}
	return strings.TrimSuffix(base, "/") + path
}

func (p *Proxy) handleError(w http.ResponseWriter, r *http.Request, err error) {
	p.logger.WithRequestID(r.Header.Get(RequestIDHeader)).WithFields(map[string]interface{}{
		"method": r.Method,
		"path":   r.URL.Path,
	}).WithError(err).Error("Backend proxy request failed")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadGateway)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "backend unavailable"})
}

// stripOrigin keeps redirects from leaking the internal origin
func stripOrigin(resp *http.Response) error {
	loc := resp.Header.Get("Location")
	if loc == "" {
		return nil
	}
	u, err := url.Parse(loc)
	if err != nil || !u.IsAbs() || resp.Request == nil || u.Host != resp.Request.URL.Host {
		return nil
	}
	rel := u.Path
	if !strings.HasPrefix(rel, WSPrefix) {
		rel = APIPrefix + strings.TrimPrefix(rel, "/")
	}
	if u.RawQuery != "" {
		rel += "?" + u.RawQuery
	}
	resp.Header.Set("Location", rel)
	return nil
}
