package web

import (
	"context"
	"net"
	"net/http"

	"github.com/JonMunkholm/assetrepo/internal/asset"
)

// WithRequestMetadata adds client IP and User-Agent to ctx for audit logging.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ip := r.RemoteAddr // already resolved by TrustedRealIP
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	ctx = asset.ContextWithIPAddress(ctx, ip)
	ctx = asset.ContextWithUserAgent(ctx, r.UserAgent())
	return ctx
}
