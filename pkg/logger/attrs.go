package logger

import (
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
)

// ensureInstanceID defaults to "<hostname>-<8 hex>".
func ensureInstanceID(v string) string {
	if v != "" {
		return v
	}
	uid := uuid.NewString()[:8]
	hn, err := os.Hostname()
	if err != nil || hn == "" {
		return uid
	}
	return hn + "-" + uid
}

func commonAttr(cfg Config) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("service", cfg.Service),
		slog.String("env", string(cfg.Env)),
		slog.String("instance_id", cfg.InstanceID),
		slog.Time("started_at", time.Now()),
	}
	if cfg.Version != "" {
		attrs = append(attrs, slog.String("version", cfg.Version))
	}
	return attrs
}
