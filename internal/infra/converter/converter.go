package converter

import (
	"context"
	"fmt"
	"time"

	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/core/domain"
)

// Client calls the external rule-based converter service.
type Client interface {
	// Convert translates one object definition. A non-nil error means
	// the service itself failed (wrapped domain.ErrConversion); a result
	// with a non-zero error count means the service ran but could not
	// fully translate.
	Convert(ctx context.Context, source string, kind domain.ObjectKind) (*domain.ConversionResult, error)

	// Close releases the underlying connection.
	Close() error
}

// Config holds converter service settings.
type Config struct {
	Endpoint string        `yaml:"endpoint"`
	Protocol string        `yaml:"protocol"` // http (default) or grpc
	Timeout  time.Duration `yaml:"timeout"`
}

// New builds a client for the configured protocol.
func New(ctx context.Context, cfg Config) (Client, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	switch cfg.Protocol {
	case "", "http":
		return NewHTTPClient(cfg), nil
	case "grpc":
		return NewGRPCClient(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown converter protocol %q", cfg.Protocol)
	}
}
