package custody

import (
	"log/slog"
	"time"

	"github.com/aretw0/custody/internal/platform"
	"github.com/aretw0/custody/pkg/core"
)

// --- Types ---

// Service is the custody state machine.
type Service = core.Service

// Metadata is the ordered key/value map carried by a record.
type Metadata = core.Metadata

// NewMetadata builds Metadata from alternating keys and values.
func NewMetadata(kv ...string) Metadata {
	return core.NewMetadata(kv...)
}

// --- Configuration ---

// Option defines a functional option for configuring the service.
type Option = platform.Option

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithKeyProvider replaces the wallet key generator.
func WithKeyProvider(p core.KeyProvider) Option {
	return platform.WithKeyProvider(p)
}

// WithCodec injects the codec that obscures records for unauthorised readers.
func WithCodec(c core.ObscureCodec) Option {
	return platform.WithCodec(c)
}

// WithCodecName selects a built-in codec ("hex" or "secretbox").
func WithCodecName(name string) Option {
	return platform.WithCodecName(name)
}

// WithTransactionRefs replaces the transaction reference source.
func WithTransactionRefs(src core.TransactionRefSource) Option {
	return platform.WithTransactionRefs(src)
}

// WithClock sets the time source.
func WithClock(clock func() time.Time) Option {
	return platform.WithClock(clock)
}

// WithMaxCollaborators lowers the collaborator cap; it never exceeds 7.
func WithMaxCollaborators(n int) Option {
	return platform.WithMaxCollaborators(n)
}

// WithEventBuffer sets the buffer of each timeline subscription.
func WithEventBuffer(size int) Option {
	return platform.WithEventBuffer(size)
}

// WithConfigFile loads settings from a custody.yaml.
func WithConfigFile(path string) Option {
	return platform.WithConfigFile(path)
}

// --- Factory ---

// New creates a new custody Service.
func New(opts ...Option) (*core.Service, error) {
	return platform.New(opts...)
}

// FindConfig looks upwards from startDir for a custody.yaml.
func FindConfig(startDir string) (string, error) {
	return platform.FindConfig(startDir)
}
