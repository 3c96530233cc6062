package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/custody/pkg/core"
)

// options holds the internal configuration for the custody service.
type options struct {
	logger           *slog.Logger
	keys             core.KeyProvider
	codec            core.ObscureCodec
	codecName        string
	txRefs           core.TransactionRefSource
	clock            func() time.Time
	maxCollaborators int
	eventBuffer      int
	configFile       string
}

// Option defines a functional option for configuring the service.
type Option func(*options)

func defaultOptions() *options {
	return &options{}
}

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithKeyProvider replaces the ed25519 key generator (e.g. with a fake in tests).
func WithKeyProvider(p core.KeyProvider) Option {
	return func(o *options) {
		o.keys = p
	}
}

// WithCodec injects the codec used to obscure records for unauthorised readers.
// It takes precedence over WithCodecName and the config file.
func WithCodec(c core.ObscureCodec) Option {
	return func(o *options) {
		o.codec = c
	}
}

// WithCodecName selects a built-in codec by name ("hex" or "secretbox").
func WithCodecName(name string) Option {
	return func(o *options) {
		o.codecName = name
	}
}

// WithTransactionRefs replaces the transaction reference source.
func WithTransactionRefs(src core.TransactionRefSource) Option {
	return func(o *options) {
		o.txRefs = src
	}
}

// WithClock sets the time source used for timestamps.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithMaxCollaborators lowers the collaborator cap. Zero or anything above
// the default of 7 means 7.
func WithMaxCollaborators(n int) Option {
	return func(o *options) {
		o.maxCollaborators = n
	}
}

// WithEventBuffer sets the buffer of each timeline subscription.
// Zero means default (100).
func WithEventBuffer(size int) Option {
	return func(o *options) {
		o.eventBuffer = size
	}
}

// WithConfigFile loads settings from the given custody.yaml. Explicit
// options always win over values from the file.
func WithConfigFile(path string) Option {
	return func(o *options) {
		o.configFile = path
	}
}
