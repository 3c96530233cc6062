package platform

import (
	"fmt"

	"github.com/aretw0/custody/pkg/adapters/chain"
	"github.com/aretw0/custody/pkg/adapters/keys"
	"github.com/aretw0/custody/pkg/adapters/obscure"
	"github.com/aretw0/custody/pkg/core"
)

// New wires a custody service.
//
//	svc, err := custody.New(custody.WithCodecName("secretbox"))
//
// Ports not injected through options get the built-in adapters: ed25519
// keys, the codec named in options or config (hex by default) and sha3
// transaction references.
func New(opts ...Option) (*core.Service, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	var file Config
	if o.configFile != "" {
		cfg, err := LoadConfig(o.configFile)
		if err != nil {
			return nil, err
		}
		file = cfg
	}

	codec := o.codec
	if codec == nil {
		name := o.codecName
		if name == "" {
			name = file.Codec
		}
		c, err := obscure.ByName(name)
		if err != nil {
			return nil, fmt.Errorf("codec: %w", err)
		}
		codec = c
	}

	keyProvider := o.keys
	if keyProvider == nil {
		keyProvider = keys.New()
	}
	txRefs := o.txRefs
	if txRefs == nil {
		txRefs = chain.NewRefs()
	}

	svc, err := core.NewService(core.Config{
		Keys:             keyProvider,
		Codec:            codec,
		TxRefs:           txRefs,
		Clock:            o.clock,
		MaxCollaborators: firstPositive(o.maxCollaborators, file.MaxCollaborators),
		EventBuffer:      firstPositive(o.eventBuffer, file.EventBuffer),
		Logger:           o.logger,
	})
	if err != nil {
		return nil, err
	}

	if o.logger != nil {
		o.logger.Debug("custody service ready", "codec", fmt.Sprintf("%T", codec), "max_collaborators", svc.MaxCollaborators())
	}
	return svc, nil
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
