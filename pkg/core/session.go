package core

import (
	"fmt"
	"strings"
)

// addressLength is how many leading public key characters form a wallet address.
const addressLength = 12

// Connect makes name the connected owner identity with a freshly generated
// key pair. Reconnecting replaces the previous identity.
func (s *Service) Connect(name string) (Session, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Session{}, ErrMissingField
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kp, err := s.keys.GenerateKeypair()
	if err != nil {
		return Session{}, fmt.Errorf("generate wallet keys: %w", err)
	}

	s.session = Session{
		Connected:  true,
		Name:       name,
		Address:    address(kp.PublicKey),
		PublicKey:  kp.PublicKey,
		PrivateKey: kp.PrivateKey,
	}
	s.appendEvent(ActionWalletConnected, name,
		fmt.Sprintf("Wallet %s connected", s.session.Address), "")
	s.logger.Debug("wallet connected", "owner", name, "address", s.session.Address)

	return s.session, nil
}

// Session returns the connected owner identity, including its private key.
func (s *Service) Session() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

func address(publicKey string) string {
	if len(publicKey) <= addressLength {
		return publicKey
	}
	return publicKey[:addressLength]
}
