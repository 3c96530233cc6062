package core

// KeyProvider produces opaque key pairs. Adhering to this interface keeps
// the ledger independent of the key scheme (ed25519, Stellar, test fakes).
type KeyProvider interface {
	// GenerateKeypair returns a fresh key pair.
	GenerateKeypair() (KeyPair, error)
}

// ObscureCodec masks a plaintext string for entities that may not read it.
// No security property is implied; a real cipher can be substituted.
type ObscureCodec interface {
	// Obscure returns a token that is never equal to a non-empty plaintext.
	Obscure(plaintext string) string
}

// TransactionRefSource mints opaque transaction references that simulate
// ledger transaction ids. References must be unique within a session.
type TransactionRefSource interface {
	NewTransactionRef() (string, error)
}

// KeyProviderFunc adapts a function to KeyProvider.
type KeyProviderFunc func() (KeyPair, error)

// GenerateKeypair implements KeyProvider.
func (f KeyProviderFunc) GenerateKeypair() (KeyPair, error) { return f() }

// ObscureFunc adapts a function to ObscureCodec.
type ObscureFunc func(string) string

// Obscure implements ObscureCodec.
func (f ObscureFunc) Obscure(plaintext string) string { return f(plaintext) }

// TransactionRefFunc adapts a function to TransactionRefSource.
type TransactionRefFunc func() (string, error)

// NewTransactionRef implements TransactionRefSource.
func (f TransactionRefFunc) NewTransactionRef() (string, error) { return f() }
