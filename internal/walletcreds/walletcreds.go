// Package walletcreds seals a wallet's long-term spend/view secret keys
// inside a memguard enclave so the plaintext only exists for the instant a
// Session needs it, mirroring the teacher's session-key enclave pattern but
// holding a Monero key pair instead of an Ethereum private key.
package walletcreds

import (
	"fmt"

	"github.com/awnumar/memguard"

	"github.com/monero-agent/xmrsigner/internal/moneroutil"
	"github.com/monero-agent/xmrsigner/internal/xmrcrypto"
)

// Vault holds one wallet's spend/view secret keys encrypted at rest.
// Public keys are kept in the clear outside the enclave since a Monero
// address is, by design, not secret.
type Vault struct {
	enclave     *memguard.Enclave
	spendPublic *xmrcrypto.Point
	viewPublic  *xmrcrypto.Point
}

// NewVault seals a 64-byte wallet seed (spend secret || view secret, the
// shape internal/kms's UnwrapWalletSeed returns) into an enclave and
// derives both public keys before the plaintext goes out of scope. The
// caller's seed slice is consumed and wiped by memguard.
func NewVault(seed []byte) (*Vault, error) {
	if len(seed) != 2*xmrcrypto.ScalarSize {
		return nil, fmt.Errorf("walletcreds: seed must be %d bytes, got %d", 2*xmrcrypto.ScalarSize, len(seed))
	}

	spendSecret, err := xmrcrypto.ScalarFromCanonicalBytes(seed[:xmrcrypto.ScalarSize])
	if err != nil {
		return nil, fmt.Errorf("walletcreds: spend secret: %w", err)
	}
	viewSecret, err := xmrcrypto.ScalarFromCanonicalBytes(seed[xmrcrypto.ScalarSize:])
	if err != nil {
		return nil, fmt.Errorf("walletcreds: view secret: %w", err)
	}

	v := &Vault{
		spendPublic: xmrcrypto.NewIdentityPoint().ScalarBaseMult(spendSecret),
		viewPublic:  xmrcrypto.NewIdentityPoint().ScalarBaseMult(viewSecret),
	}

	buf := memguard.NewBufferFromBytes(seed)
	v.enclave = memguard.NewEnclave(buf.Bytes())
	buf.Destroy()

	return v, nil
}

// SpendPublic returns the wallet's spend public key.
func (v *Vault) SpendPublic() *xmrcrypto.Point { return v.spendPublic }

// ViewPublic returns the wallet's view public key.
func (v *Vault) ViewPublic() *xmrcrypto.Point { return v.viewPublic }

// Unsealed is the plaintext credentials for the lifetime of one Session.
// The scalars are ordinary Go values once derived; the caller is
// responsible for discarding its Session (and thus these credentials) when
// the transaction completes or aborts, the same contract the teacher's
// SessionManager.Sign placed on its caller.
type Unsealed struct {
	Creds moneroutil.Credentials
}

// Open decrypts the enclave into a fresh locked buffer and returns the
// plaintext Credentials ready for txsession.NewSession.
func (v *Vault) Open() (*Unsealed, error) {
	buf, err := v.enclave.Open()
	if err != nil {
		return nil, fmt.Errorf("walletcreds: open enclave: %w", err)
	}

	seed := buf.Bytes()
	spendSecret, err := xmrcrypto.ScalarFromCanonicalBytes(seed[:xmrcrypto.ScalarSize])
	if err != nil {
		buf.Destroy()
		return nil, fmt.Errorf("walletcreds: spend secret: %w", err)
	}
	viewSecret, err := xmrcrypto.ScalarFromCanonicalBytes(seed[xmrcrypto.ScalarSize:])
	if err != nil {
		buf.Destroy()
		return nil, fmt.Errorf("walletcreds: view secret: %w", err)
	}
	buf.Destroy()

	return &Unsealed{
		Creds: moneroutil.Credentials{
			SpendSecret: spendSecret,
			SpendPublic: v.spendPublic,
			ViewSecret:  viewSecret,
			ViewPublic:  v.viewPublic,
		},
	}, nil
}
