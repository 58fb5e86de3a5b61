package wallet

import (
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tempoxyz/tempo-go/internal/sig"
)

// RelyingParty identifies the WebAuthn relying party an assertion is bound to.
type RelyingParty struct {
	ID     string // rpId, e.g. "tempo.xyz"
	Origin string // e.g. "https://tempo.xyz"
}

// DefaultRelyingParty is used when no relying party is configured.
var DefaultRelyingParty = RelyingParty{ID: "tempo.xyz", Origin: "https://tempo.xyz"}

// Assertion is the output of a WebAuthn get() ceremony: the pieces a verifier
// needs to re-derive and check the signed digest.
type Assertion struct {
	AuthenticatorData []byte
	ClientDataJSON    []byte
	Signature         []byte // 64-byte r||s
}

// Authenticator produces WebAuthn assertions for a challenge. Hardware
// authenticators implement this by driving the platform WebAuthn API; tests
// and server-side flows use SoftwareAuthenticator.
type Authenticator interface {
	PublicKey() []byte // 65-byte uncompressed P-256 point
	Assert(challenge []byte) (*Assertion, error)
}

// WebAuthnAccount wraps an authenticator in the Account interface, producing
// webauthn signature envelopes with the sig hash as challenge.
type WebAuthnAccount struct {
	auth Authenticator
	addr common.Address
}

// NewWebAuthnAccount creates an account over an authenticator.
func NewWebAuthnAccount(auth Authenticator) (*WebAuthnAccount, error) {
	addr, err := sig.AddressFromPublicKey(auth.PublicKey())
	if err != nil {
		return nil, err
	}
	return &WebAuthnAccount{auth: auth, addr: addr}, nil
}

// Address returns the address derived from the credential public key.
func (a *WebAuthnAccount) Address() common.Address { return a.addr }

// Scheme returns the webauthn scheme tag.
func (a *WebAuthnAccount) Scheme() uint8 { return sig.SchemeWebAuthn }

// SignHash runs an assertion ceremony with the hash as challenge.
func (a *WebAuthnAccount) SignHash(hash common.Hash) (*sig.Envelope, error) {
	assertion, err := a.auth.Assert(hash.Bytes())
	if err != nil {
		return nil, fmt.Errorf("webauthn assertion: %w", err)
	}
	return &sig.Envelope{
		Scheme:            sig.SchemeWebAuthn,
		Sig:               assertion.Signature,
		PublicKey:         a.auth.PublicKey(),
		AuthenticatorData: assertion.AuthenticatorData,
		ClientDataJSON:    assertion.ClientDataJSON,
	}, nil
}

// SoftwareAuthenticator emulates a WebAuthn authenticator over an in-memory
// P-256 key. It assembles the clientDataJSON and authenticator data itself
// and delegates the ECDSA signature to crypto/ecdsa.
type SoftwareAuthenticator struct {
	key     *ecdsa.PrivateKey
	pub     []byte
	rp      RelyingParty
	counter uint32
}

// NewSoftwareAuthenticator creates a software authenticator bound to rp.
func NewSoftwareAuthenticator(key *ecdsa.PrivateKey, rp RelyingParty) *SoftwareAuthenticator {
	return &SoftwareAuthenticator{
		key: key,
		pub: EncodeP256PublicKey(&key.PublicKey),
		rp:  rp,
	}
}

// PublicKey returns the credential public key.
func (s *SoftwareAuthenticator) PublicKey() []byte { return s.pub }

// Assert produces an assertion over the challenge: clientDataJSON carries the
// base64url challenge, authenticator data carries rpIdHash, the UP|UV flags
// and a monotonic counter. The signed digest is
// sha256(authenticatorData || sha256(clientDataJSON)).
func (s *SoftwareAuthenticator) Assert(challenge []byte) (*Assertion, error) {
	clientData, err := json.Marshal(clientData{
		Type:        "webauthn.get",
		Challenge:   sig.ChallengeString(common.BytesToHash(challenge)),
		Origin:      s.rp.Origin,
		CrossOrigin: false,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding client data: %w", err)
	}

	s.counter++
	authData := s.authenticatorData()

	digest := sig.WebAuthnDigest(authData, clientData)
	r, sv, err := ecdsa.Sign(rand.Reader, s.key, digest)
	if err != nil {
		return nil, fmt.Errorf("webauthn sign: %w", err)
	}

	return &Assertion{
		AuthenticatorData: authData,
		ClientDataJSON:    clientData,
		Signature:         encodeRS(r, sig.NormalizeS(sv)),
	}, nil
}

// authenticatorData is rpIdHash (32) || flags (1) || signCount (4).
func (s *SoftwareAuthenticator) authenticatorData() []byte {
	rpHash := sha256.Sum256([]byte(s.rp.ID))
	out := make([]byte, 37)
	copy(out, rpHash[:])
	out[32] = 0x05 // UP | UV
	out[33] = byte(s.counter >> 24)
	out[34] = byte(s.counter >> 16)
	out[35] = byte(s.counter >> 8)
	out[36] = byte(s.counter)
	return out
}

type clientData struct {
	Type        string `json:"type"`
	Challenge   string `json:"challenge"`
	Origin      string `json:"origin"`
	CrossOrigin bool   `json:"crossOrigin"`
}
