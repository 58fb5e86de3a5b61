package wallet

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/tempoxyz/tempo-go/internal/sig"
)

// SignMessage signs a message using EIP-191 (personal_sign) semantics: the
// message is prefixed with "\x19Ethereum Signed Message:\n<len>" before
// hashing, then signed under the account's scheme. The result is a
// scheme-tagged envelope rather than a bare 65-byte signature so P256 and
// WebAuthn accounts can sign messages too.
func SignMessage(acct Account, message []byte) (*sig.Envelope, error) {
	env, err := acct.SignHash(eip191Hash(message))
	if err != nil {
		return nil, fmt.Errorf("signing message: %w", err)
	}
	return env, nil
}

// VerifyMessage verifies an EIP-191 envelope and returns the signer address.
func VerifyMessage(message []byte, env *sig.Envelope) (common.Address, error) {
	addr, err := sig.Verify(eip191Hash(message), env)
	if err != nil {
		return common.Address{}, fmt.Errorf("verifying message: %w", err)
	}
	return addr, nil
}

// eip191Hash returns the Keccak-256 hash of the EIP-191 prefixed message.
func eip191Hash(message []byte) common.Hash {
	prefix := fmt.Sprintf("\x19Ethereum Signed Message:\n%d", len(message))
	return crypto.Keccak256Hash(append([]byte(prefix), message...))
}
