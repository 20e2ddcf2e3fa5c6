// Package sign holds the EVM sender key used to submit ccipSend transactions.
package sign

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/hex"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rotisserie/eris"
)

// Signer signs with a secp256k1 private key.
type Signer struct {
	privateKey *ecdsa.PrivateKey
}

// NewSigner creates a new Signer from a hex-encoded secp256k1 private key, with or without the 0x
// prefix. The key is never included in errors.
func NewSigner(privateKeyHex string) (Signer, error) {
	var signer Signer

	key, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x"))
	if err != nil {
		return signer, eris.New("failed to decode hex private key")
	}

	if len(key) != 32 {
		return signer, eris.New("private key must be 32 bytes")
	}

	signer.privateKey, err = crypto.ToECDSA(key)
	if err != nil {
		return signer, eris.New("private key is not a valid secp256k1 scalar")
	}

	return signer, nil
}

// Address is the EVM account controlled by the key.
func (s *Signer) Address() common.Address {
	return crypto.PubkeyToAddress(s.privateKey.PublicKey)
}

// SignDigest signs a 32-byte digest and returns the 65-byte [R || S || V] signature.
func (s *Signer) SignDigest(digest []byte) ([]byte, error) {
	if len(digest) != common.HashLength {
		return nil, eris.Errorf("digest must be %d bytes, got %d", common.HashLength, len(digest))
	}
	sig, err := crypto.Sign(digest, s.privateKey)
	if err != nil {
		return nil, eris.Wrap(err, "failed to sign digest")
	}
	return sig, nil
}

// VerifyDigestSignature reports whether sig over digest was produced by signer.
func VerifyDigestSignature(signer common.Address, digest, sig []byte) bool {
	pub, err := crypto.SigToPub(digest, sig)
	if err != nil {
		return false
	}
	return bytes.Equal(crypto.PubkeyToAddress(*pub).Bytes(), signer.Bytes())
}
