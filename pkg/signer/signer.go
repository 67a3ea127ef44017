package signer

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"

	"github.com/rounduppay/core/pkg/chain"
)

// Sign computes hash.value = sha256(canonical-json(envelope.payload)),
// stores it on envelope.Hash, signs the raw digest with key, and appends
// {header:{alg:"ed25519",kid}, signature} to envelope.Signatures.
func Sign(envelope *chain.Envelope, key ed25519.PrivateKey, kid string) error {
	digest, hashHex, err := hashPayload(envelope.Payload)
	if err != nil {
		return err
	}
	envelope.Hash = chain.Hash{Type: "sha256", Value: hashHex}

	sig := ed25519.Sign(key, digest)
	if len(sig) == 0 {
		return ErrInvalidSignature
	}

	signature := chain.Signature{
		Header:    chain.SignatureHeader{Alg: "ed25519", Kid: kid},
		Signature: hex.EncodeToString(sig),
	}
	envelope.Signatures = append(envelope.Signatures, signature)
	return nil
}

// Verify recomputes the canonical hash over envelope.Payload and compares it
// against envelope.Hash.Value; a mismatch is false. It then verifies the
// last signature in envelope.Signatures against that hash using the
// ed25519 public key encoded by publicKeyHex. Never panics; any structural
// or cryptographic failure yields false.
func Verify(envelope *chain.Envelope, publicKeyHex string) bool {
	if envelope == nil || len(envelope.Signatures) == 0 {
		return false
	}

	digest, hashHex, err := hashPayload(envelope.Payload)
	if err != nil {
		return false
	}
	if hashHex != envelope.Hash.Value {
		return false
	}

	pubKeyBytes, err := hex.DecodeString(publicKeyHex)
	if err != nil || len(pubKeyBytes) != ed25519.PublicKeySize {
		return false
	}

	last := envelope.Signatures[len(envelope.Signatures)-1]
	sigBytes, err := hex.DecodeString(last.Signature)
	if err != nil {
		return false
	}

	return ed25519.Verify(ed25519.PublicKey(pubKeyBytes), digest, sigBytes)
}

// VerifyEntry is the equivalent of Verify for a single chain entry's own
// hash and last signature, used by the consumer's commit protocol when
// checking the address-key co-signature on the latest entry rather than
// the envelope's outer (server-key) signature.
func VerifyEntry(entry *chain.Entry, publicKeyHex string) bool {
	if entry == nil || len(entry.Signatures) == 0 {
		return false
	}

	digest, hashHex, err := hashPayload(entry.Payload)
	if err != nil {
		return false
	}
	if hashHex != entry.Hash.Value {
		return false
	}

	pubKeyBytes, err := hex.DecodeString(publicKeyHex)
	if err != nil || len(pubKeyBytes) != ed25519.PublicKeySize {
		return false
	}

	last := entry.Signatures[len(entry.Signatures)-1]
	sigBytes, err := hex.DecodeString(last.Signature)
	if err != nil {
		return false
	}

	return ed25519.Verify(ed25519.PublicKey(pubKeyBytes), digest, sigBytes)
}

func hashPayload(payload interface{}) (digest []byte, hashHex string, err error) {
	canon, err := chain.Canonical(payload)
	if err != nil {
		return nil, "", fmt.Errorf("signer: canonicalizing payload: %w", err)
	}
	hashHex = chain.Sha256Hex(canon)
	digestBytes, err := hex.DecodeString(hashHex)
	if err != nil {
		return nil, "", fmt.Errorf("signer: decoding digest: %w", err)
	}
	return digestBytes, hashHex, nil
}
