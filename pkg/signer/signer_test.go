package signer

import (
	"crypto/ed25519"
	"encoding/hex"
	"testing"

	"github.com/rounduppay/core/pkg/chain"
)

func testEnvelope(address string) *chain.Envelope {
	return &chain.Envelope{
		Payload: chain.EnvelopePayload{
			Address: address,
			Transactions: []chain.Entry{
				{
					Payload:    chain.Payload{Count: 1, Address: address, Currency: "USD"},
					Signatures: []chain.Signature{},
				},
			},
		},
		Signatures: []chain.Signature{},
	}
}

func TestSignVerify_RoundTrip(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	env := testEnvelope("addr-1")

	if err := Sign(env, priv, "server"); err != nil {
		t.Fatalf("Sign: %v", err)
	}

	pubHex := hex.EncodeToString(pub)
	if !Verify(env, pubHex) {
		t.Error("Verify() = false, want true for the signing key")
	}
}

func TestVerify_WrongKey(t *testing.T) {
	_, priv, _ := ed25519.GenerateKey(nil)
	otherPub, _, _ := ed25519.GenerateKey(nil)
	env := testEnvelope("addr-1")

	if err := Sign(env, priv, "server"); err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if Verify(env, hex.EncodeToString(otherPub)) {
		t.Error("Verify() = true for a non-matching key, want false")
	}
}

func TestVerify_TamperedPayload(t *testing.T) {
	pub, priv, _ := ed25519.GenerateKey(nil)
	env := testEnvelope("addr-1")
	if err := Sign(env, priv, "server"); err != nil {
		t.Fatalf("Sign: %v", err)
	}

	env.Payload.Address = "tampered"

	if Verify(env, hex.EncodeToString(pub)) {
		t.Error("Verify() = true after payload tampering, want false")
	}
}

func TestVerify_NoSignatures(t *testing.T) {
	pub, _, _ := ed25519.GenerateKey(nil)
	env := testEnvelope("addr-1")
	if Verify(env, hex.EncodeToString(pub)) {
		t.Error("Verify() = true with no signatures, want false")
	}
}

func TestVerifyEntry_RoundTrip(t *testing.T) {
	pub, priv, _ := ed25519.GenerateKey(nil)
	env := testEnvelope("addr-1")

	// Co-sign the latest entry's own hash in place, as the external signer
	// does with the address key.
	last := &env.Payload.Transactions[len(env.Payload.Transactions)-1]
	hashHex, err := chain.HashPayload(last.Payload)
	if err != nil {
		t.Fatalf("HashPayload: %v", err)
	}
	last.Hash = chain.Hash{Type: "sha256", Value: hashHex}
	digest, _ := hex.DecodeString(hashHex)
	last.Signatures = append(last.Signatures, chain.Signature{
		Header:    chain.SignatureHeader{Alg: "ed25519", Kid: "address"},
		Signature: hex.EncodeToString(ed25519.Sign(priv, digest)),
	})

	if !VerifyEntry(last, hex.EncodeToString(pub)) {
		t.Error("VerifyEntry() = false for the co-signed entry, want true")
	}
}
