package chain

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Canonical renders v as canonical JSON: UTF-8, object keys sorted
// lexicographically, no extraneous whitespace, numbers in their exact
// decimal form, arrays in input order.
//
// This is the single canonical-JSON implementation in the module. Every
// hash computed over a chain payload or envelope payload — the builder,
// the signer, and the verifier — goes through this function. The spec
// explicitly warns against a second, non-deterministic serializer ever
// being used where a hash is computed; there is intentionally no other
// json.Marshal call on a payload type anywhere in this module.
func Canonical(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	// Round-trip through a generic, key-sorted representation. encoding/json
	// sorts map[string]interface{} keys on Marshal and, with UseNumber, a
	// decoded number keeps its original decimal text instead of being
	// reformatted through float64.
	var generic interface{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&generic); err != nil {
		return nil, err
	}

	out, err := json.Marshal(generic)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Sha256Hex returns the lowercase hex-encoded sha256 digest of data.
func Sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashPayload computes hash.value = sha256(canonical-json(payload)).
func HashPayload(payload interface{}) (string, error) {
	canon, err := Canonical(payload)
	if err != nil {
		return "", err
	}
	return Sha256Hex(canon), nil
}
