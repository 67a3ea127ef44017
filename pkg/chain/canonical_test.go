package chain

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestCanonical_Idempotent(t *testing.T) {
	v := map[string]interface{}{"b": 1, "a": 2, "nested": map[string]interface{}{"y": 1, "x": 2}}

	once, err := Canonical(v)
	if err != nil {
		t.Fatalf("Canonical: %v", err)
	}

	var decoded interface{}
	if err := json.Unmarshal(once, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	twice, err := Canonical(decoded)
	if err != nil {
		t.Fatalf("Canonical (second pass): %v", err)
	}
	if string(once) != string(twice) {
		t.Errorf("canon(canon(x)) = %s, want %s", twice, once)
	}
}

func TestCanonical_KeyOrderIndependent(t *testing.T) {
	ab := map[string]interface{}{"a": 1, "b": 2}
	ba := map[string]interface{}{"b": 2, "a": 1}

	out1, err := Canonical(ab)
	if err != nil {
		t.Fatalf("Canonical: %v", err)
	}
	out2, err := Canonical(ba)
	if err != nil {
		t.Fatalf("Canonical: %v", err)
	}
	if string(out1) != string(out2) {
		t.Errorf("canon({a,b}) = %s, canon({b,a}) = %s, want equal", out1, out2)
	}
}

func TestCanonical_NumberPrecision(t *testing.T) {
	p := Payload{Count: 1, Address: "addr", Amount: 456, Roundup: 44, Balance: -121, Currency: "USD", Limit: -1000}
	out, err := Canonical(p)
	if err != nil {
		t.Fatalf("Canonical: %v", err)
	}
	if !strings.Contains(string(out), `"amount":4.56`) {
		t.Errorf("canonical JSON %s does not contain exact decimal amount 4.56", out)
	}
	if !strings.Contains(string(out), `"balance":-1.21`) {
		t.Errorf("canonical JSON %s does not contain exact decimal balance -1.21", out)
	}
}

func TestCanonical_NoWhitespace(t *testing.T) {
	out, err := Canonical(map[string]interface{}{"a": 1})
	if err != nil {
		t.Fatalf("Canonical: %v", err)
	}
	if strings.ContainsAny(string(out), " \n\t") {
		t.Errorf("canonical JSON %s contains extraneous whitespace", out)
	}
}
