package bankregistry

import "testing"

const testYAML = `
profiles:
  - type: chase
    display_name: Chase
    aggregator_env: production
  - type: sandbox_bank
    display_name: Sandbox Test Bank
    aggregator_env: sandbox
banks:
  - id: bank-001
    type: chase
  - id: bank-999
    type: sandbox_bank
`

func TestParse(t *testing.T) {
	reg, err := parse([]byte(testYAML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	bankType, ok := reg.TypeForBank("bank-001")
	if !ok || bankType != "chase" {
		t.Errorf("TypeForBank(bank-001) = %s, %v, want chase, true", bankType, ok)
	}

	profile, ok := reg.Profile("chase")
	if !ok || profile.AggregatorEnv != "production" {
		t.Errorf("Profile(chase) = %+v, %v, want aggregator_env=production", profile, ok)
	}

	if _, ok := reg.TypeForBank("unknown-bank"); ok {
		t.Error("TypeForBank(unknown-bank) = true, want false")
	}
}
