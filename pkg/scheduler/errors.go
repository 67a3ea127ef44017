package scheduler

import "errors"

// ErrNoActivePledge is returned when a selected user has no active
// pledge — they were returned by the eligibility query but the pledge
// they once had has since been deactivated.
var ErrNoActivePledge = errors.New("scheduler: no active pledge")

// ErrNoAddressForMonth is returned when the active pledge has no
// provisioned address for the current calendar month.
var ErrNoAddressForMonth = errors.New("scheduler: no address for current month")

// ErrNoAggregatorToken is returned when the user has no aggregator
// access token for their pledge's bank type.
var ErrNoAggregatorToken = errors.New("scheduler: no aggregator token for bank type")

// ErrUnknownBankType is returned when the pledge's bank id does not
// resolve to a known bank-family type via the bank registry.
var ErrUnknownBankType = errors.New("scheduler: unknown bank type")
