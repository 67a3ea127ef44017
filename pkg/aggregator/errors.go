// Package aggregator is the HTTP client for the external transaction
// aggregator (Plaid-shaped `/connect/get` endpoint) the intake worker
// fetches one user's recent transactions from.
package aggregator

import "errors"

// ErrAggregatorHTTPError wraps a non-200 response or transport failure;
// the spec's disposition is "transient, abort this user for this run".
var ErrAggregatorHTTPError = errors.New("aggregator: aggregator-http-error")
