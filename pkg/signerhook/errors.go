// Package signerhook triggers the external signer after an envelope has
// been enqueued, by POSTing to its /aws/sqs hook.
package signerhook

import "errors"

// ErrSignerHTTPError wraps a non-2xx response or transport failure; fatal
// to this user's run.
var ErrSignerHTTPError = errors.New("signerhook: signer-http-error")
