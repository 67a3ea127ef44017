// Package queue implements the outbound (C6) and inbound (C7) queue
// clients: delivering a signed envelope to the to-signer SQS queue, and
// long-polling the from-signer queue with per-message receipt handles.
package queue

import "errors"

var (
	// ErrQueueSendError wraps a transient SQS SendMessage failure.
	ErrQueueSendError = errors.New("queue: queue-send-error")
	// ErrQueueReceiveError wraps a transient SQS ReceiveMessage failure.
	ErrQueueReceiveError = errors.New("queue: queue-receive-error")
)
