package queue

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/rounduppay/core/pkg/chain"
)

// Outbound is the to-signer queue client (C6).
type Outbound struct {
	client sqsAPI
	logger *log.Logger
}

// OutboundOption is a functional option for configuring an Outbound client.
type OutboundOption func(*Outbound)

// WithOutboundLogger sets a custom logger.
func WithOutboundLogger(logger *log.Logger) OutboundOption {
	return func(o *Outbound) { o.logger = logger }
}

// NewOutbound builds a to-signer queue client from an AWS config, the way
// any other AWS-backed client in this module is constructed.
func NewOutbound(awsCfg aws.Config, opts ...OutboundOption) *Outbound {
	o := &Outbound{
		client: sqs.NewFromConfig(awsCfg),
		logger: log.New(log.Writer(), "[OutboundQueue] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Send serializes envelope as canonical JSON and enqueues it on queueURL.
// Delivery is at-least-once; idempotency downstream relies on the
// envelope's hash.value.
func (o *Outbound) Send(ctx context.Context, envelope *chain.Envelope, queueURL string) error {
	body, err := chain.Canonical(envelope)
	if err != nil {
		return fmt.Errorf("queue: canonicalizing envelope: %w", err)
	}

	bodyStr := string(body)
	_, err = o.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    &queueURL,
		MessageBody: &bodyStr,
	})
	if err != nil {
		o.logger.Printf("send to %s failed: %v", queueURL, err)
		return fmt.Errorf("%w: %v", ErrQueueSendError, err)
	}

	o.logger.Printf("enqueued envelope hash=%s to %s", envelope.Hash.Value, queueURL)
	return nil
}
