package queue

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// Inbound is the from-signer queue client (C7): a long-polling receiver
// with explicit, per-message delete.
type Inbound struct {
	client              sqsAPI
	logger              *log.Logger
	waitTimeSeconds     int32
	maxNumberOfMessages int32
}

// InboundOption is a functional option for configuring an Inbound client.
type InboundOption func(*Inbound)

// WithInboundLogger sets a custom logger.
func WithInboundLogger(logger *log.Logger) InboundOption {
	return func(i *Inbound) { i.logger = logger }
}

// WithWaitTimeSeconds overrides the long-poll wait (default 20s, the SQS
// maximum).
func WithWaitTimeSeconds(seconds int32) InboundOption {
	return func(i *Inbound) { i.waitTimeSeconds = seconds }
}

// NewInbound builds a from-signer queue client from an AWS config.
func NewInbound(awsCfg aws.Config, opts ...InboundOption) *Inbound {
	i := &Inbound{
		client:              sqs.NewFromConfig(awsCfg),
		logger:              log.New(log.Writer(), "[InboundQueue] ", log.LstdFlags),
		waitTimeSeconds:     defaultWaitTimeSeconds,
		maxNumberOfMessages: defaultMaxNumberOfMessages,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Receive long-polls queueURL and returns 0..N messages with their receipt
// handles. A provider timeout with no messages is not an error: it returns
// an empty, nil-error slice, matching the "0 or more messages" contract the
// consumer's empty-poll counter relies on.
func (i *Inbound) Receive(ctx context.Context, queueURL string) ([]Message, error) {
	out, err := i.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            &queueURL,
		MaxNumberOfMessages: i.maxNumberOfMessages,
		WaitTimeSeconds:     i.waitTimeSeconds,
	})
	if err != nil {
		i.logger.Printf("receive from %s failed: %v", queueURL, err)
		return nil, fmt.Errorf("%w: %v", ErrQueueReceiveError, err)
	}

	messages := make([]Message, 0, len(out.Messages))
	for _, m := range out.Messages {
		messages = append(messages, messageFromSQS(m))
	}
	return messages, nil
}

// Delete permanently removes the message identified by receiptHandle. Only
// called after a successful commit.
func (i *Inbound) Delete(ctx context.Context, queueURL, receiptHandle string) error {
	_, err := i.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      &queueURL,
		ReceiptHandle: &receiptHandle,
	})
	if err != nil {
		return fmt.Errorf("queue: deleting message: %w", err)
	}
	return nil
}

func messageFromSQS(m types.Message) Message {
	var body, receipt string
	if m.Body != nil {
		body = *m.Body
	}
	if m.ReceiptHandle != nil {
		receipt = *m.ReceiptHandle
	}
	return Message{Body: body, ReceiptHandle: receipt}
}
