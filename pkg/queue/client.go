package queue

import (
	"context"
	"io"
	"log"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// sqsAPI is the subset of *sqs.Client this package depends on, narrowed so
// tests can supply a fake without standing up a real queue.
type sqsAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Message is one inbound queue message: its body and the receipt handle
// needed to delete it after a successful commit.
type Message struct {
	Body          string
	ReceiptHandle string
}

const (
	defaultWaitTimeSeconds     = 20
	defaultMaxNumberOfMessages = 10
)

// discardLogger is used by tests that construct an Outbound/Inbound
// directly (bypassing NewOutbound/NewInbound) and don't want fake-client
// test output cluttering `go test -v`.
func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}
