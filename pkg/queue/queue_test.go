package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/rounduppay/core/pkg/chain"
)

type fakeSQS struct {
	sendCalls    []*sqs.SendMessageInput
	sendErr      error
	receiveOut   *sqs.ReceiveMessageOutput
	receiveErr   error
	deleteCalls  []*sqs.DeleteMessageInput
	deleteErr    error
}

func (f *fakeSQS) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.sendCalls = append(f.sendCalls, params)
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return &sqs.SendMessageOutput{}, nil
}

func (f *fakeSQS) ReceiveMessage(_ context.Context, _ *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	if f.receiveErr != nil {
		return nil, f.receiveErr
	}
	return f.receiveOut, nil
}

func (f *fakeSQS) DeleteMessage(_ context.Context, params *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	f.deleteCalls = append(f.deleteCalls, params)
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	return &sqs.DeleteMessageOutput{}, nil
}

func TestOutbound_Send(t *testing.T) {
	fake := &fakeSQS{}
	out := &Outbound{client: fake, logger: discardLogger()}

	env := &chain.Envelope{
		Hash:    chain.Hash{Type: "sha256", Value: "abc123"},
		Payload: chain.EnvelopePayload{Address: "addr-1"},
	}

	if err := out.Send(context.Background(), env, "https://queue/to-signer"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(fake.sendCalls) != 1 {
		t.Fatalf("SendMessage called %d times, want 1", len(fake.sendCalls))
	}
	if *fake.sendCalls[0].QueueUrl != "https://queue/to-signer" {
		t.Errorf("QueueUrl = %s, want https://queue/to-signer", *fake.sendCalls[0].QueueUrl)
	}
}

func TestOutbound_Send_Error(t *testing.T) {
	fake := &fakeSQS{sendErr: errors.New("boom")}
	out := &Outbound{client: fake, logger: discardLogger()}

	env := &chain.Envelope{Payload: chain.EnvelopePayload{Address: "addr-1"}}
	err := out.Send(context.Background(), env, "https://queue/to-signer")
	if !errors.Is(err, ErrQueueSendError) {
		t.Errorf("Send() err = %v, want ErrQueueSendError", err)
	}
}

func TestInbound_Receive(t *testing.T) {
	body := `{"hash":{}}`
	receipt := "receipt-1"
	fake := &fakeSQS{
		receiveOut: &sqs.ReceiveMessageOutput{
			Messages: []types.Message{{Body: &body, ReceiptHandle: &receipt}},
		},
	}
	in := &Inbound{client: fake, logger: discardLogger(), waitTimeSeconds: 20, maxNumberOfMessages: 10}

	msgs, err := in.Receive(context.Background(), "https://queue/from-signer")
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Body != body || msgs[0].ReceiptHandle != receipt {
		t.Errorf("Receive() = %+v, want one message with body/receipt set", msgs)
	}
}

func TestInbound_Receive_Empty(t *testing.T) {
	fake := &fakeSQS{receiveOut: &sqs.ReceiveMessageOutput{}}
	in := &Inbound{client: fake, logger: discardLogger()}

	msgs, err := in.Receive(context.Background(), "https://queue/from-signer")
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("Receive() = %d messages, want 0", len(msgs))
	}
}

func TestInbound_Delete(t *testing.T) {
	fake := &fakeSQS{}
	in := &Inbound{client: fake, logger: discardLogger()}

	if err := in.Delete(context.Background(), "https://queue/from-signer", "receipt-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(fake.deleteCalls) != 1 || *fake.deleteCalls[0].ReceiptHandle != "receipt-1" {
		t.Errorf("DeleteMessage calls = %+v, want one with receipt-1", fake.deleteCalls)
	}
}
