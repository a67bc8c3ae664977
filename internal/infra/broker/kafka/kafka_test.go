package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
)

func TestProducerPublishSendsPayload(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	mock.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		if string(val) != `{"id":"e1"}` {
			return errors.New("unexpected payload " + string(val))
		}
		return nil
	})
	p := newProducerWith(mock)
	if err := p.Publish(context.Background(), "villa.calendar", "v1", []byte(`{"id":"e1"}`), map[string]string{"type": "villa.upserted"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestProducerPublishWrapsFailures(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	mock.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)
	p := newProducerWith(mock)
	err := p.Publish(context.Background(), "villa.calendar", "v1", []byte("{}"), nil)
	if !errors.Is(err, sarama.ErrOutOfBrokers) {
		t.Fatalf("expected ErrOutOfBrokers, got %v", err)
	}
	_ = p.Close()
}

func TestProducerPublishHonorsCancelledContext(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	p := newProducerWith(mock)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.Publish(ctx, "t", "k", nil, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	_ = p.Close()
}

func TestPayloadHandlerPassesValue(t *testing.T) {
	var got []byte
	h := PayloadHandler(func(ctx context.Context, payload []byte) error {
		got = payload
		return nil
	})
	if err := h.Handle(context.Background(), &sarama.ConsumerMessage{Value: []byte("hello")}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("unexpected payload %q", got)
	}
}

type markingSession struct {
	sarama.ConsumerGroupSession
	ctx    context.Context
	marked []int64
}

func (s *markingSession) Context() context.Context { return s.ctx }

func (s *markingSession) MarkMessage(msg *sarama.ConsumerMessage, _ string) {
	s.marked = append(s.marked, msg.Offset)
}

type bufferedClaim struct {
	sarama.ConsumerGroupClaim
	messages chan *sarama.ConsumerMessage
}

func newBufferedClaim(offsets ...int64) *bufferedClaim {
	c := &bufferedClaim{messages: make(chan *sarama.ConsumerMessage, len(offsets))}
	for _, off := range offsets {
		c.messages <- &sarama.ConsumerMessage{Topic: "villa.calendar", Partition: 0, Offset: off}
	}
	close(c.messages)
	return c
}

func (c *bufferedClaim) Messages() <-chan *sarama.ConsumerMessage { return c.messages }

type failOffsets map[int64]bool

func (f failOffsets) Handle(_ context.Context, msg *sarama.ConsumerMessage) error {
	if f[msg.Offset] {
		return errors.New("store unavailable")
	}
	return nil
}

func TestConsumeClaimStopsAtFailedMessage(t *testing.T) {
	tests := []struct {
		name     string
		offsets  []int64
		failing  failOffsets
		wantMark []int64
		wantErr  bool
	}{
		{name: "all handled", offsets: []int64{4, 5, 6}, failing: failOffsets{}, wantMark: []int64{4, 5, 6}},
		{name: "failure leaves later offsets unmarked", offsets: []int64{4, 5, 6}, failing: failOffsets{5: true}, wantMark: []int64{4}, wantErr: true},
		{name: "first message fails", offsets: []int64{5, 6}, failing: failOffsets{5: true}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := &markingSession{ctx: context.Background()}
			h := &consumerGroupHandler{handler: tt.failing}
			err := h.ConsumeClaim(sess, newBufferedClaim(tt.offsets...))
			if tt.wantErr != (err != nil) {
				t.Fatalf("wantErr %v, got %v", tt.wantErr, err)
			}
			if len(sess.marked) != len(tt.wantMark) {
				t.Fatalf("marked %v, want %v", sess.marked, tt.wantMark)
			}
			for i := range tt.wantMark {
				if sess.marked[i] != tt.wantMark[i] {
					t.Fatalf("marked %v, want %v", sess.marked, tt.wantMark)
				}
			}
			if h.failed.Load() != tt.wantErr {
				t.Fatalf("failed flag %v, want %v", h.failed.Load(), tt.wantErr)
			}
		})
	}
}

// replayGroup replays the same claim each session and records what was marked.
type replayGroup struct {
	sarama.ConsumerGroup
	cancel   context.CancelFunc
	sessions int
	marked   []int64
}

func (g *replayGroup) Consume(ctx context.Context, _ []string, handler sarama.ConsumerGroupHandler) error {
	g.sessions++
	sess := &markingSession{ctx: ctx}
	_ = handler.ConsumeClaim(sess, newBufferedClaim(5, 6))
	g.marked = append(g.marked, sess.marked...)
	if g.sessions == 2 {
		g.cancel()
	}
	return nil
}

func TestRunRedeliversFailedMessage(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	group := &replayGroup{cancel: cancel}
	attempts := 0
	handler := PayloadHandler(func(ctx context.Context, _ []byte) error {
		attempts++
		if attempts == 1 {
			return errors.New("store unavailable")
		}
		return nil
	})
	c := &Consumer{group: group, handler: handler}

	if err := c.Run(ctx, []string{"villa.calendar"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if group.sessions != 2 {
		t.Fatalf("expected the failed session to be rejoined, got %d sessions", group.sessions)
	}
	if len(group.marked) != 2 || group.marked[0] != 5 || group.marked[1] != 6 {
		t.Fatalf("expected offsets 5 and 6 marked on retry, got %v", group.marked)
	}
}
