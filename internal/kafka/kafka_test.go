package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"cine-storefront/internal/config"
	"cine-storefront/internal/logger"
	"cine-storefront/internal/models"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, topic, key string, value []byte) error {
	args := m.Called(topic, key, value)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	return m.Called().Error(0)
}

func TestBreakerPublisher_OpensAfterConsecutiveFailures(t *testing.T) {
	next := new(MockPublisher)
	next.On("Publish", "t", "k", mock.Anything).Return(errors.New("broker down")).Times(3)

	b := NewBreakerPublisher(next, logger.NewNopLogger())
	for i := 0; i < 3; i++ {
		assert.Error(t, b.Publish(context.Background(), "t", "k", []byte("v")))
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())

	err := b.Publish(context.Background(), "t", "k", []byte("v"))
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	next.AssertExpectations(t)
}

func TestBreakerPublisher_PassesThrough(t *testing.T) {
	next := new(MockPublisher)
	next.On("Publish", "t", "k", []byte("v")).Return(nil).Once()
	next.On("Close").Return(nil)

	b := NewBreakerPublisher(next, logger.NewNopLogger())
	require.NoError(t, b.Publish(context.Background(), "t", "k", []byte("v")))
	require.NoError(t, b.Close())
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestEvents_PublishesOrderEvent(t *testing.T) {
	seller := "seller-1"
	order := &models.Order{
		ID:          "order-1",
		OrderCode:   "CJ-ABC123",
		SellerID:    &seller,
		ProductType: "combo_individual",
		Tickets:     1,
		Status:      models.StatusPaid,
	}
	fixed := time.Date(2026, 3, 1, 19, 0, 0, 0, time.UTC)

	var captured []byte
	pub := new(MockPublisher)
	pub.On("Publish", "storefront.order.created", "order-1", mock.Anything).
		Run(func(args mock.Arguments) { captured = args.Get(2).([]byte) }).
		Return(nil)

	topics := config.TopicConfig{OrderCreated: "storefront.order.created"}
	events := NewEvents(pub, topics, logger.NewNopLogger(), nil)
	events.Now = func() time.Time { return fixed }

	events.OrderCreated(context.Background(), order)

	var got models.OrderEvent
	require.NoError(t, json.Unmarshal(captured, &got))
	assert.Equal(t, EventOrderCreated, got.Type)
	assert.Equal(t, "CJ-ABC123", got.OrderCode)
	assert.Equal(t, &seller, got.SellerID)
	assert.True(t, fixed.Equal(got.Timestamp))
}

func TestEvents_FailureIsSwallowed(t *testing.T) {
	pub := new(MockPublisher)
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("down"))

	events := NewEvents(pub, config.TopicConfig{TicketCheckedIn: "x"}, logger.NewNopLogger(), nil)
	assert.NotPanics(t, func() {
		events.TicketCheckedIn(context.Background(), &models.Order{ID: "1"})
	})
	pub.AssertCalled(t, "Publish", "x", "1", mock.Anything)
}

type fakeReader struct {
	mu        sync.Mutex
	messages  []kafka.Message
	committed []int64
}

func (f *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	f.mu.Lock()
	if len(f.messages) > 0 {
		msg := f.messages[0]
		f.messages = f.messages[1:]
		f.mu.Unlock()
		return msg, nil
	}
	f.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (f *fakeReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range msgs {
		f.committed = append(f.committed, m.Offset)
	}
	return nil
}

func (f *fakeReader) Close() error { return nil }

func TestConsumer_DispatchesAndCommits(t *testing.T) {
	valid, _ := json.Marshal(models.OrderEvent{Type: EventOrderCreated, OrderCode: "CJ-1"})
	reader := &fakeReader{messages: []kafka.Message{
		{Topic: "storefront.order.created", Offset: 1, Value: valid},
		{Topic: "storefront.order.created", Offset: 2, Value: []byte("not json")},
		{Topic: "storefront.order.created", Offset: 3, Value: valid},
	}}
	c := &Consumer{reader: reader, logger: logger.NewNopLogger()}

	ctx, cancel := context.WithCancel(context.Background())
	var mu sync.Mutex
	var seen []string
	handlerErr := errors.New("refresh failed")

	done := make(chan error, 1)
	go func() {
		done <- c.Start(ctx, func(_ context.Context, topic string, ev models.OrderEvent) error {
			mu.Lock()
			defer mu.Unlock()
			seen = append(seen, ev.OrderCode)
			if len(seen) == 1 {
				return handlerErr
			}
			return nil
		})
	}()

	require.Eventually(t, func() bool {
		reader.mu.Lock()
		defer reader.mu.Unlock()
		return len(reader.committed) == 3
	}, time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, []string{"CJ-1", "CJ-1"}, seen)
	assert.Equal(t, []int64{1, 2, 3}, reader.committed)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), "t", "k", nil))
	assert.NoError(t, p.Close())
}
