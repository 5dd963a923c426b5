package broker_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/evidenx/evidenx/internal/broker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestChannelBroker(t *testing.T) {
	type testCase struct {
		name     string
		testFunc func(b *broker.ChannelBroker[int, string])
	}
	ctx := context.Background()
	tests := []testCase{
		{
			name: "subscriber receives content",
			testFunc: func(b *broker.ChannelBroker[int, string]) {
				id := 1
				channel := make(chan string)
				b.Publish(ctx, id, channel)
				go func() {
					channel <- "hello"
					close(channel)
					b.Unpublish(id)
				}()
				subscriptionChan := <-b.Subscribe(ctx, id)
				require.Equal(t, "hello", <-subscriptionChan, "subscriber did not receive content")
				msg, ok := <-subscriptionChan
				require.Empty(t, msg, "subscriber received content after producer closed")
				require.Falsef(t, ok, "channel not closed")
			},
		},
		{
			name: "unpublished id closes subscription",
			testFunc: func(b *broker.ChannelBroker[int, string]) {
				subscriptionChan, ok := <-b.Subscribe(ctx, 42)
				require.Nil(t, subscriptionChan)
				require.False(t, ok)
			},
		},
		{
			name: "subsequent subscribers block until producer is finished or unpublished",
			testFunc: func(b *broker.ChannelBroker[int, string]) {
				id := 1
				channel := make(chan string)
				b.Publish(ctx, id, channel)
				producerFinished := atomic.Bool{}

				// First subscriber
				subscriptionChan := <-b.Subscribe(ctx, id)

				// Next subscriber
				var wg sync.WaitGroup
				wg.Add(1)
				next := b.Subscribe(ctx, id)
				go func() {
					defer wg.Done()
					nextSubscriptionChan, ok := <-next
					assert.Nil(t, nextSubscriptionChan, "subsequent subscriber received content")
					assert.Falsef(t, ok, "channel not closed to signal producer is finished")
					assert.True(t, producerFinished.Load(), "producer not finished before subsequent subscriber unblocked")
				}()

				// Finish producer
				go func() {
					channel <- "hello"
					close(channel)
					producerFinished.Store(true)
					b.Unpublish(id)
				}()
				require.Equal(t, "hello", <-subscriptionChan, "subscriber did not receive content")
				wg.Wait()

				// Last subscriber
				nextSubscriptionChan, ok := <-b.Subscribe(ctx, id)
				require.Nil(t, nextSubscriptionChan, "last subscriber received content")
				require.Falsef(t, ok, "last subscriber channel not closed to signal producer is finished")
				require.True(t, producerFinished.Load(), "producer not finished before last subscriber unblocked")
			},
		},
		{
			name: "cancelled subscriber does not block",
			testFunc: func(b *broker.ChannelBroker[int, string]) {
				cancelled, cancel := context.WithCancel(ctx)
				cancel()
				_, ok := <-b.Subscribe(cancelled, 1)
				require.False(t, ok)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			br := broker.NewChannelBroker[int, string]()
			done := make(chan struct{})
			go func() {
				defer close(done)
				br.Start()
			}()
			t.Cleanup(func() {
				br.Stop()
				<-done
			})
			tt.testFunc(br)
		})
	}
}

func TestChannelBroker_stopReleasesWaitingSubscribers(t *testing.T) {
	ctx := context.Background()
	br := broker.NewChannelBroker[string, string]()
	done := make(chan struct{})
	go func() {
		defer close(done)
		br.Start()
	}()

	br.Publish(ctx, "a", make(chan string))
	<-br.Subscribe(ctx, "a")
	waiting := br.Subscribe(ctx, "a")
	br.Stop()
	<-done

	_, ok := <-waiting
	require.False(t, ok)
	// Calls after stop return without blocking.
	br.Unpublish("a")
	_, ok = <-br.Subscribe(ctx, "a")
	require.False(t, ok)
}
