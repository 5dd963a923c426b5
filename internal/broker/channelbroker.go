package broker

import "context"

type publishChannelContent[TID comparable, TPayload any] struct {
	ID      TID
	Channel chan TPayload
}

type subscribeChannelContent[TID comparable, TPayload any] struct {
	ID      TID
	Channel chan chan TPayload
}

// ChannelBroker passes a channel with ID from producer to the first consumer.
// The subsequent consumers will block until producer is finished so that they
// can resolve the situation e.g. by fetching persisted data from the database.
//
// This kind of broker is useful for streaming assistant answers through SSE. The
// producer in this case is a goroutine spawned by HTTP POST to initiate the streaming.
// The first consumer is the HTTP handler that returns the SSE stream. The subsequent
// consumers are likely caused by connectivity issues. In their case, it's better to
// wait for the producer to finish and return the complete answer at the end.
type ChannelBroker[TID comparable, TPayload any] struct {
	stopChannel      chan struct{}
	publishChannel   chan publishChannelContent[TID, TPayload]
	unpublishChannel chan TID
	subscribeChannel chan subscribeChannelContent[TID, TPayload]
}

// NewChannelBroker creates a new ChannelBroker. Start it in a goroutine and use Stop() to stop it.
func NewChannelBroker[TID comparable, TPayload any]() *ChannelBroker[TID, TPayload] {
	broker := ChannelBroker[TID, TPayload]{
		stopChannel:      make(chan struct{}),
		publishChannel:   make(chan publishChannelContent[TID, TPayload]),
		unpublishChannel: make(chan TID),
		subscribeChannel: make(chan subscribeChannelContent[TID, TPayload]),
	}
	return &broker
}

// Start listening for publish, unpublish, and subscribe events. This function blocks until Stop() is called,
// so it should be called in a goroutine. It does not handle panics, so it should be wrapped in a recover.
func (b *ChannelBroker[TID, TPayload]) Start() {
	publishedChannels := map[TID]chan TPayload{}
	// Subscribers waiting for the producer to finish. The first subscriber is not in the list.
	waiting := map[TID][]chan chan TPayload{}
	consumed := map[TID]bool{}
	for {
		select {
		case <-b.stopChannel:
			for _, subscribers := range waiting {
				for _, s := range subscribers {
					close(s)
				}
			}
			return

		case subscription := <-b.subscribeChannel:
			c := publishedChannels[subscription.ID]
			switch {
			case c == nil:
				// Signal to the subscriber that the producer is finished (or hasn't started yet).
				close(subscription.Channel)
			case !consumed[subscription.ID]:
				consumed[subscription.ID] = true
				subscription.Channel <- c
			default:
				waiting[subscription.ID] = append(waiting[subscription.ID], subscription.Channel)
			}

		case publication := <-b.publishChannel:
			publishedChannels[publication.ID] = publication.Channel

		case id := <-b.unpublishChannel:
			for _, s := range waiting[id] {
				close(s)
			}
			delete(publishedChannels, id)
			delete(waiting, id)
			delete(consumed, id)
		}
	}
}

// Stop the goroutine that handles the broker. Subscribers still waiting are released.
func (b *ChannelBroker[TID, TPayload]) Stop() {
	close(b.stopChannel)
}

// Subscribe to the channel with ID. Returns a channel that will receive the channel corresponding to the ID.
// If the channel is not yet published, the returned channel will be closed.
// If there's already a subscriber, the returned channel will block until the producer is finished and then
// close the returned channel. The returned channel is also closed when ctx is done or the broker is stopped
// before the subscription is registered.
func (b *ChannelBroker[TID, TPayload]) Subscribe(ctx context.Context, id TID) chan chan TPayload {
	channel := make(chan chan TPayload, 1)
	select {
	case b.subscribeChannel <- subscribeChannelContent[TID, TPayload]{
		ID:      id,
		Channel: channel,
	}:
	case <-ctx.Done():
		close(channel)
	case <-b.stopChannel:
		close(channel)
	}
	return channel
}

// Publish the channel with ID. The channel will be sent to the first subscriber.
func (b *ChannelBroker[TID, TPayload]) Publish(ctx context.Context, id TID, channel chan TPayload) {
	select {
	case b.publishChannel <- publishChannelContent[TID, TPayload]{
		ID:      id,
		Channel: channel,
	}:
	case <-ctx.Done():
	case <-b.stopChannel:
	}
}

// Unpublish the channel with ID and release the waiting subscribers. Subscribers arriving afterwards get a
// closed channel and should read the persisted result instead. The producer should use a timeout when
// sending so that a subscriber that never shows up does not block it forever.
func (b *ChannelBroker[TID, TPayload]) Unpublish(id TID) {
	select {
	case b.unpublishChannel <- id:
	case <-b.stopChannel:
	}
}
