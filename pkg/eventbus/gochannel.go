package eventbus

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// NewGoChannelBus creates an in-process bus backed by watermill's GoChannel
// pubsub. The single GoChannel instance serves as both publisher and
// subscriber.
func NewGoChannelBus(logger watermill.LoggerAdapter) EventBus {
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer: 1000,
			Persistent:          false,
		},
		logger,
	)

	return NewWatermillEventBus(pubSub, pubSub)
}

// NewTestBus creates a GoChannel bus tuned for deterministic tests: small
// buffers, persistent messages, publish blocked until acknowledged.
func NewTestBus(logger watermill.LoggerAdapter) EventBus {
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer:            10,
			Persistent:                     true,
			BlockPublishUntilSubscriberAck: true,
		},
		logger,
	)

	return NewWatermillEventBus(pubSub, pubSub)
}
