package bus

import "context"

// Bus is the contract between chat transports and the dispatcher.
type Bus interface {
	// PublishInbound delivers a message from a transport to the dispatcher.
	// It blocks while the buffer is full, until ctx is done.
	PublishInbound(ctx context.Context, msg InboundMessage) error
	// PublishOutbound delivers a reply from the dispatcher to a transport.
	PublishOutbound(ctx context.Context, msg OutboundMessage) error
	// InboundChan returns a receive-only channel for the dispatcher to consume.
	InboundChan() <-chan InboundMessage
	// OutboundChan returns a receive-only channel for the channel manager to consume.
	OutboundChan() <-chan OutboundMessage
}

// MessageBus is the default in-process Bus backed by buffered Go channels.
type MessageBus struct {
	inbound  chan InboundMessage  // transports -> dispatcher
	outbound chan OutboundMessage // dispatcher -> transports
}

func NewMessageBus(bufSize int) *MessageBus {
	return &MessageBus{
		inbound:  make(chan InboundMessage, bufSize),
		outbound: make(chan OutboundMessage, bufSize),
	}
}

// PublishInbound sends an InboundMessage to the dispatcher.
func (b *MessageBus) PublishInbound(ctx context.Context, msg InboundMessage) error {
	select {
	case b.inbound <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishOutbound sends an OutboundMessage to the channel manager.
func (b *MessageBus) PublishOutbound(ctx context.Context, msg OutboundMessage) error {
	select {
	case b.outbound <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// InboundChan returns a receive-only view of the inbound channel.
func (b *MessageBus) InboundChan() <-chan InboundMessage {
	return b.inbound
}

// OutboundChan returns a receive-only view of the outbound channel.
func (b *MessageBus) OutboundChan() <-chan OutboundMessage {
	return b.outbound
}
