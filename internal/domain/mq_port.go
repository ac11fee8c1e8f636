package domain

import "context"

type Message struct {
	Key   []byte
	Value []byte
}

type PublisherPort interface {
	Publish(ctx context.Context, topic string, msgs ...Message) error
}

const (
	TopicOrderEvents      = "order-events"
	TopicSettlementEvents = "settlement-events"
	TopicWalletEvents     = "wallet-events"
	TopicOperatorQueue    = "operator-escalations"
)

// SubscriberPort delivers messages of topic to a consumer group until ctx
// is cancelled, then closes the channel.
type SubscriberPort interface {
	Subscribe(ctx context.Context, topic, group string) (<-chan Message, error)
}

// TopicRailConfirmations carries asynchronous transfer outcomes from the rail.
const TopicRailConfirmations = "rail-confirmations"
