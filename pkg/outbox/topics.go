package outbox

import (
	"fmt"
	"strings"

	"github.com/streetfood/rawmart/pkg/config"
	"github.com/streetfood/rawmart/pkg/enums"
)

// TopicFor maps an event type to the Pub/Sub topic it is published on.
func TopicFor(cfg config.PubSubConfig, eventType enums.OutboxEventType) (string, error) {
	switch eventType {
	case enums.EventOrderPlaced:
		if topic := strings.TrimSpace(cfg.OrdersTopic); topic != "" {
			return topic, nil
		}
		return "", fmt.Errorf("orders topic not configured")
	default:
		return "", fmt.Errorf("no topic registered for event type %q", eventType)
	}
}
