package rabbitmq

// QueueConfig описывает очередь и её ключ маршрутизации.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// Ключи маршрутизации уведомлений.
const (
	RoutingKeyModeration = "moderation"
	RoutingKeySupport    = "support"
)

// GetNotificationQueues возвращает очереди воркера уведомлений:
// письма о действиях модерации и об ответах поддержки.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "notifications.moderation", RoutingKey: RoutingKeyModeration},
		{QueueName: "notifications.support", RoutingKey: RoutingKeySupport},
	}
}
