package bus

// RoutingKey joins a channel and chat ID into "channel:chat".
func RoutingKey(channel Channel, chatID string) string {
	if chatID == "" {
		return string(channel)
	}

	return string(channel) + ":" + chatID
}
