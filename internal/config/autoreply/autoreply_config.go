package autoreply

// AwayConfig seeds the in-memory session state at startup. Runtime changes
// made through commands are never written back.
type AwayConfig struct {
	DefaultMessage string `json:"defaultMessage" yaml:"defaultMessage"`
	GroupReplies   bool   `json:"groupReplies" yaml:"groupReplies"`
	AIEnabled      bool   `json:"aiEnabled" yaml:"aiEnabled"`
	AILength       string `json:"aiLength" yaml:"aiLength"` // short, medium, long
	CommandPrefix  string `json:"commandPrefix" yaml:"commandPrefix"`
	AIWorkers      int    `json:"aiWorkers" yaml:"aiWorkers"` // concurrent AI requests
	EndNotice      bool   `json:"endNotice" yaml:"endNotice"` // tell the owner when a session deadline passes
}

func DefaultAwayConfig() AwayConfig {
	return AwayConfig{
		DefaultMessage: "I'm currently away! I'll get back to you soon.",
		AILength:       "medium",
		CommandPrefix:  "/",
		AIWorkers:      4,
	}
}
