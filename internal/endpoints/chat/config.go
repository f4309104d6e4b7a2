// internal/endpoints/chat/config.go
package chat

import "time"

type Config struct {
	InputSchema map[string]interface{}
	Timeout     time.Duration
}
