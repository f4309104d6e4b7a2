// internal/endpoints/image/config.go
package image

import "time"

type Config struct {
	InputSchema map[string]interface{}
	Timeout     time.Duration
}
