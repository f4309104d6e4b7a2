// internal/endpoints/image/models.go
package image

type Input struct {
	Prompt   string
	ClientID string
}

// Output carries the generated image URL; Image is null when the upstream
// answered without one.
type Output struct {
	Status bool    `json:"status"`
	Image  *string `json:"image"`
}
