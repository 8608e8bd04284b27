package requests

import (
	"github.com/novelstudio/nai-gateway/internal/domain/imagegen"
)

// GenerationRequest is the body of the generation and compile endpoints.
// Omitted parameters keep the V4 defaults.
type GenerationRequest struct {
	imagegen.Params
	Characters []imagegen.Character `json:"characters,omitempty"`
}

// NewGenerationRequest returns a request pre-filled with defaults, ready to be
// bound over.
func NewGenerationRequest() GenerationRequest {
	return GenerationRequest{Params: imagegen.DefaultParams()}
}

// ToDomain folds the character list into the parameters.
func (r *GenerationRequest) ToDomain() imagegen.Params {
	return imagegen.ApplyCharacters(r.Params, r.Characters)
}
