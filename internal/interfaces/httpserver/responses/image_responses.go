package responses

import "github.com/novelstudio/nai-gateway/internal/domain/imagegen"

// GenerationResponse carries the generated images as standard base64, with
// the sniffed content type of each image at the same index.
type GenerationResponse struct {
	Images    []string       `json:"images"`
	MIMETypes []string       `json:"mime_types"`
	Seed      uint32         `json:"seed"`
	Model     imagegen.Model `json:"model"`
}

func NewGenerationResponse(result *imagegen.Result) GenerationResponse {
	return GenerationResponse{
		Images:    imagegen.EncodeImages(result.Images),
		MIMETypes: imagegen.MIMETypes(result.Images),
		Seed:      result.Seed,
		Model:     result.Model,
	}
}

// CompileResponse is the wire request that would be sent upstream.
type CompileResponse struct {
	Family  imagegen.Family          `json:"family"`
	Request imagegen.CompiledRequest `json:"request"`
}

// ListResponse wraps static tables.
type ListResponse[T any] struct {
	Object string `json:"object"`
	Data   []T    `json:"data"`
}

func NewListResponse[T any](data []T) ListResponse[T] {
	return ListResponse[T]{Object: "list", Data: data}
}
