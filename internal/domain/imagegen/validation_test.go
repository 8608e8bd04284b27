package imagegen

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/novelstudio/nai-gateway/internal/utils/platformerrors"
)

func TestValidate_AcceptsDefaults(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Validate(context.Background(), v4Params()))
	assert.NoError(t, v.Validate(context.Background(), v3Params()))
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *Params)
		want   string
	}{
		{"empty prompt", func(p *Params) { p.Prompt = "  " }, "prompt is empty"},
		{"width too small", func(p *Params) { p.Width = 32 }, "Width"},
		{"height too large", func(p *Params) { p.Height = 4096 }, "Height"},
		{"zero steps", func(p *Params) { p.Steps = 0 }, "Steps"},
		{"too many samples", func(p *Params) { p.NSamples = 9 }, "NSamples"},
		{"uc preset out of range", func(p *Params) { p.UCPreset = 4 }, "UCPreset"},
		{"unknown model", func(p *Params) { p.Model = "nai-diffusion-9" }, "unknown model"},
		{"unknown sampler", func(p *Params) { p.Sampler = "k_heun" }, "unknown sampler"},
		{"unknown noise schedule", func(p *Params) { p.NoiseSchedule = "linear" }, "unknown noise schedule"},
		{"unknown action", func(p *Params) { p.Action = "upscale" }, "Action"},
		{"img2img without image", func(p *Params) { p.Action = ActionImg2Img }, "source image"},
		{"reference strength out of range", func(p *Params) {
			p.ReferenceImages = []ReferenceImage{{Image: []byte("r"), InformationExtracted: 1, ReferenceStrength: 1.5}}
		}, "ReferenceStrength"},
		{"reference without image", func(p *Params) {
			p.ReferenceImages = []ReferenceImage{{InformationExtracted: 1, ReferenceStrength: 1}}
		}, "Image"},
		{"strength out of range", func(p *Params) {
			s := 1.5
			p.Strength = &s
		}, "Strength"},
		{"center outside unit square", func(p *Params) {
			p.StructuredPrompt = &StructuredPrompt{Caption: Caption{SubjectCaptions: []SubjectCaption{{Caption: "a", Centers: []Point{{X: 1.2, Y: 0.5}}}}}}
		}, "outside"},
	}

	v := NewValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := v4Params()
			tt.mutate(&p)

			err := v.Validate(context.Background(), p)

			assert.Error(t, err)
			assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_StructuredPromptAllowsEmptyPrompt(t *testing.T) {
	p := ApplyCharacters(v4Params(), []Character{{Prompt: "girl"}})
	p.Prompt = ""

	assert.NoError(t, NewValidator().Validate(context.Background(), p))
}

func TestValidate_StructuredPromptOnV3StillNeedsPrompt(t *testing.T) {
	p := v3Params()
	p.Prompt = ""
	p.StructuredPrompt = &StructuredPrompt{Caption: Caption{BaseCaption: "girl"}}

	err := NewValidator().Validate(context.Background(), p)

	assert.ErrorContains(t, err, "prompt is empty")
}
