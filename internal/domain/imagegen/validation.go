package imagegen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/novelstudio/nai-gateway/internal/utils/platformerrors"
)

// Validator checks Params before compilation. The compiler itself assumes
// valid input.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate returns a platformerrors validation error describing the first
// problem found.
func (v *Validator) Validate(ctx context.Context, p Params) error {
	if err := v.validate.Struct(p); err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, describeValidation(err), err, "369e6840-c9d1-4ab2-9844-c1ea376f79f9")
	}

	if !p.Model.Known() {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, fmt.Sprintf("unknown model %q", p.Model), nil, "e5085e59-8552-4f7d-ac22-01e13b9d79c6")
	}
	if !knownSampler(p.Sampler) {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, fmt.Sprintf("unknown sampler %q", p.Sampler), nil, "ff32b483-e336-4b5f-9d08-e90b355e4a04")
	}
	if !knownNoiseSchedule(p.NoiseSchedule) {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, fmt.Sprintf("unknown noise schedule %q", p.NoiseSchedule), nil, "16023942-07a0-4dc0-befc-615437293533")
	}

	// Only V4 requests carry the structured prompt, so only they may leave
	// the flat prompt empty.
	if strings.TrimSpace(p.Prompt) == "" && (p.StructuredPrompt == nil || !p.Model.IsV4()) {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "prompt is empty", nil, "ccc59f16-456a-444a-a029-6e11265b97f2")
	}
	if p.Action == ActionImg2Img && len(p.SourceImage) == 0 {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "img2img requires a source image", nil, "352545f4-22f4-433a-a3b5-f3ae980767d1")
	}
	if p.StructuredPrompt != nil {
		for i, sc := range p.StructuredPrompt.Caption.SubjectCaptions {
			for _, c := range sc.Centers {
				if c.X < 0 || c.X > 1 || c.Y < 0 || c.Y > 1 {
					return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, fmt.Sprintf("subject %d center (%g,%g) outside [0,1]", i, c.X, c.Y), nil, "6a37e4cc-de99-4cb0-8d27-b09c73d2f0b7")
				}
			}
		}
	}
	return nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid generation parameters"
	}
	fe := verrs[0]
	if fe.Param() == "" {
		return fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag())
	}
	return fmt.Sprintf("%s failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param())
}

func knownSampler(s Sampler) bool {
	for _, info := range Samplers {
		if info.ID == s {
			return true
		}
	}
	return false
}

func knownNoiseSchedule(n NoiseSchedule) bool {
	switch n {
	case NoiseNative, NoiseKarras, NoiseExponential, NoisePolyexponential:
		return true
	}
	return false
}
