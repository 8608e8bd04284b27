package imagegen

// Fixed V4 generation flags. They are not caller configurable.
const (
	v4ParamsVersion      = 3
	v4ControlnetStrength = 1.0

	defaultImg2ImgStrength = 0.7
	defaultImg2ImgNoise    = 0.0
)

// StreamFormatMsgpack asks the streaming endpoint for msgpack frames.
const StreamFormatMsgpack = "msgpack"

// CompiledRequest is the JSON body posted to the generation endpoint.
type CompiledRequest struct {
	Input      string     `json:"input"`
	Model      Model      `json:"model"`
	Action     Action     `json:"action"`
	Parameters Parameters `json:"parameters"`
}

// Seed returns the resolved seed carried by the parameters.
func (r CompiledRequest) Seed() uint32 {
	if r.Parameters == nil {
		return 0
	}
	return r.Parameters.common().Seed
}

// Family reports which parameter shape the request carries.
func (r CompiledRequest) Family() Family {
	if r.Parameters == nil {
		return r.Model.Family()
	}
	return r.Parameters.Family()
}

// Parameters is implemented by *V3Parameters and *V4Parameters only.
type Parameters interface {
	Family() Family
	common() *CommonParameters
}

// CommonParameters is the prefix shared by both wire shapes.
type CommonParameters struct {
	Width          int           `json:"width"`
	Height         int           `json:"height"`
	Scale          float64       `json:"scale"`
	Sampler        Sampler       `json:"sampler"`
	Steps          int           `json:"steps"`
	Seed           uint32        `json:"seed"`
	NSamples       int           `json:"n_samples"`
	NegativePrompt string        `json:"negative_prompt"`
	NoiseSchedule  NoiseSchedule `json:"noise_schedule"`
	QualityToggle  bool          `json:"qualityToggle"`
	UCPreset       UCPreset      `json:"ucPreset"`
	CFGRescale     float64       `json:"cfg_rescale"`
	Stream         string        `json:"stream,omitempty"`

	ReferenceImageMultiple                [][]byte  `json:"reference_image_multiple,omitempty"`
	ReferenceInformationExtractedMultiple []float64 `json:"reference_information_extracted_multiple,omitempty"`
	ReferenceStrengthMultiple             []float64 `json:"reference_strength_multiple,omitempty"`

	Image    []byte   `json:"image,omitempty"`
	Strength *float64 `json:"strength,omitempty"`
	Noise    *float64 `json:"noise,omitempty"`
}

func (c *CommonParameters) common() *CommonParameters { return c }

// V3Parameters is the wire shape for the V3 model family.
type V3Parameters struct {
	CommonParameters
	SMEA        bool    `json:"sm"`
	SMEADyn     bool    `json:"sm_dyn"`
	UncondScale float64 `json:"uncond_scale"`
}

func (*V3Parameters) Family() Family { return FamilyV3 }

// V4Parameters is the wire shape for the V4 model family.
type V4Parameters struct {
	CommonParameters
	ParamsVersion               int                      `json:"params_version"`
	DynamicThresholding         bool                     `json:"dynamic_thresholding"`
	Legacy                      bool                     `json:"legacy"`
	LegacyV3Extend              bool                     `json:"legacy_v3_extend"`
	PreferBrownian              bool                     `json:"prefer_brownian"`
	AddOriginalImage            bool                     `json:"add_original_image"`
	ControlnetStrength          float64                  `json:"controlnet_strength"`
	DeliberateEulerAncestralBug bool                     `json:"deliberate_euler_ancestral_bug"`
	UseCoords                   bool                     `json:"use_coords"`
	V4Prompt                    StructuredPrompt         `json:"v4_prompt"`
	V4NegativePrompt            StructuredNegativePrompt `json:"v4_negative_prompt"`
	CharacterPrompts            []CharacterPrompt        `json:"characterPrompts,omitempty"`
}

func (*V4Parameters) Family() Family { return FamilyV4 }

// WireFieldNames maps Params field names to the keys they occupy in the
// compiled parameters object.
var WireFieldNames = map[string]string{
	"width":                                "width",
	"height":                               "height",
	"scale":                                "scale",
	"sampler":                              "sampler",
	"steps":                                "steps",
	"seed":                                 "seed",
	"nSamples":                             "n_samples",
	"negativePrompt":                       "negative_prompt",
	"noiseSchedule":                        "noise_schedule",
	"qualityToggle":                        "qualityToggle",
	"ucPreset":                             "ucPreset",
	"cfgRescale":                           "cfg_rescale",
	"smea":                                 "sm",
	"smeaDyn":                              "sm_dyn",
	"uncondScale":                          "uncond_scale",
	"structuredPrompt":                     "v4_prompt",
	"structuredNegativePrompt":             "v4_negative_prompt",
	"characterPrompts":                     "characterPrompts",
	"referenceImages.image":                "reference_image_multiple",
	"referenceImages.informationExtracted": "reference_information_extracted_multiple",
	"referenceImages.referenceStrength":    "reference_strength_multiple",
	"image":                                "image",
	"strength":                             "strength",
	"noise":                                "noise",
}

// Compiler turns Params into CompiledRequest. It is safe for concurrent use
// when its SeedSource is.
type Compiler struct {
	seeds        SeedSource
	streamFormat string
}

// CompilerOption configures a Compiler.
type CompilerOption func(*Compiler)

// WithStreamFormat sets the stream marker sent to the streaming endpoint.
// An empty format leaves the key out.
func WithStreamFormat(format string) CompilerOption {
	return func(c *Compiler) {
		c.streamFormat = format
	}
}

// NewCompiler builds a compiler. A nil source falls back to the runtime RNG.
func NewCompiler(seeds SeedSource, opts ...CompilerOption) *Compiler {
	if seeds == nil {
		seeds = NewRandomSeedSource()
	}
	c := &Compiler{seeds: seeds}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile produces the wire request for p. Input is assumed valid; see
// Validate.
func (c *Compiler) Compile(p Params) CompiledRequest {
	action := p.Action
	if action == "" {
		action = ActionGenerate
	}

	prompt, negative := p.Prompt, p.NegativePrompt
	isV4 := p.Model.IsV4()
	if isV4 {
		prompt = augmentPrompt(prompt, p.QualityToggle)
		negative = augmentNegativePrompt(negative, p.UCPreset)
	}

	common := c.commonParameters(p, action, negative)

	var params Parameters
	if isV4 {
		params = compileV4(p, common, prompt, negative)
	} else {
		params = compileV3(p, common)
	}

	return CompiledRequest{
		Input:      prompt,
		Model:      p.Model,
		Action:     action,
		Parameters: params,
	}
}

func (c *Compiler) resolveSeed(seed uint32) uint32 {
	if seed != 0 {
		return seed
	}
	return c.seeds.Seed()
}

func (c *Compiler) commonParameters(p Params, action Action, negative string) CommonParameters {
	common := CommonParameters{
		Width:          p.Width,
		Height:         p.Height,
		Scale:          p.Scale,
		Sampler:        p.Sampler,
		Steps:          p.Steps,
		Seed:           c.resolveSeed(p.Seed),
		NSamples:       p.NSamples,
		NegativePrompt: negative,
		NoiseSchedule:  p.NoiseSchedule,
		QualityToggle:  p.QualityToggle,
		UCPreset:       p.UCPreset,
		CFGRescale:     p.CFGRescale,
		Stream:         c.streamFormat,
	}

	if n := len(p.ReferenceImages); n > 0 {
		common.ReferenceImageMultiple = make([][]byte, 0, n)
		common.ReferenceInformationExtractedMultiple = make([]float64, 0, n)
		common.ReferenceStrengthMultiple = make([]float64, 0, n)
		for _, ref := range p.ReferenceImages {
			common.ReferenceImageMultiple = append(common.ReferenceImageMultiple, ref.Image)
			common.ReferenceInformationExtractedMultiple = append(common.ReferenceInformationExtractedMultiple, ref.InformationExtracted)
			common.ReferenceStrengthMultiple = append(common.ReferenceStrengthMultiple, ref.ReferenceStrength)
		}
	}

	if action == ActionImg2Img && len(p.SourceImage) > 0 {
		strength, noise := defaultImg2ImgStrength, defaultImg2ImgNoise
		if p.Strength != nil {
			strength = *p.Strength
		}
		if p.Noise != nil {
			noise = *p.Noise
		}
		common.Image = p.SourceImage
		common.Strength = &strength
		common.Noise = &noise
	}

	return common
}

func compileV3(p Params, common CommonParameters) *V3Parameters {
	return &V3Parameters{
		CommonParameters: common,
		SMEA:             p.SMEA,
		SMEADyn:          p.SMEADyn,
		UncondScale:      p.UncondScale,
	}
}

func compileV4(p Params, common CommonParameters, prompt, negative string) *V4Parameters {
	positive := structuredPrompt(p.StructuredPrompt, prompt)
	return &V4Parameters{
		CommonParameters:            common,
		ParamsVersion:               v4ParamsVersion,
		DynamicThresholding:         false,
		Legacy:                      false,
		LegacyV3Extend:              false,
		PreferBrownian:              true,
		AddOriginalImage:            true,
		ControlnetStrength:          v4ControlnetStrength,
		DeliberateEulerAncestralBug: false,
		UseCoords:                   positive.UseCoords,
		V4Prompt:                    positive,
		V4NegativePrompt:            structuredNegativePrompt(p.StructuredNegativePrompt, negative),
		CharacterPrompts:            cloneCharacterPrompts(p.CharacterPrompts),
	}
}

// structuredPrompt keeps the caller's subject captions and flags but always
// replaces the base caption with the augmented prompt.
func structuredPrompt(in *StructuredPrompt, base string) StructuredPrompt {
	if in == nil {
		return StructuredPrompt{
			Caption:   Caption{BaseCaption: base, SubjectCaptions: []SubjectCaption{}},
			UseCoords: false,
			UseOrder:  true,
		}
	}
	return StructuredPrompt{
		Caption:   Caption{BaseCaption: base, SubjectCaptions: cloneSubjectCaptions(in.Caption.SubjectCaptions)},
		UseCoords: in.UseCoords,
		UseOrder:  in.UseOrder,
	}
}

func structuredNegativePrompt(in *StructuredNegativePrompt, base string) StructuredNegativePrompt {
	if in == nil {
		return StructuredNegativePrompt{
			Caption: Caption{BaseCaption: base, SubjectCaptions: []SubjectCaption{}},
		}
	}
	return StructuredNegativePrompt{
		Caption:  Caption{BaseCaption: base, SubjectCaptions: cloneSubjectCaptions(in.Caption.SubjectCaptions)},
		LegacyUC: in.LegacyUC,
	}
}

func cloneSubjectCaptions(in []SubjectCaption) []SubjectCaption {
	out := make([]SubjectCaption, 0, len(in))
	for _, sc := range in {
		centers := make([]Point, len(sc.Centers))
		copy(centers, sc.Centers)
		out = append(out, SubjectCaption{Caption: sc.Caption, Centers: centers})
	}
	return out
}

func cloneCharacterPrompts(in []CharacterPrompt) []CharacterPrompt {
	if len(in) == 0 {
		return nil
	}
	out := make([]CharacterPrompt, len(in))
	copy(out, in)
	return out
}
