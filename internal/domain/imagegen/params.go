// Package imagegen holds the generation request model, the wire compiler and
// the error taxonomy for the NovelAI image endpoint.
package imagegen

import "strings"

// Model identifies a NovelAI image model.
type Model string

const (
	ModelV4CuratedPreview  Model = "nai-diffusion-4-curated-preview"
	ModelV4Full            Model = "nai-diffusion-4-full"
	ModelV3                Model = "nai-diffusion-3"
	ModelV3Inpainting      Model = "nai-diffusion-3-inpainting"
	ModelFurryV3           Model = "nai-diffusion-furry-3"
	ModelFurryV3Inpainting Model = "nai-diffusion-furry-3-inpainting"
)

const (
	defaultModel   = ModelV4CuratedPreview
	v4FamilyMarker = "diffusion-4"
)

// Family is the wire-schema generation a model belongs to.
type Family string

const (
	FamilyV3 Family = "V3"
	FamilyV4 Family = "V4"
)

// ModelInfo describes a model for listing endpoints.
type ModelInfo struct {
	ID     Model  `json:"id" yaml:"id"`
	Label  string `json:"label" yaml:"label"`
	Family Family `json:"family" yaml:"family"`
}

// Models lists the supported models in display order.
var Models = []ModelInfo{
	{ID: ModelV4CuratedPreview, Label: "NAI Diffusion V4 (Curated)", Family: FamilyV4},
	{ID: ModelV4Full, Label: "NAI Diffusion V4 (Full)", Family: FamilyV4},
	{ID: ModelV3, Label: "NAI Diffusion V3", Family: FamilyV3},
	{ID: ModelV3Inpainting, Label: "NAI Diffusion V3 (Inpainting)", Family: FamilyV3},
	{ID: ModelFurryV3, Label: "NAI Diffusion Furry V3", Family: FamilyV3},
	{ID: ModelFurryV3Inpainting, Label: "NAI Diffusion Furry V3 (Inpainting)", Family: FamilyV3},
}

// Family reports which wire schema the model uses.
func (m Model) Family() Family {
	if strings.Contains(string(m), v4FamilyMarker) {
		return FamilyV4
	}
	return FamilyV3
}

// IsV4 is shorthand for Family() == FamilyV4.
func (m Model) IsV4() bool {
	return m.Family() == FamilyV4
}

// Known reports whether the model is in the Models table.
func (m Model) Known() bool {
	for _, info := range Models {
		if info.ID == m {
			return true
		}
	}
	return false
}

// Label returns the display label, or the raw id for unknown models.
func (m Model) Label() string {
	for _, info := range Models {
		if info.ID == m {
			return info.Label
		}
	}
	return string(m)
}

// Sampler is the diffusion sampler name sent on the wire.
type Sampler string

const (
	SamplerEuler            Sampler = "k_euler"
	SamplerEulerAncestral   Sampler = "k_euler_ancestral"
	SamplerDPMPP2SAncestral Sampler = "k_dpmpp_2s_ancestral"
	SamplerDPMPP2M          Sampler = "k_dpmpp_2m"
	SamplerDPMPP2MSDE       Sampler = "k_dpmpp_2m_sde"
	SamplerDPMPPSDE         Sampler = "k_dpmpp_sde"
	SamplerDDIM             Sampler = "ddim"
)

// SamplerInfo pairs a sampler with its display label.
type SamplerInfo struct {
	ID    Sampler `json:"id"`
	Label string  `json:"label"`
}

var Samplers = []SamplerInfo{
	{ID: SamplerEuler, Label: "Euler"},
	{ID: SamplerEulerAncestral, Label: "Euler Ancestral"},
	{ID: SamplerDPMPP2SAncestral, Label: "DPM++ 2S Ancestral"},
	{ID: SamplerDPMPP2M, Label: "DPM++ 2M"},
	{ID: SamplerDPMPP2MSDE, Label: "DPM++ 2M SDE"},
	{ID: SamplerDPMPPSDE, Label: "DPM++ SDE"},
	{ID: SamplerDDIM, Label: "DDIM"},
}

// NoiseSchedule is the sigma schedule name sent on the wire.
type NoiseSchedule string

const (
	NoiseNative          NoiseSchedule = "native"
	NoiseKarras          NoiseSchedule = "karras"
	NoiseExponential     NoiseSchedule = "exponential"
	NoisePolyexponential NoiseSchedule = "polyexponential"
)

// UCPreset selects one of the canned negative prompt fragments.
type UCPreset int

const (
	UCPresetHeavy UCPreset = iota
	UCPresetLight
	UCPresetHumanFocus
	UCPresetNone
)

// Action is the generation mode.
type Action string

const (
	ActionGenerate   Action = "generate"
	ActionImg2Img    Action = "img2img"
	ActionInpainting Action = "inpainting"
)

// Point is a normalized placement center in [0,1]².
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// SubjectCaption is one per-subject caption of a structured prompt.
type SubjectCaption struct {
	Caption string  `json:"char_caption" yaml:"char_caption"`
	Centers []Point `json:"centers" yaml:"centers"`
}

// Caption is the base caption plus ordered subject captions.
type Caption struct {
	BaseCaption     string           `json:"base_caption" yaml:"base_caption"`
	SubjectCaptions []SubjectCaption `json:"char_captions" yaml:"char_captions"`
}

// StructuredPrompt is the V4 multi-subject prompt.
type StructuredPrompt struct {
	Caption   Caption `json:"caption" yaml:"caption"`
	UseCoords bool    `json:"use_coords" yaml:"use_coords"`
	UseOrder  bool    `json:"use_order" yaml:"use_order"`
}

// StructuredNegativePrompt is the V4 multi-subject negative prompt.
type StructuredNegativePrompt struct {
	Caption  Caption `json:"caption" yaml:"caption"`
	LegacyUC bool    `json:"legacy_uc" yaml:"legacy_uc"`
}

// CharacterPrompt is one entry of the flattened V4 character list.
type CharacterPrompt struct {
	Prompt  string `json:"prompt" yaml:"prompt"`
	UC      string `json:"uc" yaml:"uc"`
	Center  Point  `json:"center" yaml:"center"`
	Enabled bool   `json:"enabled" yaml:"enabled"`
}

// ReferenceImage is a vibe-transfer reference.
type ReferenceImage struct {
	Image                []byte  `json:"image" yaml:"image" validate:"required"`
	InformationExtracted float64 `json:"informationExtracted" yaml:"informationExtracted" validate:"gte=0,lte=1"`
	ReferenceStrength    float64 `json:"referenceStrength" yaml:"referenceStrength" validate:"gte=0,lte=1"`
}

// Params is a caller-facing generation request. Binary fields travel as
// base64 in JSON.
type Params struct {
	Prompt         string        `json:"prompt" yaml:"prompt"`
	NegativePrompt string        `json:"negativePrompt" yaml:"negativePrompt"`
	Model          Model         `json:"model" yaml:"model" validate:"required"`
	Action         Action        `json:"action" yaml:"action" validate:"omitempty,oneof=generate img2img inpainting"`
	Width          int           `json:"width" yaml:"width" validate:"gte=64,lte=1920"`
	Height         int           `json:"height" yaml:"height" validate:"gte=64,lte=1920"`
	Scale          float64       `json:"scale" yaml:"scale" validate:"gte=0,lte=10"`
	Sampler        Sampler       `json:"sampler" yaml:"sampler" validate:"required"`
	Steps          int           `json:"steps" yaml:"steps" validate:"gte=1,lte=50"`
	Seed           uint32        `json:"seed" yaml:"seed"`
	NSamples       int           `json:"nSamples" yaml:"nSamples" validate:"gte=1,lte=8"`
	UCPreset       UCPreset      `json:"ucPreset" yaml:"ucPreset" validate:"gte=0,lte=3"`
	QualityToggle  bool          `json:"qualityToggle" yaml:"qualityToggle"`
	SMEA           bool          `json:"smea" yaml:"smea"`
	SMEADyn        bool          `json:"smeaDyn" yaml:"smeaDyn"`
	NoiseSchedule  NoiseSchedule `json:"noiseSchedule" yaml:"noiseSchedule" validate:"required"`
	CFGRescale     float64       `json:"cfgRescale" yaml:"cfgRescale" validate:"gte=0,lte=1"`
	UncondScale    float64       `json:"uncondScale" yaml:"uncondScale" validate:"gte=0,lte=1.5"`

	StructuredPrompt         *StructuredPrompt         `json:"v4Prompt,omitempty" yaml:"v4Prompt,omitempty"`
	StructuredNegativePrompt *StructuredNegativePrompt `json:"v4NegativePrompt,omitempty" yaml:"v4NegativePrompt,omitempty"`
	CharacterPrompts         []CharacterPrompt         `json:"characterPrompts,omitempty" yaml:"characterPrompts,omitempty"`

	ReferenceImages []ReferenceImage `json:"referenceImages,omitempty" yaml:"referenceImages,omitempty" validate:"dive"`

	SourceImage []byte   `json:"image,omitempty" yaml:"image,omitempty"`
	Strength    *float64 `json:"strength,omitempty" yaml:"strength,omitempty" validate:"omitempty,gte=0,lte=1"`
	Noise       *float64 `json:"noise,omitempty" yaml:"noise,omitempty" validate:"omitempty,gte=0,lte=1"`
}

// DefaultParams returns the official V4 defaults with an empty prompt.
func DefaultParams() Params {
	return Params{
		Model:         defaultModel,
		Action:        ActionGenerate,
		Width:         832,
		Height:        1216,
		Scale:         5.5,
		Sampler:       SamplerEulerAncestral,
		Steps:         23,
		NSamples:      1,
		UCPreset:      UCPresetHeavy,
		QualityToggle: true,
		NoiseSchedule: NoiseKarras,
		UncondScale:   1.0,
	}
}

// SizePreset is a named canvas size.
type SizePreset struct {
	Label  string `json:"label"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

var SizePresets = []SizePreset{
	{Label: "Portrait (832x1216)", Width: 832, Height: 1216},
	{Label: "Portrait Large (832x1408)", Width: 832, Height: 1408},
	{Label: "Landscape (1216x832)", Width: 1216, Height: 832},
	{Label: "Landscape Large (1408x832)", Width: 1408, Height: 832},
	{Label: "Square (1024x1024)", Width: 1024, Height: 1024},
	{Label: "Square Small (512x512)", Width: 512, Height: 512},
}
