package imagegen

const defaultCharacterUC = "lowres"

var defaultCharacterCenter = Point{X: 0.5, Y: 0.5}

// Character is a reusable subject definition.
type Character struct {
	Name           string `json:"name" yaml:"name"`
	Prompt         string `json:"prompt" yaml:"prompt"`
	NegativePrompt string `json:"negativePrompt" yaml:"negativePrompt"`
	Position       *Point `json:"position,omitempty" yaml:"position,omitempty"`
}

// ApplyCharacters folds characters into p. V3 models get the character
// prompts appended to the main prompt; V4 models get a structured prompt with
// one subject caption per character plus the flattened character list.
func ApplyCharacters(p Params, characters []Character) Params {
	if len(characters) == 0 {
		return p
	}

	if !p.Model.IsV4() {
		prompts := make([]string, 0, len(characters))
		for _, c := range characters {
			prompts = append(prompts, c.Prompt)
		}
		p.Prompt = joinTags(p.Prompt, joinTags(prompts...))
		return p
	}

	positive := make([]SubjectCaption, 0, len(characters))
	negative := make([]SubjectCaption, 0, len(characters))
	flat := make([]CharacterPrompt, 0, len(characters))
	useCoords := false

	for _, c := range characters {
		uc := c.NegativePrompt
		if uc == "" {
			uc = defaultCharacterUC
		}
		centers := []Point{}
		center := defaultCharacterCenter
		if c.Position != nil {
			useCoords = true
			center = *c.Position
			centers = append(centers, center)
		}

		positive = append(positive, SubjectCaption{Caption: c.Prompt, Centers: centers})
		negative = append(negative, SubjectCaption{Caption: uc, Centers: []Point{}})
		flat = append(flat, CharacterPrompt{Prompt: c.Prompt, UC: uc, Center: center, Enabled: true})
	}

	p.StructuredPrompt = &StructuredPrompt{
		Caption:   Caption{BaseCaption: p.Prompt, SubjectCaptions: positive},
		UseCoords: useCoords,
		UseOrder:  true,
	}
	p.StructuredNegativePrompt = &StructuredNegativePrompt{
		Caption: Caption{BaseCaption: p.NegativePrompt, SubjectCaptions: negative},
	}
	p.CharacterPrompts = flat
	return p
}
