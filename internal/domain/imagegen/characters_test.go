package imagegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyCharacters_NoCharactersIsNoop(t *testing.T) {
	p := v4Params()

	assert.Equal(t, p, ApplyCharacters(p, nil))
}

func TestApplyCharacters_V3JoinsPrompts(t *testing.T) {
	chars := []Character{{Prompt: "girl, red hair"}, {Prompt: "boy, glasses"}}

	t.Run("appends to existing prompt", func(t *testing.T) {
		p := ApplyCharacters(v3Params(), chars)

		assert.Equal(t, "1girl, solo, girl, red hair, boy, glasses", p.Prompt)
		assert.Nil(t, p.StructuredPrompt)
		assert.Nil(t, p.CharacterPrompts)
	})

	t.Run("empty prompt has no leading comma", func(t *testing.T) {
		base := v3Params()
		base.Prompt = ""

		assert.Equal(t, "girl, red hair, boy, glasses", ApplyCharacters(base, chars).Prompt)
	})
}

func TestApplyCharacters_V4BuildsStructuredPrompt(t *testing.T) {
	chars := []Character{
		{Name: "Alice", Prompt: "girl, red hair", NegativePrompt: "bad hands", Position: &Point{X: 0.25, Y: 0.5}},
		{Name: "Bob", Prompt: "boy, glasses"},
	}

	p := ApplyCharacters(v4Params(), chars)

	require.NotNil(t, p.StructuredPrompt)
	assert.Equal(t, "1girl", p.StructuredPrompt.Caption.BaseCaption)
	assert.True(t, p.StructuredPrompt.UseCoords)
	assert.True(t, p.StructuredPrompt.UseOrder)
	require.Len(t, p.StructuredPrompt.Caption.SubjectCaptions, 2)
	assert.Equal(t, []Point{{X: 0.25, Y: 0.5}}, p.StructuredPrompt.Caption.SubjectCaptions[0].Centers)
	assert.Empty(t, p.StructuredPrompt.Caption.SubjectCaptions[1].Centers)

	require.NotNil(t, p.StructuredNegativePrompt)
	assert.Equal(t, "lowres", p.StructuredNegativePrompt.Caption.BaseCaption)
	assert.Equal(t, "bad hands", p.StructuredNegativePrompt.Caption.SubjectCaptions[0].Caption)
	assert.Equal(t, "lowres", p.StructuredNegativePrompt.Caption.SubjectCaptions[1].Caption)

	require.Len(t, p.CharacterPrompts, 2)
	assert.Equal(t, CharacterPrompt{Prompt: "girl, red hair", UC: "bad hands", Center: Point{X: 0.25, Y: 0.5}, Enabled: true}, p.CharacterPrompts[0])
	assert.Equal(t, Point{X: 0.5, Y: 0.5}, p.CharacterPrompts[1].Center)
}

func TestApplyCharacters_V4WithoutPositionsDisablesCoords(t *testing.T) {
	p := ApplyCharacters(v4Params(), []Character{{Prompt: "girl"}})

	assert.False(t, p.StructuredPrompt.UseCoords)
}

func TestUCPresetText(t *testing.T) {
	assert.NotEmpty(t, UCPresetHeavy.Text())
	assert.NotEmpty(t, UCPresetLight.Text())
	assert.NotEmpty(t, UCPresetHumanFocus.Text())
	assert.Empty(t, UCPresetNone.Text())
	assert.Empty(t, UCPreset(-1).Text())
	assert.Empty(t, UCPreset(9).Text())
	assert.Contains(t, UCPresetHumanFocus.Text(), UCPresetHeavy.Text())
}

func TestModelFamily(t *testing.T) {
	for _, info := range Models {
		assert.Equal(t, info.Family, info.ID.Family(), info.ID)
		assert.True(t, info.ID.Known())
		assert.Equal(t, info.Label, info.ID.Label())
	}
	assert.Equal(t, FamilyV4, Model("nai-diffusion-4-5-full").Family())
	assert.False(t, Model("nai-diffusion-2").Known())
	assert.Equal(t, "nai-diffusion-2", Model("nai-diffusion-2").Label())
}
