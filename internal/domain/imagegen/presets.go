package imagegen

import "strings"

// QualityTags is appended to V4 prompts when the quality toggle is on.
const QualityTags = "no text, best quality, very aesthetic, absurdres"

// ucPresets is indexed by UCPreset. The last entry is intentionally empty.
var ucPresets = [...]string{
	UCPresetHeavy: "blurry, lowres, error, film grain, scan artifacts, worst quality, bad quality, jpeg artifacts, " +
		"very displeasing, chromatic aberration, logo, dated, signature, multiple views, gigantic breasts",
	UCPresetLight: "blurry, lowres, error, worst quality, bad quality, jpeg artifacts, very displeasing, logo, dated, signature",
	UCPresetHumanFocus: "blurry, lowres, error, film grain, scan artifacts, worst quality, bad quality, jpeg artifacts, " +
		"very displeasing, chromatic aberration, logo, dated, signature, multiple views, gigantic breasts, " +
		"bad anatomy, bad hands, @_@, mismatched pupils, heart-shaped pupils, glowing eyes",
	UCPresetNone: "",
}

// Text returns the canned negative prompt for the preset. Out of range
// presets resolve to the empty fragment.
func (p UCPreset) Text() string {
	if p < 0 || int(p) >= len(ucPresets) {
		return ""
	}
	return ucPresets[p]
}

// joinTags comma-joins the non-empty parts.
func joinTags(parts ...string) string {
	kept := parts[:0:0]
	for _, part := range parts {
		if part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, ", ")
}

// augmentPrompt appends the quality tags when enabled.
func augmentPrompt(prompt string, qualityToggle bool) string {
	if !qualityToggle {
		return prompt
	}
	return joinTags(prompt, QualityTags)
}

// augmentNegativePrompt prepends the UC preset fragment.
func augmentNegativePrompt(negative string, preset UCPreset) string {
	return joinTags(preset.Text(), negative)
}
