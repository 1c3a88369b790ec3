// Package prompt composes the text prompt sent to the image synthesis
// provider from a base prompt, an art style and a list of artistic
// filters. Composition is pure and deterministic so it can be tested
// without the provider.
package prompt

import (
	"regexp"
	"strings"
)

// styleSuffixes maps a recognized art style to its descriptive suffix.
// An unrecognized style contributes nothing; that is a silent fallback,
// not an error.
var styleSuffixes = map[string]string{
	"realistic": "photorealistic studio portrait, high detail, sharp focus, octane render, trending on ArtStation",
	"anime":     "anime style, digital illustration, vibrant colors, clean lines, trending on Pixiv",
	"cartoon":   "3D Pixar style, cute, cheerful, smooth shading, high resolution",
	"pixelart":  "pixel art style, 8-bit, retro gaming aesthetic, perfect pixels",
}

// filterPhrases maps a recognized artistic filter tag to its phrase.
// Unknown tags are dropped.
var filterPhrases = map[string]string{
	"vibrant":     "vibrant, saturated colors, cinematic lighting",
	"pastel":      "soft pastel colors, serene lighting",
	"dark":        "dark fantasy, dramatic lighting, moody atmosphere",
	"cinematic":   "cinematic lighting, film grain, volumetric light",
	"high_detail": "ultra-detailed, intricate, high resolution, 4k",
	"fantasy":     "fantasy aesthetic, magical, mythical",
}

// commaRuns matches any run of commas and surrounding whitespace, so
// ",,", ", ," and ",  " all collapse to a single ", ".
var commaRuns = regexp.MustCompile(`\s*,[,\s]*`)

// Compose builds the full synthesis prompt: base prompt, then the style
// suffix, then each filter phrase in input order, joined by ", " with
// repeated comma runs collapsed and surrounding whitespace trimmed.
func Compose(base, style string, filters []string) string {
	parts := []string{base}

	if suffix, ok := styleSuffixes[style]; ok {
		parts = append(parts, suffix)
	}

	for _, f := range filters {
		if phrase, ok := filterPhrases[f]; ok {
			parts = append(parts, phrase)
		}
	}

	full := strings.Join(parts, ", ")
	full = commaRuns.ReplaceAllString(full, ", ")
	return strings.Trim(full, ", ")
}
