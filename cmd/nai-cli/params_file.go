package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/novelstudio/nai-gateway/internal/domain/imagegen"
)

// paramsFile is the YAML (or JSON) document accepted by generate and compile.
// Image fields may be given inline as !!binary or as paths relative to the
// file.
type paramsFile struct {
	imagegen.Params `yaml:",inline"`

	Characters          []imagegen.Character `yaml:"characters"`
	ImagePath           string               `yaml:"imagePath"`
	ReferenceImagePaths []string             `yaml:"referenceImagePaths"`
}

// loadParams reads path over the default parameters. An empty path yields the
// defaults.
func loadParams(path string) (imagegen.Params, error) {
	doc := paramsFile{Params: imagegen.DefaultParams()}
	if path == "" {
		return doc.Params, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return imagegen.Params{}, fmt.Errorf("read params file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return imagegen.Params{}, fmt.Errorf("parse params file %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	if doc.ImagePath != "" {
		img, err := os.ReadFile(resolvePath(dir, doc.ImagePath))
		if err != nil {
			return imagegen.Params{}, fmt.Errorf("read source image: %w", err)
		}
		doc.SourceImage = img
	}
	for _, ref := range doc.ReferenceImagePaths {
		img, err := os.ReadFile(resolvePath(dir, ref))
		if err != nil {
			return imagegen.Params{}, fmt.Errorf("read reference image: %w", err)
		}
		doc.ReferenceImages = append(doc.ReferenceImages, imagegen.ReferenceImage{
			Image:                img,
			InformationExtracted: 1,
			ReferenceStrength:    0.6,
		})
	}

	return imagegen.ApplyCharacters(doc.Params, doc.Characters), nil
}

func resolvePath(dir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}
