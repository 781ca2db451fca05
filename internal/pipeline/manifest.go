package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ManifestFile is the config file shipped in a pipeline's sibling directory,
// e.g. pipeline_trna/pipeline.yml next to pipeline_trna.py.
const ManifestFile = "pipeline.yml"

// Manifest holds the descriptive keys of a pipeline's config file.
// Other keys in the file belong to the pipeline and are ignored here.
type Manifest struct {
	Description string `yaml:"description" json:"description,omitempty"`
	Version     string `yaml:"version" json:"version,omitempty"`
	Author      string `yaml:"author" json:"author,omitempty"`
}

// ManifestPath returns where the manifest for identifier lives in dir.
func ManifestPath(dir, identifier string) string {
	return filepath.Join(dir, identifier, ManifestFile)
}

// LoadManifest reads the manifest for identifier from dir.
func LoadManifest(dir, identifier string) (*Manifest, error) {
	path := ManifestPath(dir, identifier)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s not found in %s", ManifestFile, filepath.Join(dir, identifier))
		}
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}
	return &m, nil
}
