package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type YAMLConfigLoader struct {
	reader io.Reader
}

func NewYAMLConfigLoader(reader io.Reader) *YAMLConfigLoader {
	return &YAMLConfigLoader{
		reader: reader,
	}
}

func (cl *YAMLConfigLoader) Load(validate bool) (*PipelineSpec, error) {
	decoder := yaml.NewDecoder(cl.reader)
	decoder.KnownFields(true)
	var spec PipelineSpec
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("failed to decode pipeline definition: %w", err)
	}
	if validate {
		if err := spec.Validate(); err != nil {
			return nil, fmt.Errorf("invalid pipeline definition: %w", err)
		}
	}
	return &spec, nil
}

// LoadFile reads and validates the pipeline definition at path.
func LoadFile(path string) (*PipelineSpec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pipeline definition: %w", err)
	}
	defer f.Close()

	return NewYAMLConfigLoader(f).Load(true)
}
