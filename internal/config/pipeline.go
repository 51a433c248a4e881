package config

import (
	"fmt"

	"github.com/DjordjeVuckovic/docstream/internal/stream"
)

const (
	PipelineKind = "Pipeline"
	VersionV1    = "v1"
)

// PipelineSpec defines a tagger and an optional batching sink for one import
// +schema:root=true
// +schema:group=docstream.io
// +schema:version=v1
type PipelineSpec struct {
	// Kind is the resource type identifier
	Kind string `json:"kind" yaml:"kind" schema:"required,enum=Pipeline" description:"Resource type identifier"`

	// Version is the API version
	Version string `json:"version" yaml:"version" schema:"required,enum=v1" description:"API version"`

	Metadata Metadata `json:"metadata" yaml:"metadata" schema:"required" description:"Pipeline metadata"`

	Tagger TaggerSpec `json:"tagger" yaml:"tagger" description:"Decode, filter, mutate and tag settings"`

	Sink SinkSpec `json:"sink" yaml:"sink" description:"Batching sink settings"`
}

type Metadata struct {
	Name string `json:"name" yaml:"name" schema:"required,minLength=1,maxLength=100" description:"Human-readable pipeline name"`

	Description string `json:"description,omitempty" yaml:"description,omitempty" schema:"maxLength=500" description:"Description of the pipeline"`
}

type TaggerSpec struct {
	// AutoIncrement is the field receiving the sequence number, empty disables tagging
	AutoIncrement string `json:"auto_increment,omitempty" yaml:"auto_increment,omitempty" schema:"pattern=^[A-Za-z0-9_.-]+$,maxLength=100" description:"Field that receives the sequence number"`

	IgnoreUndecodable bool `json:"ignore_undecodable,omitempty" yaml:"ignore_undecodable,omitempty" schema:"default=false" description:"Carry undecodable fragments over to the next chunk"`

	InputMode string `json:"input_mode,omitempty" yaml:"input_mode,omitempty" schema:"enum=raw|structured,default=raw" description:"Input side of the tagger"`

	OutputMode string `json:"output_mode,omitempty" yaml:"output_mode,omitempty" schema:"enum=raw|structured,default=raw" description:"Output side of the tagger when no sink follows it"`

	// Mutate is merged over every accepted document
	Mutate map[string]any `json:"mutate,omitempty" yaml:"mutate,omitempty" description:"Partial document merged over each document"`

	Filter *FilterSpec `json:"filter,omitempty" yaml:"filter,omitempty" description:"Documents not matching are dropped"`
}

type FilterSpec struct {
	RequiredFields []string `json:"required_fields,omitempty" yaml:"required_fields,omitempty" description:"Fields a document must carry"`

	Match map[string]any `json:"match,omitempty" yaml:"match,omitempty" description:"Field values a document must equal"`
}

type SinkSpec struct {
	Enabled bool `json:"enabled" yaml:"enabled" schema:"default=false" description:"Write documents to the configured storage"`

	WaterMark int `json:"water_mark,omitempty" yaml:"water_mark,omitempty" schema:"default=50" description:"Documents per bulk insert"`

	PassThrough bool `json:"pass_through,omitempty" yaml:"pass_through,omitempty" schema:"default=false" description:"Forward stored documents downstream"`
}

func (ps *PipelineSpec) Validate() error {
	if ps.Kind != PipelineKind {
		return fmt.Errorf("kind must be %q, got %q", PipelineKind, ps.Kind)
	}
	if ps.Version != VersionV1 {
		return fmt.Errorf("unsupported version %q", ps.Version)
	}
	if ps.Metadata.Name == "" {
		return fmt.Errorf("metadata.name is required")
	}
	if _, err := ps.Tagger.Input(); err != nil {
		return fmt.Errorf("tagger.input_mode: %w", err)
	}
	if _, err := ps.Tagger.Output(); err != nil {
		return fmt.Errorf("tagger.output_mode: %w", err)
	}
	if ps.Tagger.Filter != nil {
		for i, f := range ps.Tagger.Filter.RequiredFields {
			if f == "" {
				return fmt.Errorf("tagger.filter.required_fields[%d] must not be empty", i)
			}
		}
	}
	if ps.Sink.WaterMark < 0 {
		return fmt.Errorf("sink.water_mark must not be negative")
	}
	return nil
}

// Input resolves the input mode, raw when unset.
func (ts TaggerSpec) Input() (stream.Mode, error) {
	return parseModeOr(ts.InputMode, stream.Raw)
}

// Output resolves the output mode, raw when unset.
func (ts TaggerSpec) Output() (stream.Mode, error) {
	return parseModeOr(ts.OutputMode, stream.Raw)
}

func parseModeOr(s string, def stream.Mode) (stream.Mode, error) {
	if s == "" {
		return def, nil
	}
	return stream.ParseMode(s)
}

// Default is used when no pipeline file is given: raw NDJSON in, stored in batches of 50.
func Default() *PipelineSpec {
	return &PipelineSpec{
		Kind:     PipelineKind,
		Version:  VersionV1,
		Metadata: Metadata{Name: "default"},
		Sink:     SinkSpec{Enabled: true},
	}
}
