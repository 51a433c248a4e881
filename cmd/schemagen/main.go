package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/DjordjeVuckovic/docstream/internal/config"
	"github.com/DjordjeVuckovic/docstream/pkg/schema"
)

func main() {
	var (
		outputDir = flag.String("output", "api", "Output directory for generated schemas")
	)
	flag.Parse()

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	generator := schema.NewGenerator()

	schemaJSON, err := generator.GenerateJSONSchema(config.PipelineSpec{})
	if err != nil {
		log.Fatalf("Failed to generate schema for Pipeline: %v", err)
	}

	jsonFile := filepath.Join(*outputDir, "pipeline-v1.json")
	if err := os.WriteFile(jsonFile, []byte(schemaJSON), 0644); err != nil {
		log.Fatalf("Failed to write JSON schema: %v", err)
	}

	fmt.Printf("Generated JSON schema: %s\n", jsonFile)

	yamlFile := filepath.Join(*outputDir, "pipeline-example.yaml")
	if err := os.WriteFile(yamlFile, []byte(yamlExample), 0644); err != nil {
		log.Fatalf("Failed to write YAML example: %v", err)
	}

	fmt.Printf("Generated YAML example: %s\n", yamlFile)
}

const yamlExample = `# Pipeline Example Configuration
# Tags every English article with a sequence number and stores it in batches

kind: Pipeline
version: v1
metadata:
  name: "news-import"
  description: "Tag and store English news articles"
tagger:
  auto_increment: "seq"
  ignore_undecodable: true
  input_mode: "raw"
  mutate:
    source: "kaggle"
  filter:
    required_fields:
      - "title"
      - "content"
    match:
      language: "en"
sink:
  enabled: true
  water_mark: 500
  pass_through: false
`
