package rag

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/18vikastg/onebox/core/domain"

	"gopkg.in/yaml.v3"
)

// templateFile is the on-disk layout of TEMPLATES_FILE:
//
//	templates:
//	  - scenario_id: pricing_request
//	    pattern: "pricing, quote, cost"
//	    context: "Pricing follow-up"
//	    template: "Happy to share pricing.\n\n{name}"
//	    category: business
//	    urgency: high
//	    confidence: 0.8
type templateFile struct {
	Templates []domain.ReplyTemplateEntry `yaml:"templates"`
}

// LoadTemplatesFile reads extra templates from a YAML file and validates each entry.
func LoadTemplatesFile(path string) ([]domain.ReplyTemplateEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read templates file: %w", err)
	}
	return ParseTemplates(data)
}

// ParseTemplates decodes the YAML template layout. Unknown keys are rejected.
func ParseTemplates(data []byte) ([]domain.ReplyTemplateEntry, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var file templateFile
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode templates: %w", err)
	}
	for i := range file.Templates {
		if file.Templates[i].BaseConfidence == 0 {
			file.Templates[i].BaseConfidence = defaultUserConfidence
		}
		if err := ValidateEntry(&file.Templates[i]); err != nil {
			return nil, err
		}
	}
	return file.Templates, nil
}
