/*
Package factory converts configuration files into engine types.

PURPOSE:
  Funding thresholds change with government policy, not with code. The
  factory reads them from JSON or YAML, checks the document against a JSON
  schema, overlays it on the published defaults and returns a validated
  funding.Thresholds. Course import files are handled the same way
  (courses.go).

THRESHOLDS DOCUMENT:
  {
    "age_bands": {
      "young_person_min": 16, "young_person_max": 18,
      "adult_min": 19, "young_adult_max": 24, "apprenticeship_min": 16
    },
    "universal_credit": {"single": 345, "joint": 552},
    "validation": {"min_age": 14, "max_age": 100, "max_monthly_income": 50000},
    "qualifying_benefits": ["jsa", "esa", "universal-credit"],
    "income_tested_benefit": "universal-credit",
    "higher_levels": ["3", "4+"]
  }

  Every key is optional. Missing keys keep their default value.

KEY FEATURES:
  - Schema validation (xeipuuv/gojsonschema) before conversion
  - JSON and YAML (gopkg.in/yaml.v3) input
  - Round trip: ToJSON(FromJSON(x)) == x

USAGE:
  th, err := factory.LoadThresholdsFile("config/thresholds.yaml")
  assessor, err := funding.NewAssessor(th)

SEE ALSO:
  - funding/thresholds.go: Thresholds type and defaults
  - courses.go: Course import
*/
package factory

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/warp/funding-engine/funding"
	"github.com/warp/funding-engine/generic"
)

// Format is a configuration file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrUnsupportedFormat is returned for file extensions other than .json, .yaml and .yml.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ThresholdsJSON is the file representation of funding.Thresholds.
type ThresholdsJSON struct {
	AgeBands            AgeBandsJSON        `json:"age_bands"`
	UniversalCredit     UniversalCreditJSON `json:"universal_credit"`
	Validation          ValidationJSON      `json:"validation"`
	QualifyingBenefits  []string            `json:"qualifying_benefits"`
	IncomeTestedBenefit string              `json:"income_tested_benefit"`
	HigherLevels        []string            `json:"higher_levels"`
}

type AgeBandsJSON struct {
	YoungPersonMin    int `json:"young_person_min"`
	YoungPersonMax    int `json:"young_person_max"`
	AdultMin          int `json:"adult_min"`
	YoungAdultMax     int `json:"young_adult_max"`
	ApprenticeshipMin int `json:"apprenticeship_min"`
}

// UniversalCreditJSON holds monthly take-home pay thresholds.
type UniversalCreditJSON struct {
	Single generic.Money `json:"single"`
	Joint  generic.Money `json:"joint"`
}

type ValidationJSON struct {
	MinAge           int           `json:"min_age"`
	MaxAge           int           `json:"max_age"`
	MaxMonthlyIncome generic.Money `json:"max_monthly_income"`
}

const thresholdsSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "definitions": {
    "age": {"type": "integer", "minimum": 0, "maximum": 150},
    "amount": {"type": "number", "minimum": 0}
  },
  "properties": {
    "age_bands": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "young_person_min": {"$ref": "#/definitions/age"},
        "young_person_max": {"$ref": "#/definitions/age"},
        "adult_min": {"$ref": "#/definitions/age"},
        "young_adult_max": {"$ref": "#/definitions/age"},
        "apprenticeship_min": {"$ref": "#/definitions/age"}
      }
    },
    "universal_credit": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "single": {"$ref": "#/definitions/amount"},
        "joint": {"$ref": "#/definitions/amount"}
      }
    },
    "validation": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "min_age": {"$ref": "#/definitions/age"},
        "max_age": {"$ref": "#/definitions/age"},
        "max_monthly_income": {"$ref": "#/definitions/amount"}
      }
    },
    "qualifying_benefits": {
      "type": "array",
      "minItems": 1,
      "uniqueItems": true,
      "items": {"enum": ["jsa", "esa", "universal-credit", "pip", "other"]}
    },
    "income_tested_benefit": {"enum": ["", "jsa", "esa", "universal-credit", "pip", "other"]},
    "higher_levels": {
      "type": "array",
      "minItems": 1,
      "uniqueItems": true,
      "items": {"enum": ["none", "1", "2", "3", "4+"]}
    }
  }
}`

// =============================================================================
// THRESHOLDS FACTORY
// =============================================================================

// ThresholdsFactory converts threshold documents to funding.Thresholds.
type ThresholdsFactory struct {
	schema *gojsonschema.Schema
}

// NewThresholdsFactory compiles the embedded schema.
func NewThresholdsFactory() (*ThresholdsFactory, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(thresholdsSchema))
	if err != nil {
		return nil, fmt.Errorf("compile thresholds schema: %w", err)
	}
	return &ThresholdsFactory{schema: schema}, nil
}

// Parse decodes, schema-checks and converts a thresholds document.
func (f *ThresholdsFactory) Parse(data []byte, format Format) (funding.Thresholds, error) {
	doc, err := decodeDocument(data, format)
	if err != nil {
		return funding.Thresholds{}, err
	}
	if err := validateDocument(f.schema, doc); err != nil {
		return funding.Thresholds{}, err
	}

	normalized, err := json.Marshal(doc)
	if err != nil {
		return funding.Thresholds{}, fmt.Errorf("failed to normalize thresholds: %w", err)
	}
	tj := f.ToJSON(funding.DefaultThresholds())
	if err := json.Unmarshal(normalized, &tj); err != nil {
		return funding.Thresholds{}, fmt.Errorf("failed to parse thresholds: %w", err)
	}
	return f.FromJSON(tj)
}

// FromJSON converts and validates.
func (f *ThresholdsFactory) FromJSON(tj ThresholdsJSON) (funding.Thresholds, error) {
	th := funding.Thresholds{
		YoungPersonMinAge:     tj.AgeBands.YoungPersonMin,
		YoungPersonMaxAge:     tj.AgeBands.YoungPersonMax,
		AdultMinAge:           tj.AgeBands.AdultMin,
		YoungAdultMaxAge:      tj.AgeBands.YoungAdultMax,
		ApprenticeshipMinAge:  tj.AgeBands.ApprenticeshipMin,
		UniversalCreditSingle: tj.UniversalCredit.Single,
		UniversalCreditJoint:  tj.UniversalCredit.Joint,
		MinValidAge:           tj.Validation.MinAge,
		MaxValidAge:           tj.Validation.MaxAge,
		MaxMonthlyIncome:      tj.Validation.MaxMonthlyIncome,
		IncomeTestedBenefit:   funding.Benefit(tj.IncomeTestedBenefit),
	}
	for _, b := range tj.QualifyingBenefits {
		th.QualifyingBenefits = append(th.QualifyingBenefits, funding.Benefit(b))
	}
	for _, l := range tj.HigherLevels {
		th.HigherLevels = append(th.HigherLevels, funding.QualificationLevel(l))
	}
	if err := th.Validate(); err != nil {
		return funding.Thresholds{}, err
	}
	return th, nil
}

// ToJSON converts thresholds to their file representation.
func (f *ThresholdsFactory) ToJSON(th funding.Thresholds) ThresholdsJSON {
	tj := ThresholdsJSON{
		AgeBands: AgeBandsJSON{
			YoungPersonMin:    th.YoungPersonMinAge,
			YoungPersonMax:    th.YoungPersonMaxAge,
			AdultMin:          th.AdultMinAge,
			YoungAdultMax:     th.YoungAdultMaxAge,
			ApprenticeshipMin: th.ApprenticeshipMinAge,
		},
		UniversalCredit: UniversalCreditJSON{
			Single: th.UniversalCreditSingle,
			Joint:  th.UniversalCreditJoint,
		},
		Validation: ValidationJSON{
			MinAge:           th.MinValidAge,
			MaxAge:           th.MaxValidAge,
			MaxMonthlyIncome: th.MaxMonthlyIncome,
		},
		IncomeTestedBenefit: string(th.IncomeTestedBenefit),
	}
	for _, b := range th.QualifyingBenefits {
		tj.QualifyingBenefits = append(tj.QualifyingBenefits, string(b))
	}
	for _, l := range th.HigherLevels {
		tj.HigherLevels = append(tj.HigherLevels, string(l))
	}
	return tj
}

// LoadThresholdsFile reads thresholds from a .json, .yaml or .yml file.
func LoadThresholdsFile(path string) (funding.Thresholds, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return funding.Thresholds{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return funding.Thresholds{}, fmt.Errorf("read thresholds: %w", err)
	}
	f, err := NewThresholdsFactory()
	if err != nil {
		return funding.Thresholds{}, err
	}
	return f.Parse(data, format)
}

// =============================================================================
// DOCUMENT HELPERS
// =============================================================================

func decodeDocument(data []byte, format Format) (interface{}, error) {
	var doc interface{}
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if doc == nil {
		doc = map[string]interface{}{}
	}
	return doc, nil
}

func validateDocument(schema *gojsonschema.Schema, doc interface{}) error {
	result, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("%w: %v", generic.ErrInvalidConfig, err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("%w: %s", generic.ErrInvalidConfig, strings.Join(errs, "; "))
	}
	return nil
}
