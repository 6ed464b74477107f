package rxn

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// SpeciesConfig declares a species up front. Declaration is optional;
// species are otherwise created on first mention in a reaction or the
// initial-count map.
type SpeciesConfig struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// RateConfig is a rate in a model file: either a bare number (LMA constant)
// or a string holding a rate expression.
type RateConfig struct {
	spec RateSpec
	set  bool
}

// Spec returns the rate as a RateSpec.
func (r *RateConfig) Spec() RateSpec { return r.spec }

// IsSet reports whether the config carried a rate at all.
func (r *RateConfig) IsSet() bool { return r != nil && r.set }

// LMARate wraps an LMA constant for config construction.
func LMARate(k float64) RateConfig { return RateConfig{spec: LMA(k), set: true} }

// ExprRateConfig wraps expression text for config construction.
func ExprRateConfig(src string) RateConfig { return RateConfig{spec: ExprRate(src), set: true} }

func (r *RateConfig) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return nil
	}
	if strings.HasPrefix(s, "\"") {
		var src string
		if err := json.Unmarshal(data, &src); err != nil {
			return err
		}
		r.spec = ExprRate(src)
		r.set = true
		return nil
	}
	var k float64
	if err := json.Unmarshal(data, &k); err != nil {
		return fmt.Errorf("rate must be a number or an expression string: %w", err)
	}
	r.spec = LMA(k)
	r.set = true
	return nil
}

func (r RateConfig) MarshalJSON() ([]byte, error) {
	if !r.set {
		return []byte("null"), nil
	}
	if r.spec.Kind == RateLMA {
		return json.Marshal(r.spec.K)
	}
	return json.Marshal(r.spec.Src)
}

func (r *RateConfig) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("rate must be a number or an expression string")
	}
	switch value.Tag {
	case "!!int", "!!float":
		k, err := strconv.ParseFloat(value.Value, 64)
		if err != nil {
			return fmt.Errorf("invalid rate number %q: %w", value.Value, err)
		}
		r.spec = LMA(k)
	default:
		r.spec = ExprRate(value.Value)
	}
	r.set = true
	return nil
}

func (r RateConfig) MarshalYAML() (any, error) {
	if !r.set {
		return nil, nil
	}
	if r.spec.Kind == RateLMA {
		return r.spec.K, nil
	}
	return r.spec.Src, nil
}

// ReactionConfig declares one reaction. ReverseRate, when present, adds the
// reverse directed reaction with its own rate.
type ReactionConfig struct {
	Name        string      `json:"name,omitempty" yaml:"name,omitempty"`
	Rate        RateConfig  `json:"rate" yaml:"rate"`
	Reactants   []string    `json:"reactants" yaml:"reactants"`
	Products    []string    `json:"products" yaml:"products"`
	ReverseRate *RateConfig `json:"reverse_rate,omitempty" yaml:"reverse_rate,omitempty"`
}

// RunConfig carries default run settings in a model file; CLI flags
// override them. The server's run endpoint does not read them.
type RunConfig struct {
	Tmax   float64  `json:"tmax" yaml:"tmax"`
	Steps  int      `json:"steps" yaml:"steps"`
	Seed   *uint64  `json:"seed,omitempty" yaml:"seed,omitempty"`
	Sparse bool     `json:"sparse,omitempty" yaml:"sparse,omitempty"`
	Record []string `json:"record,omitempty" yaml:"record,omitempty"`
	Events bool     `json:"events,omitempty" yaml:"events,omitempty"`
}

// ModelConfig is the declarative form of a model, decodable from JSON and
// YAML.
type ModelConfig struct {
	Name       string             `json:"name" yaml:"name"`
	Species    []SpeciesConfig    `json:"species,omitempty" yaml:"species,omitempty"`
	Parameters map[string]float64 `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Reactions  []ReactionConfig   `json:"reactions" yaml:"reactions"`
	Init       map[string]int64   `json:"init,omitempty" yaml:"init,omitempty"`
	Run        *RunConfig         `json:"run,omitempty" yaml:"run,omitempty"`
}

// DecodeModelConfigJSON decodes a JSON model file.
func DecodeModelConfigJSON(data []byte) (ModelConfig, error) {
	var cfg ModelConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return ModelConfig{}, fmt.Errorf("parsing model JSON: %w", err)
	}
	return cfg, nil
}

// DecodeModelConfigYAML decodes a YAML model file.
func DecodeModelConfigYAML(data []byte) (ModelConfig, error) {
	var cfg ModelConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return ModelConfig{}, fmt.Errorf("parsing model YAML: %w", err)
	}
	return cfg, nil
}

// LoadModelConfig reads and decodes a model file, picking the format from
// the extension (.json, .yaml, .yml).
func LoadModelConfig(path string) (ModelConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ModelConfig{}, fmt.Errorf("reading model file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return DecodeModelConfigJSON(data)
	case ".yaml", ".yml":
		return DecodeModelConfigYAML(data)
	}
	return ModelConfig{}, fmt.Errorf("%w: unsupported model file extension %q", ErrInvalidArgument, filepath.Ext(path))
}
