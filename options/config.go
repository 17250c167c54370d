package options

import (
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/pelletier/go-toml/v2"

	"github.com/richinsley/gowarp/params"
)

// ParameterConfig overrides one declared parameter. Value may be a number,
// a boolean or a string such as a field name.
type ParameterConfig struct {
	Min     *float64 `toml:"min"`
	Max     *float64 `toml:"max"`
	Default *float64 `toml:"default"`
	Step    *float64 `toml:"step"`
	Value   any      `toml:"value"`
}

// Config is the parameter file:
//
//	[parameters.displacementScale]
//	max = 0.1
//	value = 0.05
//
//	[parameters.activeField]
//	value = "stripe"
type Config struct {
	Parameters map[string]ParameterConfig `toml:"parameters"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

func ParseConfig(data []byte) (*Config, error) {
	var c Config
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &c, nil
}

// Specs applies range overrides to base and returns the result. Every
// named parameter must exist in base.
func (c *Config) Specs(base []params.Spec) ([]params.Spec, error) {
	out := append([]params.Spec(nil), base...)
	index := make(map[string]int, len(out))
	for i, s := range out {
		index[s.Name] = i
	}
	for _, name := range c.names() {
		i, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("config %q: %w", name, params.ErrUnknownParameter)
		}
		pc := c.Parameters[name]
		s := &out[i]
		if pc.Min != nil {
			s.Min = *pc.Min
		}
		if pc.Max != nil {
			s.Max = *pc.Max
		}
		if pc.Step != nil {
			s.Step = *pc.Step
		}
		if pc.Default != nil {
			s.Default = *pc.Default
		}
		if s.Min > s.Max || math.IsNaN(s.Min) || math.IsNaN(s.Max) {
			return nil, fmt.Errorf("config %q: min %v above max %v", name, s.Min, s.Max)
		}
		s.Default = s.Clamp(s.Default)
	}
	return out, nil
}

// Edits lists the configured values in name order.
func (c *Config) Edits() ([]params.Edit, error) {
	var edits []params.Edit
	for _, name := range c.names() {
		switch v := c.Parameters[name].Value.(type) {
		case nil:
		case int64:
			edits = append(edits, params.Edit{Name: name, Value: float64(v)})
		case float64:
			edits = append(edits, params.Edit{Name: name, Value: v})
		case bool:
			edits = append(edits, params.Edit{Name: name, Text: fmt.Sprint(v)})
		case string:
			edits = append(edits, params.Edit{Name: name, Text: v})
		default:
			return nil, fmt.Errorf("config %q: unsupported value %T", name, v)
		}
	}
	return edits, nil
}

// Post queues the configured values on in.
func (c *Config) Post(in *params.Inbox) error {
	edits, err := c.Edits()
	if err != nil {
		return err
	}
	for _, e := range edits {
		if e.Text != "" {
			in.PostText(e.Name, e.Text)
		} else {
			in.Post(e.Name, e.Value)
		}
	}
	return nil
}

func (c *Config) names() []string {
	names := make([]string, 0, len(c.Parameters))
	for n := range c.Parameters {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
