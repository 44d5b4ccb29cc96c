// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package plutus

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// MachineConfig bundles the settings needed to evaluate scripts: the language, an
// optional cost model parameter array and the budgets scripts run under
type MachineConfig struct {
	Language string `yaml:"language"`
	// CostModel is a parameter array in the layout of the language. The mainnet
	// calibration is used when it is empty
	CostModel []int64 `yaml:"costModel,omitempty"`
	Budget    *Budget `yaml:"budget,omitempty"`
	// Budgets holds named budgets, such as per-script limits used in tests
	Budgets map[string]Budget `yaml:"budgets,omitempty"`
}

// LoadMachineConfig reads a machine config from YAML
func LoadMachineConfig(r io.Reader) (*MachineConfig, error) {
	cfg := &MachineConfig{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("error parsing machine config: %w", err)
	}
	if cfg.Language == "" {
		cfg.Language = LanguageV3.String()
	}
	if _, err := ParseLanguage(cfg.Language); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseLanguage returns the language with the given name, such as PlutusV2
func ParseLanguage(name string) (Language, error) {
	for _, lang := range []Language{LanguageV1, LanguageV2, LanguageV3} {
		if lang.String() == name {
			return lang, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown language %q", ErrCostModel, name)
}

// CostModelFor builds the configured cost model
func (c *MachineConfig) CostModelFor() (*CostModel, error) {
	lang, err := ParseLanguage(c.Language)
	if err != nil {
		return nil, err
	}
	if len(c.CostModel) == 0 {
		return DefaultCostModel(lang), nil
	}
	return NewCostModel(lang, c.CostModel)
}

// NamedBudget returns the budget registered under name, falling back to the default
// budget of the config
func (c *MachineConfig) NamedBudget(name string) Budget {
	if b, ok := c.Budgets[name]; ok {
		return b
	}
	if c.Budget != nil {
		return *c.Budget
	}
	return DefaultBudget
}

// NewMachine returns a machine using the configured cost model and the budget
// registered under name
func (c *MachineConfig) NewMachine(name string, opts ...MachineOptionFunc) (*Machine, error) {
	cm, err := c.CostModelFor()
	if err != nil {
		return nil, err
	}
	return NewMachine(cm, c.NamedBudget(name), opts...), nil
}
