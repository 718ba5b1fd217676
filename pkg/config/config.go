// Copyright The VTForge Authors
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

// Package config loads scenario files: YAML documents whose top-level keys
// name pipeline phases and whose values carry the per-phase settings.
// String values support ${ENV_NAME:default} environment overrides.
package config

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

type Config struct {
	conf *viper.Viper
}

// Load a scenario from file
func Load(file string) (*Config, error) {
	absolutePath, err := filepath.Abs(file)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(absolutePath)
	if err != nil {
		return nil, err
	}
	return Parse(content)
}

// Parse a scenario from raw YAML content
func Parse(content []byte) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, err
	}

	// env replace
	overrideEnv(v)

	return &Config{conf: v}, nil
}

// TopLevelKeys of the scenario, each naming a declared phase
func (c *Config) TopLevelKeys() []string {
	settings := c.conf.AllSettings()
	keys := make([]string, 0)
	for k := range settings {
		keys = append(keys, k)
	}
	return keys
}

// UnmarshalKey into the phase config value reference
func (c *Config) UnmarshalKey(key string, val interface{}) error {
	return c.conf.UnmarshalKey(key, val)
}
