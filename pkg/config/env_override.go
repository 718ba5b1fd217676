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

package config

import (
	"os"
	"regexp"

	"github.com/spf13/viper"
)

var envRegularRegex = regexp.MustCompile(`\${(?P<ENV>[_A-Z0-9]+):(?P<DEF>.*)}`)

func overrideEnv(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		switch val := v.Get(key).(type) {
		case string:
			v.Set(key, overrideString(val))
		case []interface{}:
			v.Set(key, overrideSlice(val))
		}
	}
}

func overrideString(val string) string {
	groups := envRegularRegex.FindStringSubmatch(val)
	if len(groups) == 0 {
		return val
	}

	if v := os.Getenv(groups[1]); v != "" {
		return v
	}
	return groups[2]
}

func overrideSlice(val []interface{}) []interface{} {
	res := make([]interface{}, 0, len(val))
	for _, perValue := range val {
		switch v := perValue.(type) {
		case string:
			res = append(res, overrideString(v))
		case map[interface{}]interface{}:
			res = append(res, overrideKeyedMap(v))
		case map[string]interface{}:
			res = append(res, overrideMap(v))
		default:
			res = append(res, v)
		}
	}
	return res
}

func overrideKeyedMap(val map[interface{}]interface{}) map[string]interface{} {
	cfg := make(map[string]interface{})
	for k, v := range val {
		if name, ok := k.(string); ok {
			cfg[name] = v
		}
	}
	return overrideMap(cfg)
}

func overrideMap(val map[string]interface{}) map[string]interface{} {
	res := make(map[string]interface{})
	for k, v := range val {
		switch d := v.(type) {
		case string:
			res[k] = overrideString(d)
		case []interface{}:
			res[k] = overrideSlice(d)
		case map[string]interface{}:
			res[k] = overrideMap(d)
		case map[interface{}]interface{}:
			res[k] = overrideKeyedMap(d)
		default:
			res[k] = d
		}
	}
	return res
}
