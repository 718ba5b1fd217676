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
	"bytes"
	"os"
	"reflect"
	"testing"

	"github.com/spf13/viper"
)

func TestOverrideEnv(t *testing.T) {
	tests := []struct {
		name   string
		env    map[string]string
		file   string
		result map[string]interface{}
	}{
		{
			name: "no-env",
			env:  nil,
			file: "testdata/override-no-env.yaml",
			result: map[string]interface{}{
				"triple":   "x86_64-offsettable",
				"cache":    128,
				"clobbers": []interface{}{"ax", "cx"},
				"report": map[string]interface{}{
					"output": "plans.txt",
					"indent": 2,
				},
				"functions": []interface{}{
					map[string]interface{}{
						"name": "foo",
					},
				},
			},
		},
		{
			name: "full-env",
			env: map[string]string{
				"VTFORGE_TEST_TRIPLE":          "x86_64-vbtable",
				"VTFORGE_TEST_CACHE":           "64",
				"VTFORGE_TEST_CLOBBER_1":       "dx",
				"VTFORGE_TEST_CLOBBER_NOT_SET": "",
				"VTFORGE_TEST_OUTPUT":          "report.txt",
				"VTFORGE_TEST_FUNCTION":        "bar",
			},
			file: "testdata/override-env.yaml",
			result: map[string]interface{}{
				"triple":   "x86_64-vbtable",
				"cache":    "64",
				"clobbers": []interface{}{"dx", "cx"},
				"report": map[string]interface{}{
					"output": "report.txt",
					"indent": "2",
				},
				"functions": []interface{}{
					map[string]interface{}{
						"name": "bar",
					},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// load env
			for k, v := range tt.env {
				os.Setenv(k, v)
			}

			// load scenario content
			v := viper.New()
			v.SetConfigType("yaml")
			content, err := os.ReadFile(tt.file)
			if err != nil {
				t.Fatalf("read scenario file error: %v", err)
			}
			if err := v.ReadConfig(bytes.NewReader(content)); err != nil {
				t.Fatalf("read scenario error: %v", err)
			}

			// environment override
			overrideEnv(v)

			// verify result
			realSettings := v.AllSettings()
			if !reflect.DeepEqual(realSettings, tt.result) {
				t.Fatalf("validate scenario failure: \n excepted: \n%v\n actual: \n%v", tt.result, realSettings)
			}
		})
	}
}
