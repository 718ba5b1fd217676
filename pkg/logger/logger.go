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

package logger

import (
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	root = initializeDefaultLogger()
	once sync.Once
)

type Logger struct {
	*logrus.Entry
	scope []string
}

// SetupLogger when the compile session boots
func SetupLogger(config *Config) (err error) {
	once.Do(func() {
		err = updateLogger(root, config)
	})
	if err != nil {
		return err
	}
	return nil
}

// GetLogger for the scope, usually a package or pipeline phase name
func GetLogger(scope ...string) *Logger {
	scopeString := ""
	if len(scope) > 0 {
		scopeString = strings.Join(scope, ".")
	}
	return &Logger{Entry: root.WithField("scope", scopeString), scope: scope}
}
