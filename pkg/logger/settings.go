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
	"github.com/sirupsen/logrus"
	"github.com/xyproto/env/v2"
)

// LevelEnvName overrides the default level before SetupLogger runs
const LevelEnvName = "VTFORGE_LOG_LEVEL"

type Config struct {
	Level string `mapstructure:"level"`
}

func updateLogger(log *logrus.Logger, config *Config) error {
	if config == nil || config.Level == "" {
		return nil
	}
	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	return nil
}

func initializeDefaultLogger() *logrus.Logger {
	l := logrus.New()
	level, err := logrus.ParseLevel(env.Str(LevelEnvName, "info"))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
		DisableColors: true,
	})
	return l
}
