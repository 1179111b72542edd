// Copyright 2025 Zintix Labs
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

// Package params 定義實驗設定檔（YAML/JSON）的結構與基本檢查。
package params

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/zintix-labs/statlab/errs"
)

// 支援的分佈種類
const (
	KindUniform = "uniform"
	KindNormal  = "normal"
	KindPoisson = "poisson"
	KindModel   = "model" // 由模型樣本檔建經驗分佈後做反變換抽樣
)

// Distribution 描述一個可抽樣的分佈。
type Distribution struct {
	Kind      string  `yaml:"kind"                 json:"kind"`
	Min       float64 `yaml:"min,omitempty"        json:"min,omitempty"`
	Max       float64 `yaml:"max,omitempty"        json:"max,omitempty"`
	Mean      float64 `yaml:"mean,omitempty"       json:"mean,omitempty"`
	Stddev    float64 `yaml:"stddev,omitempty"     json:"stddev,omitempty"`
	Lambda    float64 `yaml:"lambda,omitempty"     json:"lambda,omitempty"`
	ModelFile string  `yaml:"model_file,omitempty" json:"model_file,omitempty"`
}

// Experiment 包含跑一次抽樣/比較實驗所需的所有設定。
type Experiment struct {
	Name    string        `yaml:"name"               json:"name"`
	Seed    uint32        `yaml:"seed"               json:"seed"` // 0 表示由系統產生
	Draws   int           `yaml:"draws"              json:"draws"`
	Source  Distribution  `yaml:"source"             json:"source"`
	Against *Distribution `yaml:"against,omitempty"  json:"against,omitempty"`
}

// GetExperimentByYAML 讀取 YAML 設定並執行基本檢查後回傳。
func GetExperimentByYAML(data []byte) (*Experiment, error) {
	exp := &Experiment{}
	if err := yaml.Unmarshal(data, exp); err != nil {
		return nil, errs.Wrap(err, "failed to unmarshall yaml")
	}
	if err := exp.valid(); err != nil {
		return nil, err
	}
	return exp, nil
}

// GetExperimentByJSON 讀取 JSON 設定並執行基本檢查後回傳。
func GetExperimentByJSON(data []byte) (*Experiment, error) {
	exp := &Experiment{}
	if err := json.Unmarshal(data, exp); err != nil {
		return nil, errs.Wrap(err, "can not unmarshall json byte")
	}
	if err := exp.valid(); err != nil {
		return nil, err
	}
	return exp, nil
}

// valid 執行最基本的設定檔檢查，如需更多驗證可在此擴充。
func (e *Experiment) valid() error {
	if e.Name == "" {
		return errs.NewFatal("experiment name required")
	}
	if e.Draws < 1 {
		return errs.NewFatal(fmt.Sprintf("experiment: %s err:draws must be >= 1", e.Name))
	}
	if err := e.Source.Valid(); err != nil {
		return errs.Wrap(err, fmt.Sprintf("experiment: %s err:invalid source", e.Name))
	}
	if e.Against != nil {
		if err := e.Against.Valid(); err != nil {
			return errs.Wrap(err, fmt.Sprintf("experiment: %s err:invalid against", e.Name))
		}
	}
	return nil
}

// Valid 檢查分佈描述的參數範圍；server 端收到的 DTO 也會走這裡。
func (d *Distribution) Valid() error {
	switch d.Kind {
	case KindUniform:
		if d.Min >= d.Max {
			return errs.NewFatal(fmt.Sprintf("uniform needs min < max, got [%v, %v)", d.Min, d.Max))
		}
	case KindNormal:
		if d.Stddev <= 0 {
			return errs.NewFatal(fmt.Sprintf("normal needs stddev > 0, got %v", d.Stddev))
		}
	case KindPoisson:
		if d.Lambda < 0 || d.Lambda > 2e9 {
			return errs.NewFatal(fmt.Sprintf("poisson lambda out of range: %v", d.Lambda))
		}
	case KindModel:
		if d.ModelFile == "" {
			return errs.NewFatal("model distribution needs model_file")
		}
	default:
		return errs.NewFatal(fmt.Sprintf("unknown distribution kind: %q", d.Kind))
	}
	return nil
}
