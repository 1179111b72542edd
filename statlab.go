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

// Package statlab 提供統計核心的「組裝入口（assembler）」與便利操作。
//
// Lab 把兩個地基組在一起，並提供抽樣與比較的入口：
//  1. PRNGFactory：亂數核心工廠，保證可重現（reproducible）與可審計（auditable）。
//  2. 分佈描述（params.Distribution）：宣告要抽樣的分佈與參數。
//
// 設計重點：
//   - seed 是「出生入口」：呼叫端不給 seed 時由 crypto/rand 產生，並回傳給呼叫端留存，
//     同一份參數 + 同一個 seed 應產生一致的序列。
//   - 若要在任意時間點完整重現，請使用 Core 的 Snapshot/Restore（以 []byte 交換狀態）。
//   - Lab 本身無狀態可變更，可被多個 goroutine 同時持有；
//     但它發出的 *core.Core 單一實例不可並行使用。
package statlab

import (
	"crypto/rand"
	"math/big"

	"github.com/zintix-labs/statlab/errs"
	"github.com/zintix-labs/statlab/params"
	"github.com/zintix-labs/statlab/sdk/core"
	"github.com/zintix-labs/statlab/sdk/dist"
)

// Lab 是組裝器：持有 PRNG 工廠，發出可重現的抽樣核心與比較操作。
type Lab struct {
	cf core.PRNGFactory
}

// New 建立一個 Lab instance。cf 不能為 nil：沒有 RNG 工廠就無法建立可重現/可審計的核心。
func New(cf core.PRNGFactory) (*Lab, error) {
	if cf == nil {
		return nil, errs.NewFatal("core factory required")
	}
	return &Lab{cf: cf}, nil
}

// NewAuto 以預設的 Twister 工廠建立 Lab。
func NewAuto() *Lab {
	return &Lab{cf: core.Default()}
}

// AutoSeed 用 crypto/rand 產生一個出生 seed。
//
// 這裡使用 crypto/rand 是為了讓各次執行的起點彼此獨立，
// 同時保留可追溯性：seed 一律回傳給呼叫端記錄。
func AutoSeed() (uint32, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1<<32))
	if err != nil {
		return 0, errs.Wrap(err, "new crypto seed error in go std lib")
	}
	return uint32(n.Uint64()), nil
}

// NewRand 以指定 seed 建出抽樣核心。
func (l *Lab) NewRand(seed uint32) *core.Core {
	return core.New(l.cf.New(seed))
}

// NewRandAuto 以 crypto/rand 產生 seed 建出抽樣核心，並回傳 seed 供記錄。
func (l *Lab) NewRandAuto() (*core.Core, uint32, error) {
	seed, err := AutoSeed()
	if err != nil {
		return nil, 0, err
	}
	return l.NewRand(seed), seed, nil
}

// Draw 依分佈描述抽 n 個樣本。
//
// 只處理封閉式分佈（uniform/normal/poisson）；
// model 分佈請改用 NewModelSampler（需要模型樣本）。
func (l *Lab) Draw(d *params.Distribution, n int, rnd *core.Core) ([]float64, error) {
	if d == nil {
		return nil, errs.Invalidf("statlab: distribution required")
	}
	if n < 1 {
		return nil, errs.Invalidf("statlab: draw count must be >= 1, got %d", n)
	}
	out := make([]float64, n)
	switch d.Kind {
	case params.KindUniform:
		for i := range out {
			out[i] = rnd.Float64Range(d.Min, d.Max)
		}
	case params.KindNormal:
		for i := range out {
			out[i] = rnd.Normal(d.Mean, d.Stddev)
		}
	case params.KindPoisson:
		for i := range out {
			k, err := rnd.Poisson(d.Lambda)
			if err != nil {
				return nil, err
			}
			out[i] = float64(k)
		}
	case params.KindModel:
		return nil, errs.Unsupportedf("statlab: model distribution needs samples, use NewModelSampler")
	default:
		return nil, errs.Invalidf("statlab: unknown distribution kind: %q", d.Kind)
	}
	return out, nil
}

// NewModelSampler 從模型樣本建反變換抽樣器（內部持有獨立的 Twister）。
func (l *Lab) NewModelSampler(model []float64, seed uint32) (*dist.Sampler, error) {
	return dist.NewSamplerFromSamples(model, seed)
}

// CompareSamples 把兩組原始樣本建成經驗分佈後比較，回傳距離結果。
func (l *Lab) CompareSamples(a, b []float64) (dist.Result, error) {
	da, err := dist.NewDist1D(a)
	if err != nil {
		return dist.Result{}, err
	}
	db, err := dist.NewDist1D(b)
	if err != nil {
		return dist.Result{}, err
	}
	return dist.Compare(da, db), nil
}

// CompareSamples2D 把兩組成對座標樣本建成二維經驗分佈後比較。
func (l *Lab) CompareSamples2D(a, b [][]float64) (dist.Result, error) {
	da, err := dist.NewDist2D(a)
	if err != nil {
		return dist.Result{}, err
	}
	db, err := dist.NewDist2D(b)
	if err != nil {
		return dist.Result{}, err
	}
	return dist.Compare2D(da, db)
}
