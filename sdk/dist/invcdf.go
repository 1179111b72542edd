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

package dist

import (
	"sort"

	"github.com/zintix-labs/statlab/errs"
	"github.com/zintix-labs/statlab/sdk/core"
)

// invCDFAnchorGap 是機率 0 錨點與最小觀測值之間的距離。
const invCDFAnchorGap = 1e-6

// InvCDF 是累積機率 → 值的單調分段線性內插函數，
// 由經驗分佈建構，含一個略低於最小值、機率為 0 的合成錨點。建構後不可變。
type InvCDF struct {
	ps []float64 // 嚴格遞增的累積機率，ps[0] == 0
	vs []float64 // 對應的值，嚴格遞增
}

// NewInvCDF 從一維經驗分佈建構反累積分佈函數。
// 累積表必須嚴格單調；否則為 PreconditionViolation。
func NewInvCDF(d *Dist1D) (*InvCDF, error) {
	ps := make([]float64, 0, d.Len()+1)
	vs := make([]float64, 0, d.Len()+1)
	ps = append(ps, 0)
	vs = append(vs, d.keys[0]-invCDFAnchorGap)
	for i := range d.keys {
		ps = append(ps, d.cum[i])
		vs = append(vs, d.keys[i])
	}
	for i := 1; i < len(ps); i++ {
		if ps[i] <= ps[i-1] || vs[i] <= vs[i-1] {
			return nil, errs.Preconditionf("dist: cumulative table not strictly monotonic at entry %d", i)
		}
	}
	return &InvCDF{ps: ps, vs: vs}, nil
}

// NewInvCDFFromSamples 先從原始樣本建經驗分佈，再建反累積分佈函數。
func NewInvCDFFromSamples(samples []float64) (*InvCDF, error) {
	d, err := NewDist1D(samples)
	if err != nil {
		return nil, err
	}
	return NewInvCDF(d)
}

// Eval 把累積機率 u 映成值。u 夾限在 [0, 1]；
// 落在最後一個斷點之後時回傳最大值。
func (f *InvCDF) Eval(u float64) float64 {
	if u <= f.ps[0] {
		return f.vs[0]
	}
	last := len(f.ps) - 1
	if u >= f.ps[last] {
		return f.vs[last]
	}
	// ps[i-1] < u <= ps[i]
	i := sort.SearchFloat64s(f.ps, u)
	if f.ps[i] == u {
		return f.vs[i]
	}
	t := (u - f.ps[i-1]) / (f.ps[i] - f.ps[i-1])
	return f.vs[i-1] + t*(f.vs[i]-f.vs[i-1])
}

// Sampler 以反變換抽樣從給定的經驗分佈產生新樣本。
// 內部獨佔一個 Twister；不可並行使用。
type Sampler struct {
	tw     *core.Twister
	rnd    *core.Core
	interp *InvCDF
}

// NewSampler 從經驗分佈建構抽樣器，seed 決定整條輸出序列。
func NewSampler(d *Dist1D, seed uint32) (*Sampler, error) {
	interp, err := NewInvCDF(d)
	if err != nil {
		return nil, err
	}
	tw := core.NewTwister(seed)
	return &Sampler{tw: tw, rnd: core.New(tw), interp: interp}, nil
}

// NewSamplerFromSamples 從模型樣本序列建構抽樣器。
func NewSamplerFromSamples(samples []float64, seed uint32) (*Sampler, error) {
	d, err := NewDist1D(samples)
	if err != nil {
		return nil, err
	}
	return NewSampler(d, seed)
}

// Draw 抽一個 [0,1) 均勻亂數並映過內插函數。
func (s *Sampler) Draw() float64 {
	return s.interp.Eval(s.rnd.Float64())
}

// Reseed 重設內部生成器，之後的輸出序列完全由新種子決定。
func (s *Sampler) Reseed(seed uint32) {
	s.tw.Reseed(seed)
}

// Randomize 以目前時間重設內部生成器。
func (s *Sampler) Randomize() {
	s.tw.Randomize()
}

// Seed 回傳內部生成器的出生 seed。
func (s *Sampler) Seed() uint32 {
	return s.tw.Seed()
}

// Snapshot 匯出內部生成器狀態；配合 Restore 可在任意時點回放。
func (s *Sampler) Snapshot() ([]byte, error) {
	return s.tw.Snapshot()
}

// Restore 以先前匯出的狀態還原內部生成器。
func (s *Sampler) Restore(data []byte) error {
	return s.tw.Restore(data)
}
