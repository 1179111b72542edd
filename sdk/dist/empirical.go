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

// Package dist 提供經驗分佈（empirical distribution）的建構、比較與反函數抽樣。
//
// Dist1D / Dist2D 一經建構即不可變；Compare 系列是純函式，回傳自足的 Result，
// 呼叫順序不影響任何共享狀態。
package dist

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/zintix-labs/statlab/errs"
)

// Dist1D 是一維經驗分佈：依鍵值升冪排列的累積機率表。
// 建構完成後不可變，累積質量在最大鍵值處到達 1。
type Dist1D struct {
	keys []float64 // 升冪、去重
	cum  []float64 // 對應鍵值的累積機率
	n    int       // 建表時的有效樣本數
}

// NewDist1D 從原始樣本序列建構經驗分佈。
// 非有限值（NaN、±Inf）靜默略過；沒有任何有效樣本時為 InvalidArgument。
func NewDist1D(samples []float64) (*Dist1D, error) {
	hist := make(map[float64]int, len(samples))
	n := 0
	for _, v := range samples {
		if !isFinite(v) {
			continue
		}
		hist[v]++
		n++
	}
	if n == 0 {
		return nil, errs.Invalidf("dist: no finite samples")
	}
	return fromHistogram(hist, n), nil
}

// NewDist1DFromDiscreteHisto 把離散整數直方圖（索引即事件值）轉成經驗分佈。
// 負的計數為 InvalidArgument。
func NewDist1DFromDiscreteHisto(counts []int) (*Dist1D, error) {
	hist := make(map[float64]int, len(counts))
	n := 0
	for i, c := range counts {
		if c < 0 {
			return nil, errs.Invalidf("dist: negative count %d at bin %d", c, i)
		}
		hist[float64(i)] = c
		n += c
	}
	if n == 0 {
		return nil, errs.Invalidf("dist: empty histogram")
	}
	return fromHistogram(hist, n), nil
}

// NewDist1DFromPairs 從值→計數成對序列建構經驗分佈。
// 兩序列長度不一致為 InvalidArgument；重複的值會把計數累加。
func NewDist1DFromPairs(values []float64, counts []int) (*Dist1D, error) {
	if len(values) != len(counts) {
		return nil, errs.Invalidf("dist: values/counts length mismatch: %d vs %d", len(values), len(counts))
	}
	hist := make(map[float64]int, len(values))
	n := 0
	for i, v := range values {
		if counts[i] < 0 {
			return nil, errs.Invalidf("dist: negative count %d for value %v", counts[i], v)
		}
		hist[v] += counts[i]
		n += counts[i]
	}
	if n == 0 {
		return nil, errs.Invalidf("dist: empty histogram")
	}
	return fromHistogram(hist, n), nil
}

// fromHistogram 把計數表排序成升冪鍵值後累積出機率表。
func fromHistogram(hist map[float64]int, n int) *Dist1D {
	keys := make([]float64, 0, len(hist))
	for k := range hist {
		keys = append(keys, k)
	}
	sort.Float64s(keys)

	cum := make([]float64, len(keys))
	acc := 0
	for i, k := range keys {
		acc += hist[k]
		cum[i] = float64(acc) / float64(n)
	}
	return &Dist1D{keys: keys, cum: cum, n: n}
}

// NumSamples 回傳建構時的有效樣本數。
func (d *Dist1D) NumSamples() int { return d.n }

// Len 回傳相異鍵值的個數。
func (d *Dist1D) Len() int { return len(d.keys) }

// Min 回傳最小鍵值。
func (d *Dist1D) Min() float64 { return d.keys[0] }

// Max 回傳最大鍵值。
func (d *Dist1D) Max() float64 { return d.keys[len(d.keys)-1] }

// CumAt 回傳累積分佈函數在 x 的值（階梯函數右連續取值）。
func (d *Dist1D) CumAt(x float64) float64 {
	i := sort.SearchFloat64s(d.keys, x)
	if i < len(d.keys) && d.keys[i] == x {
		return d.cum[i]
	}
	if i == 0 {
		return 0
	}
	return d.cum[i-1]
}

// Dump 以「值 機率」成行輸出累積機率表，方便 gnuplot 繪圖。
// 寫入錯誤包裝成 IO 類別後回傳。
func (d *Dist1D) Dump(w io.Writer) error {
	for i, k := range d.keys {
		if _, err := fmt.Fprintf(w, "%v %v\n", k, d.cum[i]); err != nil {
			return errs.WrapIO(err, "dist: dump failed")
		}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
