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
	"math"
)

// Result 是一次分佈比較的不可變結果。
//
// L2 是把定義域映到 [0,1] 後的累積函數平方差積分；
// KS 是累積函數的最大絕對差（L∞）；
// CvM 是以合併機率質量加權的平方差和。
// N0/N1 記錄兩邊的樣本數，Scaled* 換算用。
type Result struct {
	L2  float64
	KS  float64
	CvM float64
	N0  int
	N1  int
}

// sizeFactor = n0*n1/(n0+n1)，兩樣本檢定的等效樣本數。
func (r Result) sizeFactor() float64 {
	return float64(r.N0) * float64(r.N1) / float64(r.N0+r.N1)
}

// ScaledKS 回傳 sqrt(n0*n1/(n0+n1)) * KS，其漸近分佈為 Kolmogorov 分佈。
func (r Result) ScaledKS() float64 {
	return math.Sqrt(r.sizeFactor()) * r.KS
}

// ScaledCvM 回傳 n0*n1/(n0+n1) * CvM，對應極限 ω² 律。
func (r Result) ScaledCvM() float64 {
	return r.sizeFactor() * r.CvM
}

// DomainScaledL2 回傳定義域視為 [0,1] 的 L2 距離。
func (r Result) DomainScaledL2() float64 {
	return r.L2
}

// ScaledL2 回傳再乘上樣本數因子的 L2 距離。
func (r Result) ScaledL2() float64 {
	return math.Sqrt(r.sizeFactor()) * r.L2
}

// Compare 走訪兩個一維經驗分佈斷點的聯集（升冪），一次累積出三種距離。
// 純函式：不動 a、b 的任何狀態。
func Compare(a, b *Dist1D) Result {
	n0 := float64(a.n)
	n1 := float64(b.n)

	lo := math.Min(a.keys[0], b.keys[0])
	hi := math.Max(a.keys[len(a.keys)-1], b.keys[len(b.keys)-1])
	ext := hi - lo
	if ext <= 0 {
		ext = 1 // 兩邊都退化成同一點時定義域長度為零，避免除零
	}

	var (
		i, j     int
		f0, f1   float64 // 走到目前斷點為止的兩個累積值
		ks, cvm  float64
		l2       float64
		prev     float64
		prevDiff float64
		started  bool
	)
	for i < len(a.keys) || j < len(b.keys) {
		var k float64
		switch {
		case i >= len(a.keys):
			k = b.keys[j]
		case j >= len(b.keys):
			k = a.keys[i]
		default:
			k = math.Min(a.keys[i], b.keys[j])
		}

		if started {
			l2 += prevDiff * prevDiff * (k - prev) / ext
		}

		// 本斷點上兩邊各自新增的機率質量
		var m0, m1 float64
		if i < len(a.keys) && a.keys[i] == k {
			m0 = a.cum[i]
			if i > 0 {
				m0 -= a.cum[i-1]
			}
			f0 = a.cum[i]
			i++
		}
		if j < len(b.keys) && b.keys[j] == k {
			m1 = b.cum[j]
			if j > 0 {
				m1 -= b.cum[j-1]
			}
			f1 = b.cum[j]
			j++
		}

		diff := math.Abs(f0 - f1)
		if diff > ks {
			ks = diff
		}
		cvm += diff * diff * (n0*m0 + n1*m1) / (n0 + n1)

		prev = k
		prevDiff = diff
		started = true
	}

	return Result{L2: l2, KS: ks, CvM: cvm, N0: a.n, N1: b.n}
}
