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

	"github.com/zintix-labs/statlab/errs"
	"github.com/zintix-labs/statlab/sdk/core"
)

// ksSeriesTol / ksSeriesCap 控制 Kolmogorov 交錯級數的收斂判斷。
const (
	ksSeriesTol = 1e-10
	ksSeriesCap = 100
)

// KolmogorovProb 回傳縮放 KS 統計量 z 之下「兩樣本出自同一分佈」的雙邊漸近機率：
// 2·Σ_{k≥1} (−1)^{k−1} exp(−2k²z²)。
//
// z < 0.2 時級數貼近 1，直接回傳 1。此式只在大樣本下有效，
// 小樣本請改用 KolmogorovProbTwoSmallSamples。
func KolmogorovProb(z float64) float64 {
	if z < 0.2 {
		return 1
	}
	sum := 0.0
	for k := 1; k <= ksSeriesCap; k++ {
		term := math.Exp(-2 * float64(k) * float64(k) * z * z)
		if k%2 == 1 {
			sum += term
		} else {
			sum -= term
		}
		if term < ksSeriesTol {
			break
		}
	}
	p := 2 * sum
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// KolmogorovProbTwoSmallSamples 以 Massey (1951) 的格子路徑計數求兩樣本 KS 檢定的精確機率：
// 計算從 (0,0) 到 (n0,n1) 且全程 |i/n0 − j/n1| < X 的單調格子路徑數，
// 除以總路徑數 C(n0+n1, n0)，回傳 1 − 該比值。
//
// 僅適合小樣本；路徑數以 float64 累計，n0+n1 太大時會損失精度（此時應改用漸近式）。
func KolmogorovProbTwoSmallSamples(x float64, n0, n1 int) (float64, error) {
	if n0 <= 0 || n1 <= 0 {
		return 0, errs.Invalidf("dist: sample counts must be positive, got %d and %d", n0, n1)
	}
	// 以整數化的邊界 |i*n1 − j*n0| < X*n0*n1 避免逐格浮點除法
	t := x * float64(n0) * float64(n1)

	w := make([][]float64, n0+1)
	for i := range w {
		w[i] = make([]float64, n1+1)
	}
	for i := 0; i <= n0; i++ {
		for j := 0; j <= n1; j++ {
			if math.Abs(float64(i*n1-j*n0)) >= t-1e-9 {
				continue // 越界的格點：路徑不可經過
			}
			if i == 0 && j == 0 {
				w[0][0] = 1
				continue
			}
			if i > 0 {
				w[i][j] += w[i-1][j]
			}
			if j > 0 {
				w[i][j] += w[i][j-1]
			}
		}
	}

	lf0, _ := core.LnFac(n0)
	lf1, _ := core.LnFac(n1)
	lfs, _ := core.LnFac(n0 + n1)
	total := math.Exp(lfs - lf0 - lf1)

	p := 1 - w[n0][n1]/total
	if p < 0 {
		return 0, nil
	}
	if p > 1 {
		return 1, nil
	}
	return p, nil
}

// CramerVonMisesProb 回傳縮放 CvM 統計量 z 之下「兩樣本出自同一分佈」的漸近機率
// 1 − a1(z)，其中 a1 是 Anderson–Darling (1952) 的極限分佈，
// 以其 Bessel K_{1/4} 級數直接求值（非查表內插）。
//
// n0、n1 僅用於記錄：此式與 KolmogorovProb 一樣只在大樣本下可靠。
func CramerVonMisesProb(z float64, n0, n1 int) float64 {
	_ = n0
	_ = n1
	p := 1 - cvmLimitCDF(z)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// cvmLimitCDF 求極限分佈 a1(z) = P(ω² ≤ z)：
//
//	a1(z) = 1/(π√z) Σ_{j≥0} Γ(j+1/2)/(Γ(1/2) j!) √(4j+1) exp(−(4j+1)²/16z) K_{1/4}((4j+1)²/16z)
//
// 指數因子衰減極快，引數超過 25 之後的項小於 1e-11，直接截斷。
func cvmLimitCDF(z float64) float64 {
	if z < 0.01 {
		return 0
	}
	sum := 0.0
	for j := 0; j < 40; j++ {
		q := float64(4*j + 1)
		arg := q * q / (16 * z)
		if arg > 25 {
			break
		}
		c := math.Gamma(float64(j)+0.5) / (math.Gamma(0.5) * math.Gamma(float64(j)+1))
		sum += c * math.Sqrt(q) * math.Exp(-arg) * besselK14(arg)
	}
	return sum / (math.Pi * math.Sqrt(z))
}

// besselK14 求修正 Bessel 函數 K_{1/4}(x)，由 I_{∓1/4} 的反射式組合：
// K_ν = π (I_{−ν} − I_ν) / (2 sin νπ)。
func besselK14(x float64) float64 {
	const nu = 0.25
	return math.Pi / 2 * (besselI(-nu, x) - besselI(nu, x)) / math.Sin(nu*math.Pi)
}

// besselI 以冪級數求修正 Bessel 函數 I_ν(x)；引數範圍小（≤25），級數穩定收斂。
func besselI(nu, x float64) float64 {
	sum := 0.0
	for m := 0; m < 200; m++ {
		t := math.Pow(x/2, 2*float64(m)+nu) / (math.Gamma(float64(m)+1) * math.Gamma(float64(m)+nu+1))
		sum += t
		if m > 3 && t < math.Abs(sum)*1e-17 {
			break
		}
	}
	return sum
}
