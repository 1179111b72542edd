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

package core

import (
	"fmt"
	"math"

	"github.com/zintix-labs/statlab/errs"
)

const twoPow32 = 4294967296.0 // 2^32

// maxResample 是 rejection 迴圈的安全上限。
//
// 每一輪的接受機率都極接近 1（拒絕只發生在浮點捨入把結果推出半開區間的
// 罕見情況），理論上這個上限碰不到；設上限是為了把「病態浮點輸入造成
// 無限迴圈」從隱性行為變成一次明確的 panic。
const maxResample = 1 << 16

// transformed rejection 常數（Poisson 大 lambda 制域）
const (
	poisSHAT1 = 2.943035529371538573  // 8/e
	poisSHAT2 = 0.8989161620588987408 // 3-sqrt(12/e)
)

// Core 封裝 PRNG，並在 32-bit 字流之上提供各種衍生取樣。
//
// 所有衍生取樣只透過 Next() 消耗字流，不碰 generator 內部狀態；
// 因此同一 seed 之下，任何取樣組合的消耗順序都是決定性的。
type Core struct {
	PRNG
}

// New 允許使用外部自實現的 PRNG 建立 Core。
func New(rng PRNG) *Core {
	return &Core{rng}
}

// Bool 回傳隨機布林值。
func (c *Core) Bool() bool {
	return c.Next()%2 == 1
}

// Uint32 回傳未縮放的 32-bit 亂數字。
func (c *Core) Uint32() uint32 {
	return c.Next()
}

// Float64 回傳 [0,1) 的浮點亂數。
//
// 以兩個 32-bit 字組合出高於 32-bit 的解析度：(hi + lo/2^32) / 2^32。
// 浮點捨入偶爾會把結果推到 1.0，這時重抽。
func (c *Core) Float64() float64 {
	for i := 0; i < maxResample; i++ {
		hi := float64(c.Next())
		lo := float64(c.Next()) / twoPow32
		v := (hi + lo) / twoPow32
		if v >= 0 && v < 1 {
			return v
		}
	}
	panic("core: Float64 resample limit exceeded")
}

// Float64Max 回傳 [0,max) 的浮點亂數；若 max <= 0 回傳 0。
func (c *Core) Float64Max(max float64) float64 {
	if max <= 0 {
		return 0
	}
	for i := 0; i < maxResample; i++ {
		v := max * c.Float64()
		if v >= 0 && v < max {
			return v
		}
	}
	panic(fmt.Sprintf("core: Float64Max(%v) resample limit exceeded", max))
}

// Float64Range 回傳 [min,max) 的浮點亂數。
func (c *Core) Float64Range(min, max float64) float64 {
	for i := 0; i < maxResample; i++ {
		v := min + c.Float64()*(max-min)
		if v >= min && v < max {
			return v
		}
	}
	panic(fmt.Sprintf("core: Float64Range(%v,%v) resample limit exceeded", min, max))
}

// UintN 回傳 [0,max) 的 uint32 亂數；若 max == 0 回傳 0。
// 取一個縮放後的浮點抽樣截斷成整數，出界就重抽。
func (c *Core) UintN(max uint32) uint32 {
	if max == 0 {
		return 0
	}
	for i := 0; i < maxResample; i++ {
		v := uint32(c.Float64Max(float64(max)))
		if v < max {
			return v
		}
	}
	panic(fmt.Sprintf("core: UintN(%d) resample limit exceeded", max))
}

// UintRange 回傳 [min,max) 的 uint32 亂數；若區間為空回傳 min。
func (c *Core) UintRange(min, max uint32) uint32 {
	if min >= max {
		return min
	}
	for i := 0; i < maxResample; i++ {
		v := uint32(c.Float64Range(float64(min), float64(max)))
		if v >= min && v < max {
			return v
		}
	}
	panic(fmt.Sprintf("core: UintRange(%d,%d) resample limit exceeded", min, max))
}

// IntN 回傳 [0,max) 的 int 亂數；若 max <= 0 回傳 -1。
func (c *Core) IntN(max int) int {
	if max <= 0 {
		return -1
	}
	for i := 0; i < maxResample; i++ {
		v := int(c.Float64Max(float64(max)))
		if v >= 0 && v < max {
			return v
		}
	}
	panic(fmt.Sprintf("core: IntN(%d) resample limit exceeded", max))
}

// IntRange 回傳 [min,max) 的 int 亂數；若區間為空回傳 min。
//
// 轉 int 前先 Floor：負數區間若直接截斷會偏向 0，
// min 幾乎抽不到而 0 拿到雙倍權重。
func (c *Core) IntRange(min, max int) int {
	if min >= max {
		return min
	}
	for i := 0; i < maxResample; i++ {
		v := int(math.Floor(c.Float64Range(float64(min), float64(max))))
		if v >= min && v < max {
			return v
		}
	}
	panic(fmt.Sprintf("core: IntRange(%d,%d) resample limit exceeded", min, max))
}

// Normal 回傳平均值 mean、標準差 stddev 的常態分佈亂數。
//
// Marsaglia polar method：在單位圓內取點 (x1,x2)，w = x1²+x2²，
// 接受條件 1e-30 <= w < 1（下限避免 log(0)），接受後
// 轉換 w = sqrt(-2 ln(w)/w)，回傳 x1·w·stddev + mean。
func (c *Core) Normal(mean, stddev float64) float64 {
	var x1, x2, w float64
	for i := 0; i < maxResample; i++ {
		x1 = c.Float64Range(-1, 1)
		x2 = c.Float64Range(-1, 1)
		w = x1*x1 + x2*x2
		if w < 1 && w >= 1e-30 {
			w = math.Sqrt(-2 * math.Log(w) / w)
			return x1*w*stddev + mean
		}
	}
	panic("core: Normal resample limit exceeded")
}

// Poisson 回傳平均值 lambda 的 Poisson 分佈亂數。
//
// 兩制域演算法（A. Fog, agner.org/random）：
//   - lambda < 0 或 lambda > 2e9：InvalidArgument。
//   - lambda == 0：決定性地回傳 0。
//   - lambda < 1e-6：低階閉式近似，用兩個 uniform 抽樣對 lambda 導出的
//     門檻比較後回傳 0/1/2（避免計算非常接近 1 的 exp(-lambda)）。
//   - lambda < 17：直接模擬，計數器走到 130 還沒命中就整輪重來。
//   - 其他：transformed rejection + squeeze test，接受判定用 lnFac。
func (c *Core) Poisson(lambda float64) (int, error) {
	if lambda < 0 {
		return 0, errs.Invalidf("poisson: mean must be >= 0, got %v", lambda)
	}
	if lambda == 0 {
		return 0, nil
	}
	if lambda > 2e9 {
		return 0, errs.Invalidf("poisson: mean %v too large to sample from", lambda)
	}
	if lambda < 17 {
		if lambda < 1e-6 {
			return c.poissonLow(lambda), nil
		}
		return c.poissonDirect(lambda), nil
	}
	return c.poissonRatio(lambda), nil
}

func (c *Core) poissonLow(lambda float64) int {
	d := math.Sqrt(lambda)
	if c.Float64() >= d {
		return 0
	}
	r := c.Float64() * d
	if r > lambda*(1-lambda) {
		return 0
	}
	if r > 0.5*lambda*lambda*(1-lambda) {
		return 1
	}
	return 2
}

func (c *Core) poissonDirect(lambda float64) int {
	const bound = 130
	f0 := math.Exp(-lambda)
	for i := 0; i < maxResample; i++ {
		r := c.Float64()
		x := 0
		f := f0
		for {
			r -= f
			if r <= 0 {
				return x
			}
			x++
			f *= lambda
			r *= float64(x)
			if x > bound {
				break // 超出計數上限，整輪重來
			}
		}
	}
	panic(fmt.Sprintf("core: Poisson(%v) resample limit exceeded", lambda))
}

func (c *Core) poissonRatio(lambda float64) int {
	a := lambda + 0.5
	mode := int(lambda)
	g := math.Log(lambda)
	f0 := float64(mode)*g - lnFacFast(mode)
	h := math.Sqrt(poisSHAT1*a) + poisSHAT2
	bound := float64(int(a + 6.0*h))
	for i := 0; i < maxResample; i++ {
		u := c.Float64()
		if u == 0 {
			continue
		}
		x := a + h*(c.Float64()-0.5)/u
		if x < 0 || x >= bound {
			continue
		}
		k := int(x)
		lf := float64(k)*g - lnFacFast(k) - f0
		if lf >= u*(4.0-u)-3.0 {
			return k // squeeze accept
		}
		if u*(u-lf) > 1.0 {
			continue // squeeze reject
		}
		if 2.0*math.Log(u) <= lf {
			return k
		}
	}
	panic(fmt.Sprintf("core: Poisson(%v) resample limit exceeded", lambda))
}
