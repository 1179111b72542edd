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
	"math"

	"github.com/zintix-labs/statlab/errs"
)

const lnFacTableLen = 100

// Stirling 級數常數
const (
	stirC0 = 0.918938533204672722 // ln(2*pi)/2
	stirC1 = 1.0 / 12.0
	stirC3 = -1.0 / 360.0
)

// lnFacTable 在套件初始化時一次建好（ln(i) 的累積和），之後唯讀，不需要任何 lazy guard。
var lnFacTable = buildLnFacTable()

func buildLnFacTable() [lnFacTableLen]float64 {
	var t [lnFacTableLen]float64
	sum := 0.0
	for i := 1; i < lnFacTableLen; i++ {
		sum += math.Log(float64(i))
		t[i] = sum
	}
	return t
}

// LnFac 回傳 ln(n!)。
//
// n < 100 直接查表；n >= 100 走 Stirling 級數
// (n+0.5)ln(n) - n + C0 + C1/n + C3/n³（誤差 < 1e-12 相對）。
// n < 0 為 InvalidArgument。
func LnFac(n int) (float64, error) {
	if n < 0 {
		return 0, errs.Invalidf("lnfac: negative argument %d", n)
	}
	return lnFacFast(n), nil
}

// lnFacFast 同 LnFac 但假設 n >= 0，供熱路徑（Poisson 接受判定）使用。
func lnFacFast(n int) float64 {
	if n < lnFacTableLen {
		return lnFacTable[n]
	}
	r := 1.0 / float64(n)
	return (float64(n)+0.5)*math.Log(float64(n)) - float64(n) + stirC0 + r*(stirC1+r*r*stirC3)
}
