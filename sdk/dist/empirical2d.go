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
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/zintix-labs/statlab/errs"
)

// Dist2D 是二維經驗分佈：兩軸的斷點座標、格點機率質量，
// 以及四個象限方向各自的累積格網（二維累積分佈沒有唯一的方向，
// 比較時四個方向都要看）。建構後不可變。
type Dist2D struct {
	xs   []float64   // x 軸斷點，升冪去重
	ys   []float64   // y 軸斷點，升冪去重
	mass [][]float64 // mass[i][j] = (xs[i], ys[j]) 上的機率質量
	quad [2][2][][]float64
	n    int
}

// NewDist2D 從成對座標序列建構二維經驗分佈。
// 必須恰好是兩條等長序列；其他形狀為 InvalidArgument。
// 任一座標非有限的樣本對靜默略過。
func NewDist2D(cols [][]float64) (*Dist2D, error) {
	if len(cols) != 2 {
		return nil, errs.Invalidf("dist: 2D samples need exactly 2 components, got %d", len(cols))
	}
	if len(cols[0]) != len(cols[1]) {
		return nil, errs.Invalidf("dist: 2D component length mismatch: %d vs %d", len(cols[0]), len(cols[1]))
	}

	type pt struct{ x, y float64 }
	hist := make(map[pt]int, len(cols[0]))
	n := 0
	for i := range cols[0] {
		x, y := cols[0][i], cols[1][i]
		if !isFinite(x) || !isFinite(y) {
			continue
		}
		hist[pt{x, y}]++
		n++
	}
	if n == 0 {
		return nil, errs.Invalidf("dist: no finite 2D samples")
	}

	xset := make(map[float64]struct{})
	yset := make(map[float64]struct{})
	for p := range hist {
		xset[p.x] = struct{}{}
		yset[p.y] = struct{}{}
	}
	xs := sortedKeys(xset)
	ys := sortedKeys(yset)

	mass := make([][]float64, len(xs))
	for i := range mass {
		mass[i] = make([]float64, len(ys))
	}
	for p, c := range hist {
		i := sort.SearchFloat64s(xs, p.x)
		j := sort.SearchFloat64s(ys, p.y)
		mass[i][j] = float64(c) / float64(n)
	}

	d := &Dist2D{xs: xs, ys: ys, mass: mass, n: n}
	d.buildQuadGrids()
	return d, nil
}

func sortedKeys(set map[float64]struct{}) []float64 {
	out := make([]float64, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Float64s(out)
	return out
}

// buildQuadGrids 預先累積四個象限方向的累積分佈格網。
// quad[ox][oy][i][j]：ox=0 從左累積（xi ≤ x），ox=1 從右（xi ≥ x）；y 同理。
func (d *Dist2D) buildQuadGrids() {
	nx, ny := len(d.xs), len(d.ys)
	for ox := 0; ox < 2; ox++ {
		for oy := 0; oy < 2; oy++ {
			g := make([][]float64, nx)
			for i := range g {
				g[i] = make([]float64, ny)
			}
			for si := 0; si < nx; si++ {
				i := si
				if ox == 1 {
					i = nx - 1 - si
				}
				for sj := 0; sj < ny; sj++ {
					j := sj
					if oy == 1 {
						j = ny - 1 - sj
					}
					v := d.mass[i][j]
					if si > 0 {
						pi := i - 1
						if ox == 1 {
							pi = i + 1
						}
						v += g[pi][j]
					}
					if sj > 0 {
						pj := j - 1
						if oy == 1 {
							pj = j + 1
						}
						v += g[i][pj]
					}
					if si > 0 && sj > 0 {
						pi, pj := i-1, j-1
						if ox == 1 {
							pi = i + 1
						}
						if oy == 1 {
							pj = j + 1
						}
						v -= g[pi][pj]
					}
					g[i][j] = v
				}
			}
			d.quad[ox][oy] = g
		}
	}
}

// NumSamples 回傳建構時的有效樣本數。
func (d *Dist2D) NumSamples() int { return d.n }

// cumAt 求方向 (ox, oy) 的累積分佈在 (x, y) 的值。
func (d *Dist2D) cumAt(ox, oy int, x, y float64) float64 {
	i := axisIndex(d.xs, x, ox)
	j := axisIndex(d.ys, y, oy)
	if i < 0 || j < 0 {
		return 0
	}
	return d.quad[ox][oy][i][j]
}

// axisIndex 找方向為 o 時座標 v 在斷點序列中對應的格點索引；
// 沒有任何斷點落在該側時回傳 -1。
func axisIndex(coords []float64, v float64, o int) int {
	i := sort.SearchFloat64s(coords, v)
	if o == 0 { // 左側累積：最後一個 ≤ v 的斷點
		if i < len(coords) && coords[i] == v {
			return i
		}
		return i - 1
	}
	// 右側累積：第一個 ≥ v 的斷點
	if i == len(coords) {
		return -1
	}
	return i
}

// massAt 回傳 (x, y) 上的點機率質量；不是支撐點時為 0。
func (d *Dist2D) massAt(x, y float64) float64 {
	i := sort.SearchFloat64s(d.xs, x)
	if i == len(d.xs) || d.xs[i] != x {
		return 0
	}
	j := sort.SearchFloat64s(d.ys, y)
	if j == len(d.ys) || d.ys[j] != y {
		return 0
	}
	return d.mass[i][j]
}

// Dump 以「x y 機率」成行輸出左下方向的累積格網。
func (d *Dist2D) Dump(w io.Writer) error {
	for i, x := range d.xs {
		for j, y := range d.ys {
			if _, err := fmt.Fprintf(w, "%v %v %v\n", x, y, d.quad[0][0][i][j]); err != nil {
				return errs.WrapIO(err, "dist: dump failed")
			}
		}
	}
	return nil
}

// Compare2D 比較兩個二維經驗分佈。
//
// KS 取兩軸斷點聯集的所有格點上、四個象限方向中的最大累積差；
// CvM 與 L2 以左下方向的累積差計算（CvM 按聯合點質量加權，
// L2 按映到 [0,1]² 的格胞面積加權）。
func Compare2D(a, b *Dist2D) (Result, error) {
	if a == nil || b == nil {
		return Result{}, errs.Invalidf("dist: nil distribution")
	}

	ux := mergeSorted(a.xs, b.xs)
	uy := mergeSorted(a.ys, b.ys)
	n0 := float64(a.n)
	n1 := float64(b.n)

	var ks float64
	for _, x := range ux {
		for _, y := range uy {
			for ox := 0; ox < 2; ox++ {
				for oy := 0; oy < 2; oy++ {
					diff := math.Abs(a.cumAt(ox, oy, x, y) - b.cumAt(ox, oy, x, y))
					if diff > ks {
						ks = diff
					}
				}
			}
		}
	}

	var cvm float64
	for _, x := range ux {
		for _, y := range uy {
			m := (n0*a.massAt(x, y) + n1*b.massAt(x, y)) / (n0 + n1)
			if m == 0 {
				continue
			}
			diff := a.cumAt(0, 0, x, y) - b.cumAt(0, 0, x, y)
			cvm += diff * diff * m
		}
	}

	extX := ux[len(ux)-1] - ux[0]
	extY := uy[len(uy)-1] - uy[0]
	if extX <= 0 {
		extX = 1
	}
	if extY <= 0 {
		extY = 1
	}
	var l2 float64
	for i := 0; i+1 < len(ux); i++ {
		dx := (ux[i+1] - ux[i]) / extX
		for j := 0; j+1 < len(uy); j++ {
			dy := (uy[j+1] - uy[j]) / extY
			diff := a.cumAt(0, 0, ux[i], uy[j]) - b.cumAt(0, 0, ux[i], uy[j])
			l2 += diff * diff * dx * dy
		}
	}

	return Result{L2: l2, KS: ks, CvM: cvm, N0: a.n, N1: b.n}, nil
}

func mergeSorted(a, b []float64) []float64 {
	out := make([]float64, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		switch {
		case i >= len(a):
			out = append(out, b[j])
			j++
		case j >= len(b):
			out = append(out, a[i])
			i++
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		case a[i] > b[j]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}
