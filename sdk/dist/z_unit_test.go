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
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/zintix-labs/statlab/errs"
	"github.com/zintix-labs/statlab/sdk/core"
)

func mustDist1D(t *testing.T, samples []float64) *Dist1D {
	t.Helper()
	d, err := NewDist1D(samples)
	if err != nil {
		t.Fatalf("NewDist1D: %v", err)
	}
	return d
}

func normalSamples(seed uint32, n int, mean, stddev float64) []float64 {
	c := core.New(core.NewTwister(seed))
	out := make([]float64, n)
	for i := range out {
		out[i] = c.Normal(mean, stddev)
	}
	return out
}

func TestDist1DNormalization(t *testing.T) {
	d, err := NewDist1DFromPairs([]float64{1, 2}, []int{3, 5})
	if err != nil {
		t.Fatalf("NewDist1DFromPairs: %v", err)
	}
	if d.NumSamples() != 8 {
		t.Fatalf("sample count: got %d, want 8", d.NumSamples())
	}
	if got := d.CumAt(d.Max()); got != 1.0 {
		t.Fatalf("cumulative at max key: got %v, want 1", got)
	}
	if got := d.CumAt(1); math.Abs(got-0.375) > 1e-15 {
		t.Fatalf("cumulative at 1: got %v, want 0.375", got)
	}
	if got := d.CumAt(0.5); got != 0 {
		t.Fatalf("cumulative below min: got %v, want 0", got)
	}
}

func TestDist1DDropsNonFinite(t *testing.T) {
	d := mustDist1D(t, []float64{1, math.NaN(), 2, math.Inf(1), 2, math.Inf(-1), 3})
	if d.NumSamples() != 4 {
		t.Fatalf("sample count after dropping non-finite: got %d, want 4", d.NumSamples())
	}

	if _, err := NewDist1D([]float64{math.NaN()}); !errors.Is(err, errs.ErrInvalid) {
		t.Fatalf("expected InvalidArgument for all-NaN input, got %v", err)
	}
	if _, err := NewDist1D(nil); !errors.Is(err, errs.ErrInvalid) {
		t.Fatalf("expected InvalidArgument for empty input, got %v", err)
	}
}

func TestDist1DFromDiscreteHisto(t *testing.T) {
	d, err := NewDist1DFromDiscreteHisto([]int{0, 3, 5})
	if err != nil {
		t.Fatalf("NewDist1DFromDiscreteHisto: %v", err)
	}
	if d.NumSamples() != 8 {
		t.Fatalf("sample count: got %d, want 8", d.NumSamples())
	}
	if got := d.CumAt(1); math.Abs(got-0.375) > 1e-15 {
		t.Fatalf("cumulative at bin 1: got %v, want 0.375", got)
	}

	if _, err := NewDist1DFromDiscreteHisto([]int{1, -1}); !errors.Is(err, errs.ErrInvalid) {
		t.Fatalf("expected InvalidArgument for negative count, got %v", err)
	}
}

func TestDist1DFromPairsMismatch(t *testing.T) {
	if _, err := NewDist1DFromPairs([]float64{1, 2}, []int{1}); !errors.Is(err, errs.ErrInvalid) {
		t.Fatalf("expected InvalidArgument for length mismatch, got %v", err)
	}
}

func TestDist1DDump(t *testing.T) {
	d := mustDist1D(t, []float64{1, 2, 2, 3})
	var sb strings.Builder
	if err := d.Dump(&sb); err != nil {
		t.Fatalf("Dump: %v", err)
	}
	want := "1 0.25\n2 0.75\n3 1\n"
	if sb.String() != want {
		t.Fatalf("dump output:\n%q\nwant:\n%q", sb.String(), want)
	}
}

func TestCompareGolden(t *testing.T) {
	a := mustDist1D(t, []float64{1, 2, 2, 3})
	b := mustDist1D(t, []float64{2, 3, 4})
	r := Compare(a, b)
	if math.Abs(r.L2-0.11574074074074076) > 1e-12 {
		t.Fatalf("L2: got %v", r.L2)
	}
	if math.Abs(r.KS-5.0/12.0) > 1e-12 {
		t.Fatalf("KS: got %v", r.KS)
	}
	if math.Abs(r.CvM-0.11507936507936509) > 1e-12 {
		t.Fatalf("CvM: got %v", r.CvM)
	}
	if r.N0 != 4 || r.N1 != 3 {
		t.Fatalf("sample counts: got %d, %d", r.N0, r.N1)
	}

	f := 4.0 * 3.0 / 7.0
	if math.Abs(r.ScaledKS()-math.Sqrt(f)*r.KS) > 1e-15 {
		t.Fatalf("ScaledKS: got %v", r.ScaledKS())
	}
	if math.Abs(r.ScaledCvM()-f*r.CvM) > 1e-15 {
		t.Fatalf("ScaledCvM: got %v", r.ScaledCvM())
	}
	if r.DomainScaledL2() != r.L2 {
		t.Fatalf("DomainScaledL2: got %v", r.DomainScaledL2())
	}
	if math.Abs(r.ScaledL2()-math.Sqrt(f)*r.L2) > 1e-15 {
		t.Fatalf("ScaledL2: got %v", r.ScaledL2())
	}
}

func TestCompareIdentical(t *testing.T) {
	a := mustDist1D(t, []float64{1, 2, 3, 4})
	r := Compare(a, a)
	if r.L2 != 0 || r.KS != 0 || r.CvM != 0 {
		t.Fatalf("self-comparison not zero: %+v", r)
	}
}

func TestKolmogorovProb(t *testing.T) {
	if got := KolmogorovProb(0.1); got != 1 {
		t.Fatalf("small z: got %v, want 1", got)
	}
	if got := KolmogorovProb(1.0); math.Abs(got-0.26999967167735456) > 1e-12 {
		t.Fatalf("Q(1.0): got %v", got)
	}
	if got := KolmogorovProb(1.36); math.Abs(got-0.049485876755378) > 1e-12 {
		t.Fatalf("Q(1.36): got %v", got)
	}
	if got := KolmogorovProb(5); got < 0 || got > 1e-10 {
		t.Fatalf("Q(5): got %v", got)
	}
}

func TestKolmogorovProbTwoSmallSamples(t *testing.T) {
	for _, tc := range []struct {
		x      float64
		n0, n1 int
		want   float64
	}{
		{0.45, 4, 5, 0.5634920634920635},
		{0.5, 4, 4, 0.7714285714285715},
		{1.0, 3, 3, 0.1},
		{0.75, 4, 5, 0.14285714285714285},
	} {
		got, err := KolmogorovProbTwoSmallSamples(tc.x, tc.n0, tc.n1)
		if err != nil {
			t.Fatalf("KolmogorovProbTwoSmallSamples(%v,%d,%d): %v", tc.x, tc.n0, tc.n1, err)
		}
		if math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("KolmogorovProbTwoSmallSamples(%v,%d,%d): got %v, want %v", tc.x, tc.n0, tc.n1, got, tc.want)
		}
	}

	if _, err := KolmogorovProbTwoSmallSamples(0.5, 0, 4); !errors.Is(err, errs.ErrInvalid) {
		t.Fatalf("expected InvalidArgument for zero sample count, got %v", err)
	}
}

// 對照 Anderson–Darling (1952) 發表的極限分佈分位數。
func TestCramerVonMisesProb(t *testing.T) {
	for _, tc := range []struct {
		z    float64
		want float64
	}{
		{0.46136, 0.05},
		{0.74346, 0.01},
		{0.34730, 0.10},
		{0.20939, 0.25},
		{0.11888, 0.50},
	} {
		got := CramerVonMisesProb(tc.z, 1000, 1000)
		if math.Abs(got-tc.want) > 1e-4 {
			t.Fatalf("CramerVonMisesProb(%v): got %v, want %v", tc.z, got, tc.want)
		}
	}
	if got := CramerVonMisesProb(0.001, 10, 10); got != 1 {
		t.Fatalf("tiny z: got %v, want 1", got)
	}
}

func TestSameLawMajority(t *testing.T) {
	hits := 0
	for trial := 0; trial < 9; trial++ {
		a := mustDist1D(t, normalSamples(uint32(100+2*trial), 1000, 0, 1))
		b := mustDist1D(t, normalSamples(uint32(101+2*trial), 1000, 0, 1))
		r := Compare(a, b)
		if KolmogorovProb(r.ScaledKS()) > 0.5 {
			hits++
		}
	}
	if hits < 4 {
		t.Fatalf("same-law trials with p > 0.5: got %d of 9", hits)
	}
}

func TestShiftedLawsDetected(t *testing.T) {
	a := mustDist1D(t, normalSamples(21, 1000, 5, 1))
	b := mustDist1D(t, normalSamples(22, 1000, 0, 1))
	r := Compare(a, b)
	if p := KolmogorovProb(r.ScaledKS()); p >= 0.01 {
		t.Fatalf("shifted laws not detected: p = %v", p)
	}
}

func TestInvCDFEval(t *testing.T) {
	d := mustDist1D(t, []float64{1, 2, 2, 3})
	f, err := NewInvCDF(d)
	if err != nil {
		t.Fatalf("NewInvCDF: %v", err)
	}
	for _, tc := range []struct {
		u, want float64
	}{
		{0, 1 - 1e-6},
		{0.25, 1},
		{0.5, 1.5},
		{0.75, 2},
		{0.9, 2.6},
		{1, 3},
		{1.5, 3}, // 夾限
	} {
		if got := f.Eval(tc.u); math.Abs(got-tc.want) > 1e-12 {
			t.Fatalf("Eval(%v): got %v, want %v", tc.u, got, tc.want)
		}
	}
}

func TestInvCDFNonMonotonic(t *testing.T) {
	// 手工拼出壞表：累積值倒退
	bad := &Dist1D{keys: []float64{1, 2, 3}, cum: []float64{0.5, 0.4, 1}, n: 3}
	if _, err := NewInvCDF(bad); !errors.Is(err, errs.ErrPrecondition) {
		t.Fatalf("expected PreconditionViolation, got %v", err)
	}
}

func TestSamplerDeterminism(t *testing.T) {
	model := normalSamples(123, 500, 0, 1)
	s1, err := NewSamplerFromSamples(model, 7)
	if err != nil {
		t.Fatalf("NewSamplerFromSamples: %v", err)
	}
	s2, err := NewSamplerFromSamples(model, 7)
	if err != nil {
		t.Fatalf("NewSamplerFromSamples: %v", err)
	}
	first := make([]float64, 100)
	for i := range first {
		first[i] = s1.Draw()
		if got := s2.Draw(); got != first[i] {
			t.Fatalf("sampler streams diverged at draw %d", i)
		}
	}

	s1.Reseed(7)
	for i, want := range first {
		if got := s1.Draw(); got != want {
			t.Fatalf("after reseed, draw %d: got %v, want %v", i, got, want)
		}
	}
}

func TestSamplerRoundtrip(t *testing.T) {
	model := mustDist1D(t, normalSamples(123, 1000, 0, 1))

	ksFor := func(n int) float64 {
		s, err := NewSampler(model, 45)
		if err != nil {
			t.Fatalf("NewSampler: %v", err)
		}
		draws := make([]float64, n)
		for i := range draws {
			draws[i] = s.Draw()
		}
		d := mustDist1D(t, draws)
		return Compare(d, model).KS
	}

	ksSmall := ksFor(1_000)
	ksLarge := ksFor(100_000)
	if ksLarge >= 0.5*ksSmall {
		t.Fatalf("KS distance did not shrink with sample size: %v at 1e3 vs %v at 1e5", ksSmall, ksLarge)
	}
}

func TestDist2DShapeErrors(t *testing.T) {
	if _, err := NewDist2D([][]float64{{1}, {2}, {3}}); !errors.Is(err, errs.ErrInvalid) {
		t.Fatalf("expected InvalidArgument for 3 components, got %v", err)
	}
	if _, err := NewDist2D([][]float64{{1, 2}, {1}}); !errors.Is(err, errs.ErrInvalid) {
		t.Fatalf("expected InvalidArgument for length mismatch, got %v", err)
	}
	if _, err := NewDist2D([][]float64{{math.NaN()}, {1}}); !errors.Is(err, errs.ErrInvalid) {
		t.Fatalf("expected InvalidArgument for no finite pairs, got %v", err)
	}
}

func TestCompare2DGolden(t *testing.T) {
	a, err := NewDist2D([][]float64{{0, 1}, {0, 1}})
	if err != nil {
		t.Fatalf("NewDist2D: %v", err)
	}
	b, err := NewDist2D([][]float64{{0, 1}, {1, 0}})
	if err != nil {
		t.Fatalf("NewDist2D: %v", err)
	}
	r, err := Compare2D(a, b)
	if err != nil {
		t.Fatalf("Compare2D: %v", err)
	}
	if math.Abs(r.L2-0.25) > 1e-12 {
		t.Fatalf("2D L2: got %v, want 0.25", r.L2)
	}
	if math.Abs(r.KS-0.5) > 1e-12 {
		t.Fatalf("2D KS: got %v, want 0.5", r.KS)
	}
	if math.Abs(r.CvM-0.0625) > 1e-12 {
		t.Fatalf("2D CvM: got %v, want 0.0625", r.CvM)
	}

	same, err := Compare2D(a, a)
	if err != nil {
		t.Fatalf("Compare2D: %v", err)
	}
	if same.L2 != 0 || same.KS != 0 || same.CvM != 0 {
		t.Fatalf("2D self-comparison not zero: %+v", same)
	}
}

func normal2DCloud(seed uint32, n int, mean float64) [][]float64 {
	c := core.New(core.NewTwister(seed))
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := 0; i < n; i++ {
		xs[i] = c.Normal(mean, 1)
		ys[i] = c.Normal(mean, 1)
	}
	return [][]float64{xs, ys}
}

func TestCompare2DClouds(t *testing.T) {
	a, err := NewDist2D(normal2DCloud(31, 50, 0))
	if err != nil {
		t.Fatalf("NewDist2D: %v", err)
	}
	shifted, err := NewDist2D(normal2DCloud(32, 50, 2))
	if err != nil {
		t.Fatalf("NewDist2D: %v", err)
	}
	sameLaw, err := NewDist2D(normal2DCloud(33, 50, 0))
	if err != nil {
		t.Fatalf("NewDist2D: %v", err)
	}

	far, err := Compare2D(a, shifted)
	if err != nil {
		t.Fatalf("Compare2D: %v", err)
	}
	if math.Abs(far.KS-0.92) > 1e-9 {
		t.Fatalf("shifted cloud KS: got %v, want 0.92", far.KS)
	}
	if math.Abs(far.L2-0.18364944798476707) > 1e-9 {
		t.Fatalf("shifted cloud L2: got %v", far.L2)
	}
	if math.Abs(far.CvM-0.236356) > 1e-9 {
		t.Fatalf("shifted cloud CvM: got %v", far.CvM)
	}

	near, err := Compare2D(a, sameLaw)
	if err != nil {
		t.Fatalf("Compare2D: %v", err)
	}
	if math.Abs(near.KS-0.28) > 1e-9 {
		t.Fatalf("same-law cloud KS: got %v, want 0.28", near.KS)
	}
	if near.KS >= far.KS {
		t.Fatalf("same-law KS %v not below shifted KS %v", near.KS, far.KS)
	}
}
