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

package statlab

import (
	"errors"
	"testing"

	"github.com/zintix-labs/statlab/errs"
	"github.com/zintix-labs/statlab/params"
)

func TestNewRequiresFactory(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatalf("expected error for nil factory")
	}
}

func TestDrawDeterminism(t *testing.T) {
	lab := NewAuto()
	d := &params.Distribution{Kind: params.KindNormal, Mean: 5, Stddev: 2}

	a, err := lab.Draw(d, 100, lab.NewRand(42))
	if err != nil {
		t.Fatalf("draw failed: %v", err)
	}
	b, err := lab.Draw(d, 100, lab.NewRand(42))
	if err != nil {
		t.Fatalf("draw failed: %v", err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("draw %d diverged: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestDrawKinds(t *testing.T) {
	lab := NewAuto()
	rnd := lab.NewRand(7)

	u, err := lab.Draw(&params.Distribution{Kind: params.KindUniform, Min: 2, Max: 3}, 1000, rnd)
	if err != nil {
		t.Fatalf("uniform draw failed: %v", err)
	}
	for _, v := range u {
		if v < 2 || v >= 3 {
			t.Fatalf("uniform draw out of range: %v", v)
		}
	}

	p, err := lab.Draw(&params.Distribution{Kind: params.KindPoisson, Lambda: 4}, 100, rnd)
	if err != nil {
		t.Fatalf("poisson draw failed: %v", err)
	}
	for _, v := range p {
		if v < 0 || v != float64(int(v)) {
			t.Fatalf("poisson draw not a count: %v", v)
		}
	}
}

func TestDrawRejectsModelKind(t *testing.T) {
	lab := NewAuto()
	d := &params.Distribution{Kind: params.KindModel, ModelFile: "m.txt"}
	_, err := lab.Draw(d, 10, lab.NewRand(1))
	if !errors.Is(err, errs.ErrUnsupported) {
		t.Fatalf("expected unsupported error, got %v", err)
	}
}

func TestAutoSeedVaries(t *testing.T) {
	a, err := AutoSeed()
	if err != nil {
		t.Fatalf("auto seed failed: %v", err)
	}
	b, err := AutoSeed()
	if err != nil {
		t.Fatalf("auto seed failed: %v", err)
	}
	// 兩次相同的機率是 2^-32，撞到再跑一次即可。
	if a == b {
		t.Fatalf("auto seeds collided: %d", a)
	}
}

func TestCompareSamplesSameStream(t *testing.T) {
	lab := NewAuto()
	d := &params.Distribution{Kind: params.KindNormal, Mean: 0, Stddev: 1}
	a, _ := lab.Draw(d, 500, lab.NewRand(42))
	b, _ := lab.Draw(d, 500, lab.NewRand(42))

	r, err := lab.CompareSamples(a, b)
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}
	if r.KS != 0 || r.L2 != 0 || r.CvM != 0 {
		t.Fatalf("identical streams should have zero distance: %+v", r)
	}

	if _, err := lab.CompareSamples(a, nil); err == nil {
		t.Fatalf("expected error for empty side")
	}
}

func TestCompareSamples2D(t *testing.T) {
	lab := NewAuto()
	rnd := lab.NewRand(31)
	n := 50
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := 0; i < n; i++ {
		xs[i] = rnd.Normal(0, 1)
		ys[i] = rnd.Normal(0, 1)
	}
	cloud := [][]float64{xs, ys}

	r, err := lab.CompareSamples2D(cloud, cloud)
	if err != nil {
		t.Fatalf("compare2d failed: %v", err)
	}
	if r.KS != 0 {
		t.Fatalf("identical clouds should have zero KS: %v", r.KS)
	}

	if _, err := lab.CompareSamples2D(cloud, [][]float64{xs}); err == nil {
		t.Fatalf("expected error for malformed cloud")
	}
}
