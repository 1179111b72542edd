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

package stats_test

import (
	"math"
	"strings"
	"testing"

	"github.com/zintix-labs/statlab/sdk/dist"
	"github.com/zintix-labs/statlab/stats"
)

func TestSummarize(t *testing.T) {
	s := stats.Summarize("demo", []float64{4, 1, 3, 2})
	if s.N != 4 {
		t.Fatalf("N: got %d", s.N)
	}
	if math.Abs(s.Mean-2.5) > 1e-15 {
		t.Fatalf("Mean: got %v", s.Mean)
	}
	wantVar := 5.0 / 3.0
	if math.Abs(s.Variance-wantVar) > 1e-12 {
		t.Fatalf("Variance: got %v, want %v", s.Variance, wantVar)
	}
	if math.Abs(s.Std-math.Sqrt(wantVar)) > 1e-12 {
		t.Fatalf("Std: got %v", s.Std)
	}
	if s.Min != 1 || s.Max != 4 {
		t.Fatalf("Min/Max: got %v/%v", s.Min, s.Max)
	}
	if s.P50 != 2 {
		t.Fatalf("P50: got %v, want 2", s.P50)
	}
	if s.P90 != 4 {
		t.Fatalf("P90: got %v, want 4", s.P90)
	}
	if s.MeanCI.Lo >= s.Mean || s.MeanCI.Hi <= s.Mean {
		t.Fatalf("CI does not bracket mean: %+v", s.MeanCI)
	}

	empty := stats.Summarize("empty", nil)
	if empty.N != 0 || empty.Mean != 0 {
		t.Fatalf("empty summary: %+v", empty)
	}
}

func mustDist(t *testing.T, samples []float64) *dist.Dist1D {
	t.Helper()
	d, err := dist.NewDist1D(samples)
	if err != nil {
		t.Fatalf("NewDist1D: %v", err)
	}
	return d
}

func TestNewCompareReportExactSmall(t *testing.T) {
	a := mustDist(t, []float64{1, 2, 2, 3})
	b := mustDist(t, []float64{2, 3, 4})
	rep := stats.NewCompareReport("small", dist.Compare(a, b))
	if !rep.ExactKS {
		t.Fatalf("small samples should use the exact KS path")
	}
	if rep.N0 != 4 || rep.N1 != 3 {
		t.Fatalf("sample counts: %d, %d", rep.N0, rep.N1)
	}
	if rep.PKS <= 0 || rep.PKS > 1 {
		t.Fatalf("PKS out of range: %v", rep.PKS)
	}
	if rep.Verdict == "" {
		t.Fatalf("missing verdict")
	}
}

func TestNewCompareReportAsymptotic(t *testing.T) {
	xs := make([]float64, 100)
	ys := make([]float64, 100)
	for i := range xs {
		xs[i] = float64(i)
		ys[i] = float64(i) + 0.5
	}
	a := mustDist(t, xs)
	b := mustDist(t, ys)
	rep := stats.NewCompareReport("large", dist.Compare(a, b))
	if rep.ExactKS {
		t.Fatalf("large samples should use the asymptotic KS path")
	}
	if rep.Verdict != "consistent" {
		t.Fatalf("interleaved shifted grid should look consistent, got %q (PKS=%v)", rep.Verdict, rep.PKS)
	}
}

func TestRenderers(t *testing.T) {
	a := mustDist(t, []float64{1, 2, 2, 3})
	b := mustDist(t, []float64{2, 3, 4})
	rep := stats.NewCompareReport("render", dist.Compare(a, b))

	var jb strings.Builder
	if err := rep.WriteWith(&jb, &stats.JsonCompareReportRender{}); err != nil {
		t.Fatalf("json render: %v", err)
	}
	if !strings.Contains(jb.String(), "\"Verdict\"") {
		t.Fatalf("json output missing fields: %s", jb.String())
	}

	var yb strings.Builder
	if err := rep.WriteWith(&yb, &stats.YAMLCompareReportRender{}); err != nil {
		t.Fatalf("yaml render: %v", err)
	}
	if !strings.Contains(yb.String(), "Verdict:") {
		t.Fatalf("yaml output missing fields: %s", yb.String())
	}

	sum := stats.Summarize("render", []float64{1, 2, 3})
	var sb strings.Builder
	if err := sum.WriteWith(&sb, &stats.YAMLSummaryRender{}); err != nil {
		t.Fatalf("yaml summary render: %v", err)
	}
	if !strings.Contains(sb.String(), "Mean:") {
		t.Fatalf("yaml summary missing fields: %s", sb.String())
	}
}
