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

package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/zintix-labs/statlab/sdk/dist"
)

var lang language.Tag = language.English

// exactKSLimit 是改走精確小樣本 KS 機率的樣本數上限。
// 格子路徑 DP 是 O(n0*n1)，在這個量級以下成本可忽略且精度遠勝漸近式。
const exactKSLimit = 25

// 信賴區間
type CI struct {
	Lo float64 `json:"Lo" yaml:"Lo"`
	Hi float64 `json:"Hi" yaml:"Hi"`
}

// SampleSummary 單一樣本的描述統計
type SampleSummary struct {
	Name     string  `json:"Name" yaml:"Name"`
	N        int     `json:"N" yaml:"N"`
	Mean     float64 `json:"Mean" yaml:"Mean"`
	MeanCI   CI      `json:"MeanCI" yaml:"MeanCI"`
	Std      float64 `json:"Std" yaml:"Std"`
	Variance float64 `json:"Variance" yaml:"Variance"`
	Cv       float64 `json:"Cv" yaml:"Cv"`
	Min      float64 `json:"Min" yaml:"Min"`
	P10      float64 `json:"P10" yaml:"P10"`
	P25      float64 `json:"P25" yaml:"P25"`
	P50      float64 `json:"P50" yaml:"P50"`
	P75      float64 `json:"P75" yaml:"P75"`
	P90      float64 `json:"P90" yaml:"P90"`
	Max      float64 `json:"Max" yaml:"Max"`
}

// Summarize 計算樣本的描述統計。空樣本回傳零值報告。
func Summarize(name string, samples []float64) *SampleSummary {
	s := &SampleSummary{Name: name, N: len(samples)}
	if len(samples) == 0 {
		return s
	}

	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	s.Mean = stat.Mean(sorted, nil)
	s.Variance = stat.Variance(sorted, nil)
	s.Std = math.Sqrt(s.Variance)
	if s.Mean != 0 {
		s.Cv = s.Std / math.Abs(s.Mean)
	}
	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]
	s.P10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	s.P25 = stat.Quantile(0.25, stat.Empirical, sorted, nil)
	s.P50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	s.P75 = stat.Quantile(0.75, stat.Empirical, sorted, nil)
	s.P90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)

	// 平均值的 95% 信賴區間（常態近似）
	if s.N > 1 {
		z := distuv.Normal{Mu: 0, Sigma: 1}.Quantile(0.975)
		se := s.Std / math.Sqrt(float64(s.N))
		s.MeanCI = CI{Lo: s.Mean - z*se, Hi: s.Mean + z*se}
	} else {
		s.MeanCI = CI{Lo: s.Mean, Hi: s.Mean}
	}
	return s
}

// CompareReport 兩樣本比較報告：距離、檢定統計量、同源機率與結論。
type CompareReport struct {
	Title     string  `json:"Title" yaml:"Title"`
	N0        int     `json:"N0" yaml:"N0"`
	N1        int     `json:"N1" yaml:"N1"`
	L2        float64 `json:"L2" yaml:"L2"`
	KS        float64 `json:"KS" yaml:"KS"`
	CvM       float64 `json:"CvM" yaml:"CvM"`
	ScaledKS  float64 `json:"ScaledKS" yaml:"ScaledKS"`
	ScaledCvM float64 `json:"ScaledCvM" yaml:"ScaledCvM"`
	PKS       float64 `json:"PKS" yaml:"PKS"`
	PCvM      float64 `json:"PCvM" yaml:"PCvM"`
	ExactKS   bool    `json:"ExactKS" yaml:"ExactKS"`
	Verdict   string  `json:"Verdict" yaml:"Verdict"`
}

// NewCompareReport 把一次比較結果整理成報告。
// 兩邊樣本數都不超過 exactKSLimit 時，KS 機率走 Massey 精確式，否則走漸近式。
func NewCompareReport(title string, r dist.Result) *CompareReport {
	rep := &CompareReport{
		Title:     title,
		N0:        r.N0,
		N1:        r.N1,
		L2:        r.DomainScaledL2(),
		KS:        r.KS,
		CvM:       r.CvM,
		ScaledKS:  r.ScaledKS(),
		ScaledCvM: r.ScaledCvM(),
	}

	if r.N0 <= exactKSLimit && r.N1 <= exactKSLimit {
		if p, err := dist.KolmogorovProbTwoSmallSamples(r.KS, r.N0, r.N1); err == nil {
			rep.PKS = p
			rep.ExactKS = true
		}
	}
	if !rep.ExactKS {
		rep.PKS = dist.KolmogorovProb(rep.ScaledKS)
	}
	rep.PCvM = dist.CramerVonMisesProb(rep.ScaledCvM, r.N0, r.N1)

	switch {
	case rep.PKS < 0.01:
		rep.Verdict = "rejected"
	case rep.PKS < 0.05:
		rep.Verdict = "suspect"
	default:
		rep.Verdict = "consistent"
	}
	return rep
}

// WriteWith 以指定的渲染器輸出報告。
func (r *CompareReport) WriteWith(w io.Writer, rep CompareReportRender) error {
	return rep.Write(w, r)
}

// StdOut 輸出終端表格與耗時統計。
func (r *CompareReport) StdOut(ut time.Duration) {
	formatDuration(ut, r.N0+r.N1)
	sk, sm := r.fmtBasic()
	str := fmtTable(r.Title, sk, sm)
	fmt.Println(str)
}

// WriteWith 以指定的渲染器輸出描述統計。
func (s *SampleSummary) WriteWith(w io.Writer, rep SummaryRender) error {
	return rep.Write(w, s)
}

// StdOut 輸出終端表格。
func (s *SampleSummary) StdOut() {
	sk, sm := s.fmtBasic()
	str := fmtTable(s.Name, sk, sm)
	fmt.Println(str)
}

// ============================================================
// ** 內部方法 **
// ============================================================

func formatDuration(d time.Duration, samples int) {
	p := message.NewPrinter(lang)
	if d < 0 {
		d = -d
	}
	sec := d.Seconds()
	if sec <= 0 {
		sec = 1e-9
	}
	sps := int(float64(samples) / sec)
	if sec < 60.0 {
		p.Printf("used: %.2f seconds\nsps : %d samples/sec\n", sec, sps)
		return
	}
	s := int(d.Seconds()) % 60
	m := int(d.Minutes()) % 60
	h := int(d.Hours())
	if h == 0 {
		p.Printf("used: %dm %ds\nsps : %d samples/sec\n", m, s, sps)
		return
	}
	p.Printf("used: %dh:%dm:%ds\nsps : %d samples/sec\n", h, m, s, sps)
}

func (r *CompareReport) fmtBasic() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	basic := map[string]string{
		"Samples":    p.Sprintf("%d vs %d", r.N0, r.N1),
		"L2":         p.Sprintf("%.6f", r.L2),
		"KS":         p.Sprintf("%.6f", r.KS),
		"CvM":        p.Sprintf("%.6f", r.CvM),
		"Scaled KS":  p.Sprintf("%.6f", r.ScaledKS),
		"Scaled CvM": p.Sprintf("%.6f", r.ScaledCvM),
		"P(KS)":      p.Sprintf("%.4f", r.PKS),
		"P(CvM)":     p.Sprintf("%.4f", r.PCvM),
		"KS Method":  ksMethod(r.ExactKS),
		"Verdict":    r.Verdict,
	}
	keys := []string{"Samples", "L2", "KS", "CvM", "Scaled KS", "Scaled CvM", "P(KS)", "P(CvM)", "KS Method", "Verdict"}
	return keys, basic
}

func ksMethod(exact bool) string {
	if exact {
		return "exact (Massey)"
	}
	return "asymptotic"
}

func (s *SampleSummary) fmtBasic() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	basic := map[string]string{
		"Samples":     p.Sprintf("%d", s.N),
		"Mean":        p.Sprintf("%.6f", s.Mean),
		"Mean 95% CI": p.Sprintf("[%.6f, %.6f]", s.MeanCI.Lo, s.MeanCI.Hi),
		"Std":         p.Sprintf("%.6f", s.Std),
		"CV":          p.Sprintf("%.4f", s.Cv),
		"Min":         p.Sprintf("%.6f", s.Min),
		"P10":         p.Sprintf("%.6f", s.P10),
		"P50":         p.Sprintf("%.6f", s.P50),
		"P90":         p.Sprintf("%.6f", s.P90),
		"Max":         p.Sprintf("%.6f", s.Max),
	}
	keys := []string{"Samples", "Mean", "Mean 95% CI", "Std", "CV", "Min", "P10", "P50", "P90", "Max"}
	return keys, basic
}

func fmtTable(title string, keys []string, msg map[string]string) string {
	p := message.NewPrinter(lang)
	maxKeyLen := 0
	maxValLen := 0
	for k, m := range msg {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(m); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2

	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", maxKeyLen+1+maxValLen) + "+\n"

	totalInner := maxKeyLen + maxValLen + 1
	titleW := runewidth.StringWidth(title)

	left := (totalInner - titleW) / 2
	right := totalInner - titleW - left

	fmtStr := top
	fmtStr += p.Sprintf("|%s%s%s|\n", blank(left), title, blank(right))
	fmtStr += divider
	for _, k := range keys {
		fmtStr += p.Sprintf("| %s%s | %s%s |\n", k, blank(maxKeyLen-2-runewidth.StringWidth(k)), msg[k], blank(maxValLen-2-runewidth.StringWidth(msg[k])))
	}
	fmtStr += divider

	return fmtStr
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}
