package v1

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zintix-labs/statlab"
	"github.com/zintix-labs/statlab/dto"
	"github.com/zintix-labs/statlab/server/svrcfg"
)

func testCfg() *svrcfg.SvrCfg {
	return &svrcfg.SvrCfg{Lab: statlab.NewAuto()}
}

func postJSON(t *testing.T, h http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	r := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	w := httptest.NewRecorder()
	h(w, r)
	return w
}

func TestCompareEndpoint(t *testing.T) {
	c, err := NewCompareHandler(testCfg())
	if err != nil {
		t.Fatalf("handler setup failed: %v", err)
	}

	w := postJSON(t, c.Compare, "/v1/compare", map[string]any{
		"title":     "same",
		"samples_a": []float64{1, 2, 2, 3},
		"samples_b": []float64{1, 2, 2, 3},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", w.Code, w.Body.String())
	}
	var res dto.CompareResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
	if res.Title != "same" || res.N0 != 4 || res.N1 != 4 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.KS != 0 || res.Verdict != "consistent" {
		t.Fatalf("identical samples should be consistent: %+v", res)
	}
}

func TestCompareEndpointRejectsBadBody(t *testing.T) {
	c, _ := NewCompareHandler(testCfg())
	r := httptest.NewRequest(http.MethodPost, "/v1/compare", bytes.NewReader([]byte(`{"samples_a":[1]}`)))
	w := httptest.NewRecorder()
	c.Compare(w, r)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestSampleEndpointSeedDeterminism(t *testing.T) {
	s, err := NewSampleHandler(testCfg())
	if err != nil {
		t.Fatalf("handler setup failed: %v", err)
	}

	body := map[string]any{
		"kind": "normal", "mean": 5, "stddev": 2,
		"draws": 50, "seed": 42, "has_seed": true,
	}
	w1 := postJSON(t, s.Sample, "/v1/sample", body)
	w2 := postJSON(t, s.Sample, "/v1/sample", body)
	if w1.Code != http.StatusOK || w2.Code != http.StatusOK {
		t.Fatalf("unexpected status %d / %d", w1.Code, w2.Code)
	}

	var r1, r2 dto.SampleResult
	if err := json.Unmarshal(w1.Body.Bytes(), &r1); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if err := json.Unmarshal(w2.Body.Bytes(), &r2); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if r1.State.Seed != 42 || len(r1.Draws) != 50 {
		t.Fatalf("unexpected result: seed=%d draws=%d", r1.State.Seed, len(r1.Draws))
	}
	for i := range r1.Draws {
		if r1.Draws[i] != r2.Draws[i] {
			t.Fatalf("draw %d diverged with identical seed", i)
		}
	}
	if r1.State.StartCoreSnapB64U != r2.State.StartCoreSnapB64U {
		t.Fatalf("start snapshots should match for identical seeds")
	}
}

func TestSampleEndpointSnapshotReplay(t *testing.T) {
	s, _ := NewSampleHandler(testCfg())

	// 先抽一段，拿到 after 快照
	first := postJSON(t, s.Sample, "/v1/sample", map[string]any{
		"kind": "uniform", "min": 0, "max": 1,
		"draws": 10, "seed": 7, "has_seed": true,
	})
	var r1 dto.SampleResult
	if err := json.Unmarshal(first.Body.Bytes(), &r1); err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	// 用 after 快照續抽，應等於同一 seed 連續抽 20 的後半段
	resumed := postJSON(t, s.Sample, "/v1/sample", map[string]any{
		"kind": "uniform", "min": 0, "max": 1,
		"draws": 10, "start_b64u": r1.State.AfterCoreSnapB64U,
	})
	var r2 dto.SampleResult
	if err := json.Unmarshal(resumed.Body.Bytes(), &r2); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if r2.State.Seed != 7 {
		t.Fatalf("resumed seed should come from snapshot, got %d", r2.State.Seed)
	}

	full := postJSON(t, s.Sample, "/v1/sample", map[string]any{
		"kind": "uniform", "min": 0, "max": 1,
		"draws": 20, "seed": 7, "has_seed": true,
	})
	var rf dto.SampleResult
	if err := json.Unmarshal(full.Body.Bytes(), &rf); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		if r2.Draws[i] != rf.Draws[10+i] {
			t.Fatalf("resumed draw %d diverged from continuous stream", i)
		}
	}
}

func TestSampleEndpointGET(t *testing.T) {
	s, _ := NewSampleHandler(testCfg())
	r := httptest.NewRequest(http.MethodGet, "/v1/sample?kind=poisson&lambda=4&draws=5&seed=9&has_seed=true", nil)
	w := httptest.NewRecorder()
	s.Sample(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", w.Code, w.Body.String())
	}
	var res dto.SampleResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if res.Kind != "poisson" || len(res.Draws) != 5 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestSampleEndpointRejectsBadDistribution(t *testing.T) {
	s, _ := NewSampleHandler(testCfg())
	w := postJSON(t, s.Sample, "/v1/sample", map[string]any{
		"kind": "uniform", "min": 3, "max": 1, "draws": 5,
	})
	if w.Code == http.StatusOK {
		t.Fatalf("expected error for min >= max")
	}
}

func TestInvCDFEndpoint(t *testing.T) {
	f, err := NewInvCDFHandler(testCfg())
	if err != nil {
		t.Fatalf("handler setup failed: %v", err)
	}

	body := map[string]any{
		"model": []float64{1, 2, 2, 3, 4},
		"draws": 30, "seed": 11, "has_seed": true,
	}
	w1 := postJSON(t, f.InvCDF, "/v1/invcdf", body)
	w2 := postJSON(t, f.InvCDF, "/v1/invcdf", body)
	if w1.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", w1.Code, w1.Body.String())
	}

	var r1, r2 dto.InvCDFResult
	if err := json.Unmarshal(w1.Body.Bytes(), &r1); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if err := json.Unmarshal(w2.Body.Bytes(), &r2); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(r1.Draws) != 30 || r1.State.Seed != 11 {
		t.Fatalf("unexpected result: draws=%d seed=%d", len(r1.Draws), r1.State.Seed)
	}
	for i := range r1.Draws {
		if r1.Draws[i] != r2.Draws[i] {
			t.Fatalf("draw %d diverged with identical seed", i)
		}
		// 反變換輸出必須落在模型樣本值域的錨點範圍內
		if r1.Draws[i] < 1-1e-6 || r1.Draws[i] > 4 {
			t.Fatalf("draw %d out of model range: %v", i, r1.Draws[i])
		}
	}
}
