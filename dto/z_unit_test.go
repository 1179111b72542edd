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

package dto

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zintix-labs/statlab/params"
	"github.com/zintix-labs/statlab/sdk/core"
)

func TestDecodeCompareRequestPOST(t *testing.T) {
	payload := map[string]any{
		"title":     "a-vs-b",
		"samples_a": []float64{1, 2, 3},
		"samples_b": []float64{2, 3, 4},
	}
	data, _ := json.Marshal(payload)
	r := httptest.NewRequest(http.MethodPost, "/v1/compare", bytes.NewReader(data))
	req, err := DecodeCompareRequest(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Title != "a-vs-b" || len(req.SamplesA) != 3 || len(req.SamplesB) != 3 {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestDecodeCompareRequestRejectsEmptySide(t *testing.T) {
	data := []byte(`{"samples_a":[1,2],"samples_b":[]}`)
	r := httptest.NewRequest(http.MethodPost, "/v1/compare", bytes.NewReader(data))
	if _, err := DecodeCompareRequest(r); err == nil {
		t.Fatalf("expected error for empty samples_b")
	}
}

func TestDecodeCompareRequestRejectsGET(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/v1/compare", nil)
	if _, err := DecodeCompareRequest(r); err == nil {
		t.Fatalf("expected method not allowed")
	}
}

func TestDecodeSampleRequestGET(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/v1/sample?kind=normal&mean=5&stddev=2&draws=100&seed=42&has_seed=true", nil)
	req, err := DecodeSampleRequest(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Kind != "normal" || req.Mean != 5 || req.Stddev != 2 {
		t.Fatalf("unexpected request: %+v", req)
	}
	if req.Draws != 100 || req.Seed != 42 || !req.HasSeed {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestDecodeSampleRequestPOST(t *testing.T) {
	data := []byte(`{"kind":"poisson","lambda":3.5,"draws":10}`)
	r := httptest.NewRequest(http.MethodPost, "/v1/sample", bytes.NewReader(data))
	req, err := DecodeSampleRequest(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Kind != "poisson" || req.Lambda != 3.5 || req.Draws != 10 {
		t.Fatalf("unexpected request: %+v", req)
	}
	if req.HasSeed {
		t.Fatalf("has_seed should default to false")
	}
}

func TestDecodeSampleRequestSeedContract(t *testing.T) {
	cases := []string{
		`{"kind":"normal","mean":0,"stddev":1,"draws":5,"seed":7}`,                       // seed 無 has_seed
		`{"kind":"normal","mean":0,"stddev":1,"draws":5,"seed":7,"has_seed":true,"start_b64u":"AAAA"}`, // seed 與快照互斥
		`{"kind":"normal","mean":0,"stddev":1,"draws":0}`,                                // draws < 1
	}
	for i, body := range cases {
		r := httptest.NewRequest(http.MethodPost, "/v1/sample", bytes.NewReader([]byte(body)))
		if _, err := DecodeSampleRequest(r); err == nil {
			t.Fatalf("case %d: expected contract error", i)
		}
	}
}

func TestDecodeSampleRequestRejectsUnknownFields(t *testing.T) {
	data := []byte(`{"kind":"normal","mean":0,"stddev":1,"draws":5,"unknown":true}`)
	r := httptest.NewRequest(http.MethodPost, "/v1/sample", bytes.NewReader(data))
	if _, err := DecodeSampleRequest(r); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestSampleRequestDistribution(t *testing.T) {
	sr := &SampleRequest{Kind: params.KindUniform, Min: 0, Max: 1, Draws: 10}
	d, err := sr.Distribution()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Kind != params.KindUniform || d.Max != 1 {
		t.Fatalf("unexpected distribution: %+v", d)
	}

	sr = &SampleRequest{Kind: params.KindUniform, Min: 2, Max: 1, Draws: 10}
	if _, err := sr.Distribution(); err == nil {
		t.Fatalf("expected error for min >= max")
	}

	sr = &SampleRequest{Kind: params.KindModel, Draws: 10}
	if _, err := sr.Distribution(); err == nil {
		t.Fatalf("expected error for model kind")
	}
}

func TestDecodeInvCDFRequest(t *testing.T) {
	data := []byte(`{"model":[1,2,2,3],"draws":4,"seed":9,"has_seed":true}`)
	r := httptest.NewRequest(http.MethodPost, "/v1/invcdf", bytes.NewReader(data))
	req, err := DecodeInvCDFRequest(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(req.Model) != 4 || req.Draws != 4 || req.Seed != 9 {
		t.Fatalf("unexpected request: %+v", req)
	}

	bad := []byte(`{"model":[],"draws":4}`)
	r = httptest.NewRequest(http.MethodPost, "/v1/invcdf", bytes.NewReader(bad))
	if _, err := DecodeInvCDFRequest(r); err == nil {
		t.Fatalf("expected error for empty model")
	}
}

func TestCoreSnapRoundTrip(t *testing.T) {
	tw := core.NewTwister(42)
	for i := 0; i < 100; i++ {
		tw.Next()
	}
	snap, err := tw.Snapshot()
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}

	b64u := EncodeCoreSnap(snap)
	got, err := DecodeCoreSnap(b64u)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !bytes.Equal(got, snap) {
		t.Fatalf("snapshot round trip mismatch")
	}

	restored := core.NewTwister(0)
	if err := restored.Restore(got); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if restored.Next() != tw.Next() {
		t.Fatalf("restored stream diverged")
	}
}

func TestDecodeCoreSnapRejectsGarbage(t *testing.T) {
	if _, err := DecodeCoreSnap("not base64url !!!"); err == nil {
		t.Fatalf("expected base64 error")
	}
	// 合法 base64 但 frame 被截斷
	truncated := EncodeCoreSnap([]byte{1, 2, 3, 4})[:4]
	if _, err := DecodeCoreSnap(truncated); err == nil {
		t.Fatalf("expected truncated frame error")
	}
}
