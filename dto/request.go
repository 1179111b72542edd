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
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/zintix-labs/statlab/errs"
	"github.com/zintix-labs/statlab/params"
)

// 防止 body 過大（預設 1MiB）
const maxBody = 1 << 20

func decodeJSONBody(r *http.Request, dst any) error {
	body := io.LimitReader(r.Body, maxBody)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}

// CompareRequest 是兩樣本比較的請求。
type CompareRequest struct {
	Title    string    `json:"title,omitempty"` // 可選：報告標題
	SamplesA []float64 `json:"samples_a"`       // 樣本 A（原始觀測值）
	SamplesB []float64 `json:"samples_b"`       // 樣本 B
}

// DecodeCompareRequest 會把 HTTP 請求解碼成 CompareRequest。
//
// 只支援 POST：樣本是陣列，query string 不適合承載。
// 這裡只負責解碼與基本校驗；統計上的合法性（非有限值剔除後是否為空）由 dist 層決定。
func DecodeCompareRequest(r *http.Request) (*CompareRequest, error) {
	if r == nil {
		return nil, errs.NewWarn("nil request")
	}
	if r.Method != http.MethodPost {
		return nil, fmt.Errorf("method not allowed")
	}
	req := new(CompareRequest)
	if err := decodeJSONBody(r, req); err != nil {
		return nil, err
	}
	if len(req.SamplesA) == 0 || len(req.SamplesB) == 0 {
		return nil, errs.NewWarn("samples_a and samples_b are both required")
	}
	return req, nil
}

// SampleRequest 是封閉式分佈（uniform/normal/poisson）的抽樣請求。
//
// Seed / HasSeed Contract（強硬約束，避免 seed=0 的雙重語意）：
//   - 若 has_seed 為 false（或未提供），則 seed 必須省略；否則視為 request 格式錯誤。
//   - 若 has_seed 為 true，則視為有指定 seed；seed 若省略則視為 0。
//
// StartCoreSnapB64U（start_b64u）語意：
//   - 缺省：新抽樣。有 seed 就用 seed 起始；沒 seed 由引擎以 crypto/rand 產生並回傳。
//   - 有值：回放/續抽。引擎從該快照 restore RNG 後開始抽；此時不得同時指定 seed。
//   - 引擎的輸入只接受 start_b64u；after_b64u 只會出現在回應（CoreState）。
type SampleRequest struct {
	Kind              string  `json:"kind"`
	Min               float64 `json:"min,omitempty"`
	Max               float64 `json:"max,omitempty"`
	Mean              float64 `json:"mean,omitempty"`
	Stddev            float64 `json:"stddev,omitempty"`
	Lambda            float64 `json:"lambda,omitempty"`
	Draws             int     `json:"draws"`
	Seed              uint32  `json:"seed,omitempty"`
	HasSeed           bool    `json:"has_seed,omitempty"`
	StartCoreSnapB64U string  `json:"start_b64u,omitempty"`
}

// DecodeSampleRequest 會把 HTTP 請求解碼成 SampleRequest。
//
// 支援：
//   - GET：從 query string 讀取參數（kind/min/max/mean/stddev/lambda/draws/seed/has_seed）。
//     注意：GET 建議僅用於新抽樣或簡單測試；快照回放（start_b64u）建議使用 POST。
//   - POST：從 JSON body 反序列化（支援 start_b64u）。
func DecodeSampleRequest(r *http.Request) (*SampleRequest, error) {
	if r == nil {
		return nil, errs.NewWarn("nil request")
	}

	req := new(SampleRequest)

	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		req.Kind = q.Get("kind")

		for _, f := range []struct {
			key string
			dst *float64
		}{
			{"min", &req.Min}, {"max", &req.Max},
			{"mean", &req.Mean}, {"stddev", &req.Stddev},
			{"lambda", &req.Lambda},
		} {
			if s := q.Get(f.key); s != "" {
				v, err := strconv.ParseFloat(s, 64)
				if err != nil {
					return nil, errs.NewWarn(fmt.Sprintf("invalid %s: %v", f.key, err))
				}
				*f.dst = v
			}
		}

		if s := q.Get("draws"); s != "" {
			v, err := strconv.Atoi(s)
			if err != nil {
				return nil, errs.NewWarn(fmt.Sprintf("invalid draws: %v", err))
			}
			req.Draws = v
		}

		if s := q.Get("seed"); s != "" {
			u, err := strconv.ParseUint(s, 10, 32)
			if err != nil {
				return nil, errs.NewWarn(fmt.Sprintf("invalid seed: %v", err))
			}
			req.Seed = uint32(u)
		}

		if s := q.Get("has_seed"); s != "" {
			v, err := strconv.ParseBool(s)
			if err != nil {
				return nil, errs.NewWarn("invalid has_seed value " + err.Error())
			}
			req.HasSeed = v
		}

	case http.MethodPost:
		if err := decodeJSONBody(r, req); err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("method not allowed")
	}

	if err := req.validContract(); err != nil {
		return nil, err
	}
	return req, nil
}

func (sr *SampleRequest) validContract() error {
	if !sr.HasSeed && sr.Seed != 0 {
		return errs.NewWarn("has_seed is false but seed is not zero")
	}
	if sr.HasSeed && sr.StartCoreSnapB64U != "" {
		return errs.NewWarn("seed and start_b64u are mutually exclusive")
	}
	if sr.Draws < 1 {
		return errs.NewWarn(fmt.Sprintf("draws must be >= 1, got %d", sr.Draws))
	}
	return nil
}

// Distribution 把請求欄位轉成分佈描述並檢查參數範圍。
func (sr *SampleRequest) Distribution() (*params.Distribution, error) {
	d := &params.Distribution{
		Kind:   sr.Kind,
		Min:    sr.Min,
		Max:    sr.Max,
		Mean:   sr.Mean,
		Stddev: sr.Stddev,
		Lambda: sr.Lambda,
	}
	if d.Kind == params.KindModel {
		// model 走 /v1/invcdf，這裡只收封閉式分佈
		return nil, errs.NewWarn("model distribution is not samplable here, use the invcdf endpoint")
	}
	if err := d.Valid(); err != nil {
		return nil, err
	}
	return d, nil
}

// InvCDFRequest 是「模型樣本 → 反變換抽樣」的請求。
//
// Seed / HasSeed 合約與 SampleRequest 相同；模型樣本是陣列，故只支援 POST。
type InvCDFRequest struct {
	Model   []float64 `json:"model"` // 模型樣本（建經驗分佈用）
	Draws   int       `json:"draws"`
	Seed    uint32    `json:"seed,omitempty"`
	HasSeed bool      `json:"has_seed,omitempty"`
}

// DecodeInvCDFRequest 會把 HTTP 請求解碼成 InvCDFRequest。
func DecodeInvCDFRequest(r *http.Request) (*InvCDFRequest, error) {
	if r == nil {
		return nil, errs.NewWarn("nil request")
	}
	if r.Method != http.MethodPost {
		return nil, fmt.Errorf("method not allowed")
	}
	req := new(InvCDFRequest)
	if err := decodeJSONBody(r, req); err != nil {
		return nil, err
	}
	if len(req.Model) == 0 {
		return nil, errs.NewWarn("model samples are required")
	}
	if !req.HasSeed && req.Seed != 0 {
		return nil, errs.NewWarn("has_seed is false but seed is not zero")
	}
	if req.Draws < 1 {
		return nil, errs.NewWarn(fmt.Sprintf("draws must be >= 1, got %d", req.Draws))
	}
	return req, nil
}
