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
	"github.com/zintix-labs/statlab/corefmt"
	"github.com/zintix-labs/statlab/errs"
	"github.com/zintix-labs/statlab/stats"
)

// CompareResult 為對外輸出的兩樣本比較報告序列化結構。
type CompareResult struct {
	Title     string  `json:"title,omitempty"` // 報告標題（通常是實驗名）
	N0        int     `json:"n0"`              // 樣本數（A）
	N1        int     `json:"n1"`              // 樣本數（B）
	L2        float64 `json:"l2"`              // 定義域正規化 L2 距離
	KS        float64 `json:"ks"`              // KS 統計量（未縮放）
	CvM       float64 `json:"cvm"`             // CvM 統計量（未縮放）
	ScaledKS  float64 `json:"scaled_ks"`       // 乘上樣本數因子後的 KS
	ScaledCvM float64 `json:"scaled_cvm"`      // 乘上樣本數因子後的 CvM
	PKS       float64 `json:"p_ks"`            // KS 同源機率
	PCvM      float64 `json:"p_cvm"`           // CvM 同源機率
	ExactKS   bool    `json:"exact_ks"`        // KS 機率是否走精確式（小樣本）
	Verdict   string  `json:"verdict"`         // consistent / suspect / rejected
}

func NewCompareResultDTO(rep *stats.CompareReport) (CompareResult, error) {
	if rep == nil {
		return CompareResult{}, errs.NewWarn("compare report is nil")
	}
	return CompareResult{
		Title:     rep.Title,
		N0:        rep.N0,
		N1:        rep.N1,
		L2:        rep.L2,
		KS:        rep.KS,
		CvM:       rep.CvM,
		ScaledKS:  rep.ScaledKS,
		ScaledCvM: rep.ScaledCvM,
		PKS:       rep.PKS,
		PCvM:      rep.PCvM,
		ExactKS:   rep.ExactKS,
		Verdict:   rep.Verdict,
	}, nil
}

// CoreState 是回應端的 RNG 狀態對：回放/續抽合約的輸出側。
//
//   - start_b64u：本次抽樣「開始前」的核心快照。帶回同一份 start_b64u 可重現本次結果。
//   - after_b64u：本次抽樣「結束後」的核心快照。當作下一次的 start_b64u 可延續流水。
//   - seed：本次使用的出生 seed（外部未提供時由 crypto/rand 產生），一律回傳供審計留存。
type CoreState struct {
	StartCoreSnapB64U string `json:"start_b64u"`
	AfterCoreSnapB64U string `json:"after_b64u"`
	Seed              uint32 `json:"seed"`
}

// EncodeCoreSnap 把核心快照包進 uvarint 長度前綴的 blob frame 再轉 Base64URL。
// 長度前綴讓解碼端能偵測截斷或殘料，而不是默默吃下壞快照。
func EncodeCoreSnap(snap []byte) string {
	return corefmt.EncodeBase64URL(corefmt.EncodeBlobFrame(snap))
}

// DecodeCoreSnap 還原 EncodeCoreSnap 的輸出。frame 之後不允許殘料。
func DecodeCoreSnap(s string) ([]byte, error) {
	raw, err := corefmt.DecodeBase64URL(s)
	if err != nil {
		return nil, errs.NewWarn("core snap decode failed " + err.Error())
	}
	payload, rest, err := corefmt.DecodeBlobFrame(raw)
	if err != nil {
		return nil, errs.NewWarn("core snap frame decode failed " + err.Error())
	}
	if len(rest) != 0 {
		return nil, errs.NewWarn("core snap has trailing bytes")
	}
	return payload, nil
}

// SampleResult 為抽樣請求的回應：抽出的樣本與可回放的 RNG 狀態。
type SampleResult struct {
	Kind  string    `json:"kind"`
	Draws []float64 `json:"draws"`
	State CoreState `json:"state"`
}

// InvCDFResult 為反變換抽樣請求的回應。
type InvCDFResult struct {
	Draws []float64 `json:"draws"`
	State CoreState `json:"state"`
}
