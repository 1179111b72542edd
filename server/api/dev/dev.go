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

// Package dev 提供開發期的輔助 endpoints。
//
// 注意（contract）：
//   - 這不是 production API；它偏向 debug / tooling，行為允許更寬鬆。
//   - 這裡的錯誤處理走 `httperr.Errs`（以 errs.Warn/errs.Fatal 對應 HTTP response）。
package dev

import (
	"encoding/json"
	"net/http"

	"github.com/zintix-labs/statlab"
	"github.com/zintix-labs/statlab/server/httperr"
	"github.com/zintix-labs/statlab/server/netsvr"
	"github.com/zintix-labs/statlab/server/svrcfg"
)

// Register 註冊 dev routes。
//
// Routes：
//   - GET /dev/health ：健康檢查（組裝完成即回 ok）。
//   - GET /dev/seed   ：產生一個 crypto/rand seed，給手動測試 /v1/sample 用。
func Register(svr netsvr.NetRouter, cfg *svrcfg.SvrCfg) {
	svr.Get("/dev/health", devHealth(cfg))
	svr.Get("/dev/seed", devSeed)
}

func devHealth(cfg *svrcfg.SvrCfg) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		if cfg == nil || cfg.Lab == nil {
			status = "lab missing"
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
	}
}

func devSeed(w http.ResponseWriter, r *http.Request) {
	seed, err := statlab.AutoSeed()
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]uint32{"seed": seed})
}
