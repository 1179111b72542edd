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

// Package index 提供服務的根頁面：列出可用 endpoints，給人看的，不是 API contract。
package index

import "net/http"

const indexText = `statlab

POST /v1/compare  兩組樣本 -> 距離 / 檢定統計量 / 同源機率
POST /v1/sample   封閉式分佈 (uniform/normal/poisson) -> 樣本 + 可回放 RNG 狀態
GET  /v1/sample   同上, query string 版 (不支援快照回放)
POST /v1/invcdf   模型樣本 -> 反變換抽樣
GET  /dev/health  健康檢查
GET  /dev/seed    產生一個 crypto/rand seed (方便手動測試)
`

func IndexHandlerFn(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(indexText))
}
