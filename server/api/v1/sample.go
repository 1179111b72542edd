package v1

import (
	"encoding/json"
	"net/http"

	"github.com/zintix-labs/statlab"
	"github.com/zintix-labs/statlab/dto"
	"github.com/zintix-labs/statlab/errs"
	"github.com/zintix-labs/statlab/sdk/core"
	"github.com/zintix-labs/statlab/server/httperr"
	"github.com/zintix-labs/statlab/server/svrcfg"
)

// Sample 依分佈描述抽樣，並回傳可回放的 RNG 狀態。
//
// 流程：
//  1. decode SampleRequest（GET query / POST JSON）
//  2. 解析 RNG 起點：快照 > 指定 seed > crypto/rand 自動 seed
//  3. 抽樣前後各取一次核心快照（start/after），連同 seed 一併回傳
//
// 回放合約：
//   - 帶回 start_b64u 可重現本次 draws。
//   - 把 after_b64u 當作下一次的 start_b64u 可延續同一條亂數流水。
func (c *SampleHandler) Sample(w http.ResponseWriter, q *http.Request) {
	if q.Method != http.MethodGet && q.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	req, err := dto.DecodeSampleRequest(q)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	d, err := req.Distribution()
	if err != nil {
		httperr.Errs(w, err)
		return
	}

	rnd, seed, err := c.resolveRand(req)
	if err != nil {
		httperr.Errs(w, err)
		return
	}

	startSnap, err := rnd.Snapshot()
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	draws, err := c.lab.Draw(d, req.Draws, rnd)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	afterSnap, err := rnd.Snapshot()
	if err != nil {
		httperr.Errs(w, err)
		return
	}

	result := dto.SampleResult{
		Kind:  d.Kind,
		Draws: draws,
		State: dto.CoreState{
			StartCoreSnapB64U: dto.EncodeCoreSnap(startSnap),
			AfterCoreSnapB64U: dto.EncodeCoreSnap(afterSnap),
			Seed:              seed,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		httperr.Errs(w, err)
		return
	}
}

// resolveRand 解析本次抽樣的 RNG 起點。
// 快照優先於 seed（decode 層已擋掉兩者並存）；都沒有就自動產生 seed。
func (c *SampleHandler) resolveRand(req *dto.SampleRequest) (*core.Core, uint32, error) {
	if req.StartCoreSnapB64U != "" {
		snap, err := dto.DecodeCoreSnap(req.StartCoreSnapB64U)
		if err != nil {
			return nil, 0, err
		}
		rnd := c.lab.NewRand(0)
		if err := rnd.Restore(snap); err != nil {
			return nil, 0, err
		}
		// 快照內含出生 seed，還原後照常回報
		return rnd, rnd.Seed(), nil
	}
	if req.HasSeed {
		return c.lab.NewRand(req.Seed), req.Seed, nil
	}
	return c.lab.NewRandAuto()
}

// ============================================================
// ** SampleHandler **
// ============================================================

type SampleHandler struct {
	lab *statlab.Lab
}

func NewSampleHandler(sCfg *svrcfg.SvrCfg) (*SampleHandler, error) {
	if sCfg == nil || sCfg.Lab == nil {
		return nil, errs.NewFatal("lab is required")
	}
	return &SampleHandler{lab: sCfg.Lab}, nil
}
