package v1

import (
	"encoding/json"
	"net/http"

	"github.com/zintix-labs/statlab"
	"github.com/zintix-labs/statlab/dto"
	"github.com/zintix-labs/statlab/errs"
	"github.com/zintix-labs/statlab/server/httperr"
	"github.com/zintix-labs/statlab/server/svrcfg"
)

// InvCDF 從模型樣本建經驗分佈，以反變換抽樣產生新樣本。
//
// 流程：
//  1. decode InvCDFRequest（模型樣本 + 抽樣數 + 可選 seed）
//  2. 建反變換抽樣器（CDF 非單調會回 422）
//  3. 抽樣前後各取一次核心快照，連同 seed 一併回傳
func (c *InvCDFHandler) InvCDF(w http.ResponseWriter, q *http.Request) {
	req, err := dto.DecodeInvCDFRequest(q)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	seed := req.Seed
	if !req.HasSeed {
		seed, err = statlab.AutoSeed()
		if err != nil {
			httperr.Errs(w, err)
			return
		}
	}

	sampler, err := c.lab.NewModelSampler(req.Model, seed)
	if err != nil {
		httperr.Errs(w, err)
		return
	}

	startSnap, err := sampler.Snapshot()
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	draws := make([]float64, req.Draws)
	for i := range draws {
		draws[i] = sampler.Draw()
	}
	afterSnap, err := sampler.Snapshot()
	if err != nil {
		httperr.Errs(w, err)
		return
	}

	result := dto.InvCDFResult{
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

// ============================================================
// ** InvCDFHandler **
// ============================================================

type InvCDFHandler struct {
	lab *statlab.Lab
}

func NewInvCDFHandler(sCfg *svrcfg.SvrCfg) (*InvCDFHandler, error) {
	if sCfg == nil || sCfg.Lab == nil {
		return nil, errs.NewFatal("lab is required")
	}
	return &InvCDFHandler{lab: sCfg.Lab}, nil
}
