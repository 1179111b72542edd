package v1

import (
	"encoding/json"
	"net/http"

	"github.com/zintix-labs/statlab"
	"github.com/zintix-labs/statlab/dto"
	"github.com/zintix-labs/statlab/errs"
	"github.com/zintix-labs/statlab/server/httperr"
	"github.com/zintix-labs/statlab/server/svrcfg"
	"github.com/zintix-labs/statlab/stats"
)

// Compare 對兩組原始樣本做分佈比較。
//
// 流程：
//  1. decode CompareRequest（JSON body，兩邊樣本都必填）
//  2. 建經驗分佈並走比較引擎（L2 / KS / CvM）
//  3. 整理成報告（小樣本 KS 走精確式）後輸出 DTO
func (c *CompareHandler) Compare(w http.ResponseWriter, q *http.Request) {
	req, err := dto.DecodeCompareRequest(q)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	r, err := c.lab.CompareSamples(req.SamplesA, req.SamplesB)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	rep := stats.NewCompareReport(req.Title, r)
	result, err := dto.NewCompareResultDTO(rep)
	if err != nil {
		httperr.Errs(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		httperr.Errs(w, err)
		return
	}
}

// ============================================================
// ** CompareHandler **
// ============================================================

type CompareHandler struct {
	lab *statlab.Lab
}

func NewCompareHandler(sCfg *svrcfg.SvrCfg) (*CompareHandler, error) {
	if sCfg == nil || sCfg.Lab == nil {
		return nil, errs.NewFatal("lab is required")
	}
	return &CompareHandler{lab: sCfg.Lab}, nil
}
