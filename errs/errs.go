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

package errs

import (
	"errors"
	"fmt"
)

// ErrLevel : Error 分級，使最上層理解問題嚴重程度
type ErrLevel uint8

const (
	None ErrLevel = iota
	Fatal
	Warn
	Log
)

var errLvMap = map[ErrLevel]string{
	None:  "",
	Fatal: "fatal",
	Warn:  "warn",
	Log:   "log",
}

func ErrLv(errlv ErrLevel) string {
	if str, ok := errLvMap[errlv]; ok {
		return str
	}
	return ""
}

// ErrKind : Error 分類，讓呼叫端可以用 errors.Is 針對「錯誤的種類」分支，
// 而不是去解析錯誤字串。
//
//   - Invalid      : 參數不合法（負的 Poisson 均值、維度不符、長度不符...）
//   - Unsupported  : 不支援的操作（例如隱式複製一個活著的 generator 狀態）
//   - Precondition : 前置條件違反（非單調的累積表...）
//   - IO           : 讀寫失敗（dump 目標無法開啟/寫入），由底層錯誤 wrap 上來
type ErrKind uint8

const (
	KindNone ErrKind = iota
	KindInvalid
	KindUnsupported
	KindPrecondition
	KindIO
)

var errKindMap = map[ErrKind]string{
	KindNone:         "",
	KindInvalid:      "invalid",
	KindUnsupported:  "unsupported",
	KindPrecondition: "precondition",
	KindIO:           "io",
}

func KindStr(k ErrKind) string {
	if str, ok := errKindMap[k]; ok {
		return str
	}
	return ""
}

// Kind 哨兵。只帶 Kind、不帶訊息，專門給 errors.Is 用。
var (
	ErrInvalid      = &E{Kind: KindInvalid}
	ErrUnsupported  = &E{Kind: KindUnsupported}
	ErrPrecondition = &E{Kind: KindPrecondition}
	ErrIO           = &E{Kind: KindIO}
)

// E 是統一的錯誤型別。
// Message 為經過樣板格式化後的主訊息；Extra 為呼叫端可追加的額外上下文；
// Cause 可串接下層錯誤（wrap）；ErrLv 表示嚴重度；Kind 表示錯誤種類。
type E struct {
	Message string
	Extra   string
	Cause   error
	ErrLv   ErrLevel
	Kind    ErrKind
}

// Error 實作 error 介面並回傳格式化後的錯誤訊息。
func (e *E) Error() string {
	base := fmt.Sprintf("errlv=%s %s", ErrLv(e.ErrLv), e.Message)
	if e.Kind != KindNone {
		base = fmt.Sprintf("errlv=%s kind=%s %s", ErrLv(e.ErrLv), KindStr(e.Kind), e.Message)
	}
	if e.Extra != "" {
		base += " | extra: " + e.Extra
	}
	if e.Cause != nil {
		base += fmt.Sprintf(" (cause: %v)", e.Cause)
	}
	return base
}

// Unwrap 讓 errors.Is / errors.As 能夠向下展開。
func (e *E) Unwrap() error { return e.Cause }

// Is 支援以 kind 哨兵做分支：errors.Is(err, errs.ErrInvalid) 只比對 Kind。
func (e *E) Is(target error) bool {
	t, ok := target.(*E)
	if !ok {
		return false
	}
	if t.Kind != KindNone && t.Message == "" {
		return e.Kind == t.Kind
	}
	return e == t
}

// New 依錯誤分級與訊息建立錯誤
func New(errLv ErrLevel, msg string) *E {
	return &E{Message: msg, ErrLv: errLv}
}

func NewFatal(msg string) *E {
	return &E{Message: msg, ErrLv: Fatal}
}

func NewWarn(msg string) *E {
	return &E{Message: msg, ErrLv: Warn}
}

func NewLog(msg string) *E {
	return &E{Message: msg, ErrLv: Log}
}

func Fatalf(format string, a ...any) *E {
	return NewFatal(fmt.Sprintf(format, a...))
}

func Warnf(format string, a ...any) *E {
	return NewWarn(fmt.Sprintf(format, a...))
}

func Logf(format string, a ...any) *E {
	return NewLog(fmt.Sprintf(format, a...))
}

// Invalidf 建立一個 KindInvalid / Warn 級別的錯誤（參數問題屬於可預期、可回報呼叫端）。
func Invalidf(format string, a ...any) *E {
	return &E{Message: fmt.Sprintf(format, a...), ErrLv: Warn, Kind: KindInvalid}
}

// Unsupportedf 建立一個 KindUnsupported / Fatal 級別的錯誤。
func Unsupportedf(format string, a ...any) *E {
	return &E{Message: fmt.Sprintf(format, a...), ErrLv: Fatal, Kind: KindUnsupported}
}

// Preconditionf 建立一個 KindPrecondition / Fatal 級別的錯誤。
func Preconditionf(format string, a ...any) *E {
	return &E{Message: fmt.Sprintf(format, a...), ErrLv: Fatal, Kind: KindPrecondition}
}

// WrapIO 把底層 I/O 錯誤 wrap 成 KindIO；不重試，直接往上傳。
func WrapIO(cause error, msg string) *E {
	return &E{Message: msg, ErrLv: Fatal, Kind: KindIO, Cause: cause}
}

// NewWithExtra 與 New 相同，但可附加額外上下文字串（不影響主訊息）。
func NewWithExtra(errLv ErrLevel, msg string, extra string) *E {
	e := New(errLv, msg)
	e.Extra = extra
	return e
}

// Wrap 使用給定的訊息包裝底層錯誤，建立一個 *E。
//
// ErrLevel / Kind 規則：
//   - 若 cause 已經是 *E，則沿用其 ErrLv 與 Kind（保持原本嚴重度與分類）。
//   - 若 cause 不是本包定義的 *E（多半是標準庫或三方依賴錯誤），則 ErrLv 一律視為 Fatal。
//
// 建議使用方式：
//   - 若你已判斷該錯誤是「可預期且可處理」的情境，請直接建立一個 *E
//     （使用 New / Invalidf / ... 並自行指定分級），而不要對其呼叫 Wrap。
func Wrap(cause error, msg string) *E {
	var e *E
	errLv := Fatal
	kind := KindNone
	if errors.As(cause, &e) {
		errLv = e.ErrLv
		kind = e.Kind
	}
	r := New(errLv, msg)
	r.Kind = kind
	r.Cause = cause
	return r
}

// WrapWithExtra 使用給定的訊息與上下文包裝底層錯誤，建立一個 *E
func WrapWithExtra(cause error, msg string, extra string) *E {
	r := Wrap(cause, msg)
	r.Extra = extra
	return r
}

func AsErr(err error) (*E, bool) {
	var e *E
	if errors.As(err, &e) {
		return e, true
	}
	return e, false
}
