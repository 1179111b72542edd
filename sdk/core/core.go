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

package core

// PRNG 定義 Core 所需的亂數來源，需同時支援取字與狀態保存/還原。
type PRNG interface {
	WORD
	Restorable
}

// Restorable 定義可快照與還原的狀態介面。
type Restorable interface {
	// Snapshot 回傳可用於還原的序列化狀態。
	Snapshot() ([]byte, error)
	// Restore 依序列化狀態還原 PRNG 內部狀態。
	Restore([]byte) error
}

// WORD 定義核心亂數取字能力。
//
// 為什麼合約只要求 32-bit 字，而不是 Uint64 / Float64？
//
//  1. 本引擎的決定性合約定義在「字流」層級：相同 seed → 相同的 32-bit 字序列，
//     跨平台 bit-identical。浮點轉換、範圍縮放等衍生取樣全部由 Core 統一實作，
//     確保每一種衍生抽樣消耗字的數量與順序完全一致，可重現、可審計。
//  2. 若把 Float64 / 有界取樣下放給各 PRNG 自行實作，不同實作會有不同的
//     消耗模式，回放（replay）就不再成立。
type WORD interface {
	// Next 回傳下一個 32-bit 亂數字。
	Next() uint32
	// Seed 回傳建立此實例（或最後一次 Reseed）所用的 seed。
	Seed() uint32
	// Reseed 以新 seed 重設內部狀態，舊序列作廢。
	Reseed(seed uint32)
}

type PRNGFactory interface {
	// New 以指定 seed 建立新的 PRNG。
	//
	// 合約（很重要）：在同一個實作與同一個版本下，New(seed) 必須是「決定性」的——
	// 也就是相同的 seed 必須產生相同的初始內部狀態與輸出序列。
	//
	// seed 的生命週期由外層（Lab）統一管理：外部未提供時由 Lab 產生並保存，
	// 後續所有衍生取樣器皆由該 seed 派生，確保整個實驗可重現。
	New(uint32) PRNG
}

// DefaultPRNG 實作預設的 PRNGFactory（MT19937）。
type DefaultPRNG struct{}

// New 滿足合約
func (d *DefaultPRNG) New(seed uint32) PRNG {
	return NewTwister(seed)
}

func Default() *DefaultPRNG {
	return &DefaultPRNG{}
}
