// Package core implements the MT19937 random number generator.
//
// The Mersenne Twister algorithm is designed by Matsumoto and Nishimura
// (ACM TOMACS Vol. 8 No. 1, 1998). For the same seed the same word
// sequence is generated on every platform; this determinism is the core
// contract of the package and must never be weakened by floating point
// or implementation-defined behavior in the integer path.
package core

import (
	"time"

	"github.com/zintix-labs/statlab/errs"
)

const (
	mtN         = 624
	mtM         = 397
	mtMatrixA   = 0x9908b0df
	mtUpperMask = 0x80000000
	mtLowerMask = 0x7fffffff
	mtTemperB   = 0x9d2c5680
	mtTemperC   = 0xefc60000

	// snapshot layout: seed(4) + index(4) + 624 words(4 each)
	snapshotLen = 8 + 4*mtN
)

// Twister 是 32-bit 輸出、624 字狀態的 MT19937 產生器。
//
// 一個 Twister 實例是「被呼叫端獨占的可變狀態」：
//   - 不做內部鎖，不允許多 goroutine 同時使用（要併發請一個 goroutine 一顆，或外部加鎖）。
//   - 不允許隱式複製活狀態（值複製會讓兩顆 generator 吐出同一條流水，破壞
//     「一個實例一條序列」的可重現性合約）。noCopy 讓 go vet 直接抓出誤用；
//     要「分家」請走 Fork，要保存/還原請走 Snapshot / Restore。
type Twister struct {
	noCopy noCopy

	seed  uint32
	idx   int
	words [mtN]uint32
}

// NewTwister 以指定 seed 建立新的 Twister。
// 相同 seed 必定產生相同的輸出序列（決定性合約）。
func NewTwister(seed uint32) *Twister {
	t := &Twister{}
	t.Reseed(seed)
	return t
}

// Next 回傳下一個 tempered 32-bit 字。
// 當 624 個預生成字耗盡時，整批狀態以 twist 步驟一次重生。
func (t *Twister) Next() uint32 {
	if t.idx >= mtN {
		t.twist()
	}

	y := t.words[t.idx]
	t.idx++

	// tempering
	y ^= y >> 11
	y ^= (y << 7) & mtTemperB
	y ^= (y << 15) & mtTemperC
	y ^= y >> 18
	return y
}

// Seed 回傳目前的 seed。
func (t *Twister) Seed() uint32 {
	return t.seed
}

// Reseed 以新 seed 重建整個狀態；舊的輸出序列全部作廢。
// 只影響這一個實例，不影響其他 generator。
func (t *Twister) Reseed(seed uint32) {
	t.seed = seed
	t.words[0] = seed
	for i := 1; i < mtN; i++ {
		t.words[i] = 1812433253*(t.words[i-1]^(t.words[i-1]>>30)) + uint32(i)
	}
	t.idx = mtN
}

// Randomize 以目前時間（毫秒）重設 seed；每毫秒變化一次，
// 多數情況下能讓每次程式執行得到不同的序列。
func (t *Twister) Randomize() {
	t.Reseed(uint32(time.Now().UnixMilli()))
}

// Fork 以指定 seed 建立一顆全新的 Twister。
//
// 這是「分家」的唯一入口：回傳的實例從乾淨的 seed 狀態出發，
// 與本實例的活狀態無關。想複製活狀態請用 Snapshot + Restore，
// 並自行承擔兩顆 generator 流水重疊的後果。
func (t *Twister) Fork(seed uint32) *Twister {
	return NewTwister(seed)
}

// twist 以固定的位元混合矩陣把 624 字整批重生。
func (t *Twister) twist() {
	var mag01 = [2]uint32{0, mtMatrixA}

	var kk int
	for kk = 0; kk < mtN-mtM; kk++ {
		y := (t.words[kk] & mtUpperMask) | (t.words[kk+1] & mtLowerMask)
		t.words[kk] = t.words[kk+mtM] ^ (y >> 1) ^ mag01[y&1]
	}
	for ; kk < mtN-1; kk++ {
		y := (t.words[kk] & mtUpperMask) | (t.words[kk+1] & mtLowerMask)
		t.words[kk] = t.words[kk+(mtM-mtN)] ^ (y >> 1) ^ mag01[y&1]
	}
	y := (t.words[mtN-1] & mtUpperMask) | (t.words[0] & mtLowerMask)
	t.words[mtN-1] = t.words[mtM-1] ^ (y >> 1) ^ mag01[y&1]
	t.idx = 0
}

// Snapshot 回傳可用於還原的序列化狀態。
func (t *Twister) Snapshot() ([]byte, error) {
	b := make([]byte, 0, snapshotLen)
	b = appendUint32(b, t.seed)
	b = appendUint32(b, uint32(t.idx))
	for _, w := range t.words {
		b = appendUint32(b, w)
	}
	return b, nil
}

// Restore 依序列化狀態還原內部狀態。
func (t *Twister) Restore(data []byte) error {
	if len(data) != snapshotLen {
		return errs.Invalidf("twister snapshot: want %d bytes, got %d", snapshotLen, len(data))
	}
	seed := uint32FromBytes(data[0:4])
	idx := int(uint32FromBytes(data[4:8]))
	if idx < 0 || idx > mtN {
		return errs.Invalidf("twister snapshot: index %d out of range [0,%d]", idx, mtN)
	}
	t.seed = seed
	t.idx = idx
	for i := 0; i < mtN; i++ {
		t.words[i] = uint32FromBytes(data[8+4*i : 12+4*i])
	}
	return nil
}

func appendUint32(b []byte, v uint32) []byte {
	return append(b,
		byte(v>>24),
		byte(v>>16),
		byte(v>>8),
		byte(v),
	)
}

func uint32FromBytes(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// noCopy 觸發 go vet 的 copylocks 檢查；含有它的 struct 被值複製時 vet 會報錯。
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
