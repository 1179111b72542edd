package corefmt

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"

	"github.com/zintix-labs/statlab/errs"
)

// corefmt 提供 snapshot / 二進位狀態在邊界層傳輸時的編解碼工具。
//
// Generator snapshot 是純 bytes；要經過 JSON/HTTP 文字邊界時用 Base64URL，
// 要落地或走二進位流時用長度前綴的 blob frame。

func EncodeBase64URL(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

func DecodeBase64URL(s string) ([]byte, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, errs.Wrap(err, "decode base64url failed")
	}
	return b, err
}

func EncodeHex(b []byte) string {
	return hex.EncodeToString(b)
}

func DecodeHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errs.Wrap(err, "decode hex failed")
	}
	return b, err
}

// EncodeBlobFrame encodes raw bytes into a length-prefixed binary frame.
//
//	frame := uvarint(len(payload)) || payload
//
// Notes:
//   - This format is NOT JSON-friendly. If you need JSON/HTTP text transport, use Base64URL.
//   - The length prefix uses unsigned varint (encoding/binary).
func EncodeBlobFrame(payload []byte) []byte {
	buf := make([]byte, 0, binary.MaxVarintLen64+len(payload))
	buf = binary.AppendUvarint(buf, uint64(len(payload)))
	return append(buf, payload...)
}

// DecodeBlobFrame 解開一個長度前綴 frame，回傳 payload 與剩餘未消費的 bytes。
func DecodeBlobFrame(frame []byte) (payload []byte, rest []byte, err error) {
	n, read := binary.Uvarint(frame)
	if read <= 0 {
		return nil, nil, errs.Invalidf("blob frame: bad length prefix")
	}
	body := frame[read:]
	if uint64(len(body)) < n {
		return nil, nil, errs.Invalidf("blob frame: truncated payload, want %d bytes, have %d", n, len(body))
	}
	return bytes.Clone(body[:n]), body[n:], nil
}
