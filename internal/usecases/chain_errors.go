package usecases

import (
	"encoding/hex"
	"regexp"
	"strings"
)

// Friendly messages for the most common chain error classes. Anything
// unrecognized falls through to a generic submission failure.
const (
	msgInsufficientFunds = "Insufficient funds to complete the toll payment"
	msgUnpredictableGas  = "Cannot estimate gas; the transaction may fail or the contract may reject it"
	msgExecutionReverted = "Transaction reverted by the toll contract"
	msgGenericSubmission = "Transaction failed"
)

// errorStringSelector is the 4-byte selector of Error(string), the standard
// Solidity revert payload.
var errorStringSelector = [4]byte{0x08, 0xc3, 0x79, 0xa0}

// translateChainError maps an RPC/contract error to a user-facing message.
func translateChainError(err error) string {
	if err == nil {
		return msgGenericSubmission
	}

	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "insufficient funds"):
		return msgInsufficientFunds
	case strings.Contains(lower, "always failing transaction"),
		strings.Contains(lower, "cannot estimate gas"),
		strings.Contains(lower, "gas required exceeds"):
		return msgUnpredictableGas
	case strings.Contains(lower, "execution reverted"), strings.Contains(lower, "revert"):
		if reason, ok := decodeRevertReason(err); ok && reason != "" {
			return msgExecutionReverted + ": " + reason
		}
		return msgExecutionReverted
	}
	return err.Error()
}

// decodeRevertReason attempts to parse an Error(string) revert payload from
// RPC errors. It supports rpc.DataError payloads and fallback extraction from
// error strings.
func decodeRevertReason(err error) (string, bool) {
	if err == nil {
		return "", false
	}

	if data, ok := extractRevertHexFromDataError(err); ok {
		return decodeErrorString(data)
	}
	if data, ok := extractRevertHexFromErrorString(err.Error()); ok {
		return decodeErrorString(data)
	}
	return "", false
}

func decodeErrorString(data []byte) (string, bool) {
	// Error(string): selector + offset word + length word + UTF-8 bytes.
	if len(data) < 4+32+32 {
		return "", false
	}
	var sel [4]byte
	copy(sel[:], data[:4])
	if sel != errorStringSelector {
		return "", false
	}
	payload := data[4:]
	length := wordToInt(payload[32:64])
	if length <= 0 || 64+length > len(payload) {
		return "", false
	}
	return string(payload[64 : 64+length]), true
}

// wordToInt reads a big-endian word as an int, saturating on overflow.
func wordToInt(b []byte) int {
	v := 0
	for _, c := range b {
		if v > (1<<31)/256 {
			return 1 << 31
		}
		v = v*256 + int(c)
	}
	return v
}

func extractRevertHexFromDataError(err error) ([]byte, bool) {
	type rpcDataError interface {
		ErrorData() interface{}
	}
	dataErr, ok := err.(rpcDataError)
	if !ok {
		return nil, false
	}
	return parseRevertBytesFromAny(dataErr.ErrorData())
}

func parseRevertBytesFromAny(value interface{}) ([]byte, bool) {
	switch v := value.(type) {
	case string:
		return parseHexBytes(v)
	case []byte:
		if len(v) == 0 {
			return nil, false
		}
		out := make([]byte, len(v))
		copy(out, v)
		return out, true
	case map[string]interface{}:
		if raw, ok := v["data"]; ok {
			return parseRevertBytesFromAny(raw)
		}
		if raw, ok := v["result"]; ok {
			return parseRevertBytesFromAny(raw)
		}
	}
	return nil, false
}

func extractRevertHexFromErrorString(message string) ([]byte, bool) {
	pattern := regexp.MustCompile(`0x[0-9a-fA-F]{8,}`)
	hexValues := pattern.FindAllString(message, -1)
	for _, candidate := range hexValues {
		if data, ok := parseHexBytes(candidate); ok {
			return data, true
		}
	}
	return nil, false
}

func parseHexBytes(raw string) ([]byte, bool) {
	value := strings.TrimSpace(strings.TrimPrefix(raw, "0x"))
	if len(value) < 8 || len(value)%2 != 0 {
		return nil, false
	}
	data, err := hex.DecodeString(value)
	if err != nil || len(data) == 0 {
		return nil, false
	}
	return data, true
}
