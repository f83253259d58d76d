package nostr

import (
	"encoding/hex"
	"strings"

	perr "rektwatch/internal/platform/errors"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

const hrpPub = "npub"

// DecodeNPub returns the hex x-only public key inside an npub
func DecodeNPub(npub string) (string, error) {
	hrp, data, err := bech32.Decode(strings.ToLower(strings.TrimSpace(npub)))
	if err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeInvalidArgument, "npub is not valid bech32")
	}
	if hrp != hrpPub {
		return "", perr.InvalidArgf("expected an npub, got prefix %q", hrp)
	}
	raw, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeInvalidArgument, "npub payload")
	}
	if len(raw) != 32 {
		return "", perr.InvalidArgf("npub payload is %d bytes, want 32", len(raw))
	}
	return hex.EncodeToString(raw), nil
}

// EncodeNPub bech32-encodes a hex public key
func EncodeNPub(pubHex string) (string, error) {
	raw, err := hex.DecodeString(pubHex)
	if err != nil || len(raw) != 32 {
		return "", perr.InvalidArgf("public key must be 32 bytes of hex")
	}
	data, err := bech32.ConvertBits(raw, 8, 5, true)
	if err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeInvalidArgument, "convert bits")
	}
	return bech32.Encode(hrpPub, data)
}

// PubKey accepts an npub or 64 hex chars and returns lowercase hex
func PubKey(s string) (string, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(strings.ToLower(s), hrpPub+"1") {
		return DecodeNPub(s)
	}
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != 32 {
		return "", perr.InvalidArgf("public key must be an npub or 64 hex chars")
	}
	return strings.ToLower(s), nil
}
