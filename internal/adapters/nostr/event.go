// Package nostr speaks NIP-01 to relays over websockets: events, filters,
// envelopes, a reconnecting relay connection and a pool over many relays
package nostr

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"time"

	perr "rektwatch/internal/platform/errors"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
)

// KindTextNote is a short text note
const KindTextNote = 1

// Tag is one event tag, e.g. ["e", "<id>"]
type Tag []string

// Event is a NIP-01 event
type Event struct {
	ID        string `json:"id"`
	PubKey    string `json:"pubkey"`
	CreatedAt int64  `json:"created_at"`
	Kind      int    `json:"kind"`
	Tags      []Tag  `json:"tags"`
	Content   string `json:"content"`
	Sig       string `json:"sig"`
}

// Time is CreatedAt as a time
func (e Event) Time() time.Time { return time.Unix(e.CreatedAt, 0).UTC() }

// Serialize returns the canonical [0,pubkey,created_at,kind,tags,content] array the id is hashed from
func (e Event) Serialize() []byte {
	b := make([]byte, 0, 96+len(e.Content))
	b = append(b, `[0,"`...)
	b = append(b, e.PubKey...)
	b = append(b, `",`...)
	b = strconv.AppendInt(b, e.CreatedAt, 10)
	b = append(b, ',')
	b = strconv.AppendInt(b, int64(e.Kind), 10)
	b = append(b, ",["...)
	for i, t := range e.Tags {
		if i > 0 {
			b = append(b, ',')
		}
		b = append(b, '[')
		for j, s := range t {
			if j > 0 {
				b = append(b, ',')
			}
			b = appendString(b, s)
		}
		b = append(b, ']')
	}
	b = append(b, "],"...)
	b = appendString(b, e.Content)
	b = append(b, ']')
	return b
}

// appendString writes s as a JSON string with only the escapes NIP-01 allows;
// encoding/json would also escape <, > and & and change the hash
func appendString(b []byte, s string) []byte {
	const hexdigits = "0123456789abcdef"
	b = append(b, '"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			b = append(b, '\\', '"')
		case '\\':
			b = append(b, '\\', '\\')
		case '\n':
			b = append(b, '\\', 'n')
		case '\r':
			b = append(b, '\\', 'r')
		case '\t':
			b = append(b, '\\', 't')
		case '\b':
			b = append(b, '\\', 'b')
		case '\f':
			b = append(b, '\\', 'f')
		default:
			if c < 0x20 {
				b = append(b, '\\', 'u', '0', '0', hexdigits[c>>4], hexdigits[c&0xf])
				continue
			}
			b = append(b, c)
		}
	}
	return append(b, '"')
}

func (e Event) hash() [32]byte { return sha256.Sum256(e.Serialize()) }

// ComputeID returns the hex sha256 of the canonical serialization
func (e Event) ComputeID() string {
	h := e.hash()
	return hex.EncodeToString(h[:])
}

// CheckID reports whether ID matches the content
func (e Event) CheckID() bool { return e.ID == e.ComputeID() }

// Verify checks the id and the BIP-340 signature over it
func (e Event) Verify() error {
	h := e.hash()
	if e.ID != hex.EncodeToString(h[:]) {
		return perr.Newf(perr.ErrorCodeValidation, "event %s: id mismatch", short(e.ID))
	}
	pk, err := hex.DecodeString(e.PubKey)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeValidation, "pubkey is not hex")
	}
	pub, err := schnorr.ParsePubKey(pk)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeValidation, "pubkey is not a valid x-only key")
	}
	raw, err := hex.DecodeString(e.Sig)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeValidation, "sig is not hex")
	}
	sig, err := schnorr.ParseSignature(raw)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeValidation, "sig is malformed")
	}
	if !sig.Verify(h[:], pub) {
		return perr.Newf(perr.ErrorCodeValidation, "event %s: bad signature", short(e.ID))
	}
	return nil
}

// Sign sets PubKey, ID and Sig from sk
func (e *Event) Sign(sk *btcec.PrivateKey) error {
	e.PubKey = hex.EncodeToString(schnorr.SerializePubKey(sk.PubKey()))
	if e.Tags == nil {
		e.Tags = []Tag{}
	}
	h := e.hash()
	sig, err := schnorr.Sign(sk, h[:])
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnknown, "schnorr sign")
	}
	e.ID = hex.EncodeToString(h[:])
	e.Sig = hex.EncodeToString(sig.Serialize())
	return nil
}

// MarshalJSON keeps tags as [] rather than null
func (e Event) MarshalJSON() ([]byte, error) {
	type alias Event
	if e.Tags == nil {
		e.Tags = []Tag{}
	}
	return json.Marshal(alias(e))
}

func short(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
