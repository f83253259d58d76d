package nostr

import (
	"encoding/json"

	perr "rektwatch/internal/platform/errors"
)

// Relay to client message labels
const (
	LabelEvent  = "EVENT"
	LabelEOSE   = "EOSE"
	LabelClosed = "CLOSED"
	LabelNotice = "NOTICE"
	LabelOK     = "OK"

	LabelReq   = "REQ"
	LabelClose = "CLOSE"
)

// Message is one decoded relay to client frame
type Message struct {
	Label string
	SubID string
	Event *Event
	// Text carries the NOTICE message or the CLOSED reason
	Text string
}

// EncodeReq builds ["REQ", sub, filters...]
func EncodeReq(subID string, filters ...Filter) ([]byte, error) {
	arr := make([]any, 0, 2+len(filters))
	arr = append(arr, LabelReq, subID)
	for _, f := range filters {
		arr = append(arr, f)
	}
	return json.Marshal(arr)
}

// EncodeClose builds ["CLOSE", sub]
func EncodeClose(subID string) ([]byte, error) {
	return json.Marshal([]string{LabelClose, subID})
}

// EncodeEvent builds ["EVENT", sub, event] as a relay sends it
func EncodeEvent(subID string, e Event) ([]byte, error) {
	return json.Marshal([]any{LabelEvent, subID, e})
}

// EncodeEOSE builds ["EOSE", sub]
func EncodeEOSE(subID string) ([]byte, error) {
	return json.Marshal([]string{LabelEOSE, subID})
}

// ParseMessage decodes a relay frame. Unknown labels return a Message with
// only Label set so callers can log and move on.
func ParseMessage(data []byte) (Message, error) {
	var arr []json.RawMessage
	if err := json.Unmarshal(data, &arr); err != nil {
		return Message{}, perr.Wrap(err, perr.ErrorCodeJSON, "relay frame is not a json array")
	}
	if len(arr) == 0 {
		return Message{}, perr.JSONErrf("empty relay frame")
	}
	var m Message
	if err := json.Unmarshal(arr[0], &m.Label); err != nil {
		return Message{}, perr.Wrap(err, perr.ErrorCodeJSON, "relay frame label")
	}

	str := func(i int) (string, error) {
		if i >= len(arr) {
			return "", perr.JSONErrf("%s frame missing element %d", m.Label, i)
		}
		var s string
		if err := json.Unmarshal(arr[i], &s); err != nil {
			return "", perr.Wrapf(err, perr.ErrorCodeJSON, "%s frame element %d", m.Label, i)
		}
		return s, nil
	}

	var err error
	switch m.Label {
	case LabelEvent:
		if m.SubID, err = str(1); err != nil {
			return Message{}, err
		}
		if len(arr) < 3 {
			return Message{}, perr.JSONErrf("EVENT frame without event")
		}
		var e Event
		if err := json.Unmarshal(arr[2], &e); err != nil {
			return Message{}, perr.Wrap(err, perr.ErrorCodeJSON, "EVENT payload")
		}
		m.Event = &e
	case LabelEOSE:
		if m.SubID, err = str(1); err != nil {
			return Message{}, err
		}
	case LabelClosed:
		if m.SubID, err = str(1); err != nil {
			return Message{}, err
		}
		if len(arr) > 2 {
			m.Text, _ = str(2)
		}
	case LabelNotice:
		if m.Text, err = str(1); err != nil {
			return Message{}, err
		}
	case LabelOK:
		// publish acks; this client never publishes
	}
	return m, nil
}
