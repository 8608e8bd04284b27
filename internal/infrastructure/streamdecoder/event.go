package streamdecoder

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
)

const (
	EventIntermediate = "intermediate"
	EventFinal        = "final"
	EventImage        = "image"
)

// Event is one decoded stream message.
type Event struct {
	EventType   string  `msgpack:"event_type"`
	SampleIndex int     `msgpack:"samp_ix"`
	StepIndex   int     `msgpack:"step_ix"`
	GenID       string  `msgpack:"gen_id"`
	Sigma       float64 `msgpack:"sigma"`
	Image       []byte  `msgpack:"image"`
}

// IsFinal reports whether the event delivers a finished image.
func (e *Event) IsFinal() bool {
	return (e.EventType == EventFinal || e.EventType == EventImage) && e.Image != nil
}

var _ msgpack.CustomDecoder = (*Event)(nil)

// DecodeMsgpack reads a map message. Unknown keys are skipped and numeric
// fields accept any msgpack number encoding.
func (e *Event) DecodeMsgpack(dec *msgpack.Decoder) error {
	n, err := dec.DecodeMapLen()
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		key, err := dec.DecodeString()
		if err != nil {
			return fmt.Errorf("event key %d: %w", i, err)
		}
		switch key {
		case "event_type":
			e.EventType, err = dec.DecodeString()
		case "samp_ix":
			e.SampleIndex, err = decodeLooseInt(dec)
		case "step_ix":
			e.StepIndex, err = decodeLooseInt(dec)
		case "gen_id":
			var v any
			v, err = dec.DecodeInterfaceLoose()
			if err == nil && v != nil {
				e.GenID = fmt.Sprint(v)
			}
		case "sigma":
			e.Sigma, err = decodeLooseFloat(dec)
		case "image":
			e.Image, err = dec.DecodeBytes()
		default:
			err = dec.Skip()
		}
		if err != nil {
			return fmt.Errorf("event field %q: %w", key, err)
		}
	}
	return nil
}

func decodeLooseInt(dec *msgpack.Decoder) (int, error) {
	v, err := decodeLooseFloat(dec)
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) || v < math.MinInt32 || v > math.MaxInt32 {
		return 0, fmt.Errorf("index %v is not an integer", v)
	}
	return int(v), nil
}

func decodeLooseFloat(dec *msgpack.Decoder) (float64, error) {
	v, err := dec.DecodeInterfaceLoose()
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case nil:
		return 0, nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case float64:
		return n, nil
	default:
		return 0, fmt.Errorf("unexpected %T for a number", v)
	}
}

var (
	errNilEvent      = errors.New("event is nil")
	errTrailingBytes = errors.New("trailing bytes after event")
)

// DecodeEvent unmarshals one frame payload. The payload must be exactly one
// non-nil map.
func DecodeEvent(payload []byte) (Event, error) {
	r := bytes.NewReader(payload)
	dec := msgpack.NewDecoder(r)

	code, err := dec.PeekCode()
	if err != nil {
		return Event{}, err
	}
	if code == msgpcode.Nil {
		return Event{}, errNilEvent
	}

	var ev Event
	if err := dec.Decode(&ev); err != nil {
		return Event{}, err
	}
	if r.Len() > 0 {
		return Event{}, fmt.Errorf("%w: %d", errTrailingBytes, r.Len())
	}
	return ev, nil
}

// EncodeEvent marshals an event as a frame payload.
func EncodeEvent(ev Event) ([]byte, error) {
	return msgpack.Marshal(&ev)
}
