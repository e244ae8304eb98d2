package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// Format selects the wire encoding of a result set.
type Format string

const (
	// FormatJSON is the default result-set encoding.
	FormatJSON Format = "json"
	// FormatMsgPack is the compact binary encoding.
	FormatMsgPack Format = "msgpack"
)

// Encode writes the result set to w in the requested format. JSON output is
// indented for direct inspection; MessagePack is for machine consumers.
func Encode(w io.Writer, rs *ResultSet, format Format) error {
	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rs)
	case FormatMsgPack:
		return msgpack.NewEncoder(w).Encode(rs)
	default:
		return fmt.Errorf("unknown result-set format %q", format)
	}
}

// Decode reads a result set from r in the given format.
func Decode(r io.Reader, format Format) (*ResultSet, error) {
	var rs ResultSet
	switch format {
	case FormatJSON, "":
		if err := json.NewDecoder(r).Decode(&rs); err != nil {
			return nil, err
		}
	case FormatMsgPack:
		if err := msgpack.NewDecoder(r).Decode(&rs); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown result-set format %q", format)
	}
	return &rs, nil
}
