package pgstore

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dbis-ilm/poseidon-go/internal/graph"
	"github.com/dbis-ilm/poseidon-go/internal/tuple"
)

// cellJSON is the tagged-variant wire shape a tuple.Cell is stored as inside
// a node/relationship's JSONB props column: {"k":"int","v":123}. Kind is
// carried explicitly because JSON numbers don't distinguish int/uint/double.
type cellJSON struct {
	Kind  string `json:"k"`
	Value any    `json:"v"`
}

func encodeCell(c tuple.Cell) (cellJSON, error) {
	switch c.Kind() {
	case tuple.KindNull:
		return cellJSON{Kind: "null"}, nil
	case tuple.KindInt:
		v, _ := c.Int()
		return cellJSON{Kind: "int", Value: v}, nil
	case tuple.KindDouble:
		v, _ := c.Double()
		return cellJSON{Kind: "double", Value: v}, nil
	case tuple.KindUint:
		v, _ := c.Uint()
		return cellJSON{Kind: "uint", Value: v}, nil
	case tuple.KindString:
		v, _ := c.String()
		return cellJSON{Kind: "string", Value: v}, nil
	case tuple.KindTime:
		v, _ := c.Time()
		return cellJSON{Kind: "time", Value: v.Format(time.RFC3339Nano)}, nil
	default:
		return cellJSON{}, fmt.Errorf("pgstore: property cell kind %s is not storable", c.Kind())
	}
}

func decodeCell(cj cellJSON) (tuple.Cell, error) {
	switch cj.Kind {
	case "", "null":
		return tuple.Null(), nil
	case "int":
		return tuple.IntCell(int64(toFloat(cj.Value))), nil
	case "double":
		return tuple.DoubleCell(toFloat(cj.Value)), nil
	case "uint":
		return tuple.UintCell(uint64(toFloat(cj.Value))), nil
	case "string":
		s, _ := cj.Value.(string)
		return tuple.StringCell(s), nil
	case "time":
		s, _ := cj.Value.(string)
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return tuple.Cell{}, fmt.Errorf("pgstore: invalid stored time %q: %w", s, err)
		}
		return tuple.TimeCell(t), nil
	default:
		return tuple.Cell{}, fmt.Errorf("pgstore: unknown stored property kind %q", cj.Kind)
	}
}

func toFloat(v any) float64 {
	f, _ := v.(float64)
	return f
}

// encodeProps turns PropertyInputs into a JSONB-ready map, keyed by property name.
func encodeProps(props []graph.PropertyInput) ([]byte, error) {
	out := make(map[string]cellJSON, len(props))
	for _, p := range props {
		cj, err := encodeCell(p.Value)
		if err != nil {
			return nil, err
		}
		out[p.Key] = cj
	}
	return json.Marshal(out)
}

// mergeProps decodes existing JSONB props, merges in new ones, and re-encodes.
func mergeProps(existing []byte, props []graph.PropertyInput) ([]byte, error) {
	merged := map[string]cellJSON{}
	if len(existing) > 0 {
		if err := json.Unmarshal(existing, &merged); err != nil {
			return nil, fmt.Errorf("pgstore: decoding existing props: %w", err)
		}
	}
	for _, p := range props {
		cj, err := encodeCell(p.Value)
		if err != nil {
			return nil, err
		}
		merged[p.Key] = cj
	}
	return json.Marshal(merged)
}

func decodeProps(raw []byte) (map[string]tuple.Cell, error) {
	wire := map[string]cellJSON{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &wire); err != nil {
			return nil, fmt.Errorf("pgstore: decoding props: %w", err)
		}
	}
	out := make(map[string]tuple.Cell, len(wire))
	for k, cj := range wire {
		c, err := decodeCell(cj)
		if err != nil {
			return nil, err
		}
		out[k] = c
	}
	return out, nil
}

func decodePropValue(raw []byte, key string) (tuple.Cell, bool, error) {
	wire := map[string]cellJSON{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &wire); err != nil {
			return tuple.Cell{}, false, fmt.Errorf("pgstore: decoding props: %w", err)
		}
	}
	cj, ok := wire[key]
	if !ok {
		return tuple.Cell{}, false, nil
	}
	c, err := decodeCell(cj)
	if err != nil {
		return tuple.Cell{}, false, err
	}
	return c, true, nil
}
