package api

import (
	"fmt"
	"time"

	"github.com/dbis-ilm/poseidon-go/internal/tuple"
)

// cellJSON is the wire encoding of a tuple.Cell: a tagged {kind, value}
// pair, mirroring internal/pgstore/props.go's encoding since both need to
// round-trip the same Kind discrimination that a bare JSON number can't
// carry (int vs. uint vs. double).
type cellJSON struct {
	Kind  string `json:"kind"`
	Value any    `json:"value,omitempty"`
}

func encodeCellJSON(c tuple.Cell) (cellJSON, error) {
	switch c.Kind() {
	case tuple.KindNull:
		return cellJSON{Kind: "null"}, nil
	case tuple.KindNode:
		v, err := c.Node()
		return cellJSON{Kind: "node", Value: uint64(v)}, err
	case tuple.KindRel:
		v, err := c.Rel()
		return cellJSON{Kind: "relationship", Value: uint64(v)}, err
	case tuple.KindInt:
		v, err := c.Int()
		return cellJSON{Kind: "int", Value: v}, err
	case tuple.KindDouble:
		v, err := c.Double()
		return cellJSON{Kind: "double", Value: v}, err
	case tuple.KindUint:
		v, err := c.Uint()
		return cellJSON{Kind: "uint", Value: v}, err
	case tuple.KindString:
		v, err := c.String()
		return cellJSON{Kind: "string", Value: v}, err
	case tuple.KindTime:
		v, err := c.Time()
		return cellJSON{Kind: "time", Value: v.UTC().Format(time.RFC3339Nano)}, err
	case tuple.KindNodeArray:
		nodes, err := c.NodeArray()
		if err != nil {
			return cellJSON{}, err
		}
		arr := make([]uint64, len(nodes))
		for i, n := range nodes {
			arr[i] = uint64(n)
		}
		return cellJSON{Kind: "node_array", Value: arr}, nil
	case tuple.KindSubresult:
		sub, err := c.Subresult()
		if err != nil {
			return cellJSON{}, err
		}
		rows, err := encodeResultSet(sub)
		if err != nil {
			return cellJSON{}, err
		}
		return cellJSON{Kind: "subresult", Value: rows}, nil
	default:
		return cellJSON{}, fmt.Errorf("unsupported cell kind %q", c.Kind())
	}
}

// encodeResultSet renders every tuple in rs as a row of cellJSON values, in
// positional order, for the /api/v1/query response.
func encodeResultSet(rs *tuple.ResultSet) ([][]cellJSON, error) {
	if rs == nil {
		return nil, nil
	}
	data := rs.Data()
	rows := make([][]cellJSON, len(data))
	for i, t := range data {
		cells := t.Cells()
		row := make([]cellJSON, len(cells))
		for j, c := range cells {
			enc, err := encodeCellJSON(c)
			if err != nil {
				return nil, fmt.Errorf("row %d, cell %d: %w", i, j, err)
			}
			row[j] = enc
		}
		rows[i] = row
	}
	return rows, nil
}
