// Package api exposes the query execution core over HTTP (spec §6 "Plan
// surface"), grounded on persistor/internal/api's Gin router/middleware
// stack. The plan itself is always a pre-built operator tree, never a
// string to parse (spec §1 Non-goals excludes "SQL/Cypher surface
// syntax"): planjson.go is the JSON encoding of that already-built tree,
// not a query language front end.
package api

import (
	"encoding/json"
	"fmt"

	"github.com/dbis-ilm/poseidon-go/internal/driver"
	"github.com/dbis-ilm/poseidon-go/internal/filterexpr"
	"github.com/dbis-ilm/poseidon-go/internal/graph"
	"github.com/dbis-ilm/poseidon-go/internal/grouper"
	"github.com/dbis-ilm/poseidon-go/internal/ids"
	"github.com/dbis-ilm/poseidon-go/internal/operators"
	"github.com/dbis-ilm/poseidon-go/internal/tuple"
)

// OpNode is one node of a JSON-encoded operator tree. Exactly the fields
// relevant to Type are read; the rest are ignored.
type OpNode struct {
	Type string `json:"type"`
	ID   int    `json:"id"`

	// scan / node_has_label
	Labels []string `json:"labels,omitempty"`
	Label  string   `json:"label,omitempty"`
	First  int      `json:"first,omitempty"`
	Last   int      `json:"last,omitempty"`

	// filter_tuple
	Expr *ExprNode `json:"expr,omitempty"`

	// projection
	Items []ItemNode `json:"items,omitempty"`

	// limit
	N int `json:"n,omitempty"`

	// foreach_relationship / expand / shortest_path
	Direction string `json:"direction,omitempty"` // "out" | "in"
	Min       int    `json:"min,omitempty"`
	Max       int    `json:"max,omitempty"`

	// shortest_path
	Bidirectional bool   `json:"bidirectional,omitempty"`
	AllPaths      bool   `json:"all_paths,omitempty"`
	Weighted      bool   `json:"weighted,omitempty"`
	WeightKey     string `json:"weight_key,omitempty"`
	K             int    `json:"k,omitempty"`

	// group_by / aggregate
	KeyPositions []int        `json:"key_positions,omitempty"`
	Specs        []SpecNode   `json:"specs,omitempty"`
	GroupID      string       `json:"group_id,omitempty"`

	// dml
	Properties []PropNode `json:"properties,omitempty"`
	FromPos    int        `json:"from_pos,omitempty"`
	ToPos      int        `json:"to_pos,omitempty"`

	// joins
	JoinID     int `json:"join_id,omitempty"`
	LeftPos    int `json:"left_pos,omitempty"`
	RightPos   int `json:"right_pos,omitempty"`
	RightWidth int `json:"right_width,omitempty"`
	// hash_end_pipeline's key position; separate from LeftPos since a
	// hash_end_pipeline has no left side of its own, only a key to bucket by.
	KeyPos int `json:"key_pos,omitempty"`

	Subscriber *OpNode `json:"subscriber,omitempty"`
}

// ExprNode is the JSON encoding of a filterexpr.Node.
type ExprNode struct {
	Op    string    `json:"op"`
	Key   string    `json:"key,omitempty"`
	Value float64   `json:"value,omitempty"`
	Text  string    `json:"text,omitempty"`
	Left  *ExprNode `json:"left,omitempty"`
	Right *ExprNode `json:"right,omitempty"`
	Args  []ExprNode `json:"args,omitempty"`
	Fn    string    `json:"fn,omitempty"`
}

// ItemNode is the JSON encoding of a operators.Item.
type ItemNode struct {
	Kind          string   `json:"kind"` // "forward" | "property" | "conditional"
	Pos           int      `json:"pos"`
	Key           string   `json:"key,omitempty"`
	ResultType    string   `json:"result_type,omitempty"`
	HasProperties []string `json:"has_properties,omitempty"`
	Then          string   `json:"then,omitempty"`
	Else          string   `json:"else,omitempty"`
}

// SpecNode is the JSON encoding of an operators.AggregateSpec.
type SpecNode struct {
	Kind string `json:"kind"`
	Pos  int    `json:"pos"`
}

// PropNode is the JSON encoding of a graph.PropertyInput.
type PropNode struct {
	Key   string  `json:"key"`
	Kind  string  `json:"kind"`
	Value float64 `json:"value,omitempty"`
	Text  string  `json:"text,omitempty"`
}

// PipelineNode is one entry of a JSON-encoded driver.Plan, already given in
// the reversed run order driver.Plan.Pipelines requires.
type PipelineNode struct {
	ID     string `json:"id"`
	Chunks int    `json:"chunks,omitempty"`
	Root   OpNode `json:"root"`
}

// PlanRequest is the JSON body POSTed to /api/v1/query.
type PlanRequest struct {
	Pipelines []PipelineNode `json:"pipelines"`
	Profile   bool           `json:"profile,omitempty"`
}

// builder turns OpNodes into operators.Operator instances against a store,
// sharing one grouper.Grouper per group_id so a group_by/aggregate pair
// reads the same groups, and recording every result set it allocates so
// the caller can read results back out after a Run.
type builder struct {
	store    graph.GraphStore
	groupers map[string]*grouper.Grouper
	results  map[int]*tuple.ResultSet
}

// BuildPlan decodes raw into a driver.Plan runnable against store. The
// returned map holds the result set allocated for every "collect" node in
// the tree, keyed by that node's id, so a caller can read the output of
// whichever pipeline(s) it cares about once Driver.Run returns.
func BuildPlan(store graph.GraphStore, raw []byte) (*driver.Plan, bool, map[int]*tuple.ResultSet, error) {
	var req PlanRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, false, nil, fmt.Errorf("decoding plan: %w", err)
	}

	b := &builder{store: store, groupers: map[string]*grouper.Grouper{}, results: map[int]*tuple.ResultSet{}}
	plan := &driver.Plan{}
	for _, pn := range req.Pipelines {
		root, err := b.build(&pn.Root)
		if err != nil {
			return nil, false, nil, fmt.Errorf("pipeline %s: %w", pn.ID, err)
		}
		src, ok := root.(operators.Source)
		if !ok {
			return nil, false, nil, fmt.Errorf("pipeline %s: root operator type %q is not a valid pipeline source", pn.ID, pn.Root.Type)
		}
		plan.Pipelines = append(plan.Pipelines, driver.Pipeline{ID: pn.ID, Root: src, Chunks: pn.Chunks})
	}
	return plan, req.Profile, b.results, nil
}

func (b *builder) grouperFor(id string) *grouper.Grouper {
	if id == "" {
		id = "default"
	}
	g, ok := b.groupers[id]
	if !ok {
		g = grouper.New()
		b.groupers[id] = g
	}
	return g
}

func (b *builder) direction(s string) operators.Direction {
	if s == "in" {
		return operators.In
	}
	return operators.Out
}

func (b *builder) build(n *OpNode) (operators.Operator, error) {
	var sub operators.Operator
	var err error
	if n.Subscriber != nil {
		sub, err = b.build(n.Subscriber)
		if err != nil {
			return nil, err
		}
	}

	switch n.Type {
	case "collect":
		rs := tuple.NewResultSet()
		b.results[n.ID] = rs
		return operators.NewCollect(n.ID, rs), nil

	case "scan":
		labels := make([]ids.DictCode, len(n.Labels))
		for i, l := range n.Labels {
			labels[i] = b.store.GetCode(l)
		}
		last := n.Last
		if last == 0 {
			last = b.store.NodeCount()
		}
		return operators.NewScan(n.ID, labels, n.First, last, sub), nil

	case "node_has_label":
		return operators.NewNodeHasLabel(n.ID, b.store.GetCode(n.Label), sub), nil

	case "filter_tuple":
		expr, err := buildExpr(n.Expr)
		if err != nil {
			return nil, err
		}
		return operators.NewFilterTuple(n.ID, expr, nil, sub), nil

	case "projection":
		items, err := b.buildItems(n.Items)
		if err != nil {
			return nil, err
		}
		return operators.NewProjection(n.ID, items, nil, sub), nil

	case "limit":
		return operators.NewLimit(n.ID, n.N, sub), nil

	case "distinct":
		return operators.NewDistinct(n.ID, sub), nil

	case "union_all":
		return operators.NewUnionAll(n.ID, sub), nil

	case "foreach_relationship":
		label := b.store.GetCode(n.Label)
		if n.Max > 0 {
			return operators.NewForeachRelationshipVariable(n.ID, label, n.Min, n.Max, sub), nil
		}
		return operators.NewForeachRelationship1Hop(n.ID, b.direction(n.Direction), label, sub), nil

	case "expand":
		labels := make([]ids.DictCode, len(n.Labels))
		for i, l := range n.Labels {
			labels[i] = b.store.GetCode(l)
		}
		return operators.NewExpand(n.ID, b.direction(n.Direction), labels, sub), nil

	case "group_by":
		return operators.NewGroupBy(n.ID, n.KeyPositions, b.grouperFor(n.GroupID), sub), nil

	case "aggregate":
		specs := make([]operators.AggregateSpec, len(n.Specs))
		for i, s := range n.Specs {
			k, err := aggregateKind(s.Kind)
			if err != nil {
				return nil, err
			}
			specs[i] = operators.AggregateSpec{Kind: k, Pos: s.Pos}
		}
		return operators.NewAggregate(n.ID, n.KeyPositions, b.grouperFor(n.GroupID), specs, sub), nil

	case "shortest_path":
		label := b.store.GetCode(n.Label)
		switch {
		case n.K > 0:
			return operators.NewKWeightedShortestPath(n.ID, label, n.WeightKey, n.Bidirectional, n.K, sub), nil
		case n.Weighted:
			return operators.NewWeightedShortestPath(n.ID, label, n.WeightKey, n.Bidirectional, n.AllPaths, sub), nil
		default:
			return operators.NewShortestPath(n.ID, label, n.Bidirectional, n.AllPaths, sub), nil
		}

	case "create_node":
		props, err := buildProps(n.Properties)
		if err != nil {
			return nil, err
		}
		return operators.NewCreateNode(n.ID, b.store.GetCode(n.Label), props, sub), nil

	case "create_relationship":
		props, err := buildProps(n.Properties)
		if err != nil {
			return nil, err
		}
		return operators.NewCreateRelationship(n.ID, b.store.GetCode(n.Label), n.FromPos, n.ToPos, props, sub), nil

	case "update_node":
		props, err := buildProps(n.Properties)
		if err != nil {
			return nil, err
		}
		return operators.NewUpdateNode(n.ID, props, sub), nil

	case "detach_node":
		return operators.NewDetachNode(n.ID, sub), nil

	case "remove_node":
		return operators.NewRemoveNode(n.ID, sub), nil

	case "remove_relationship":
		return operators.NewRemoveRelationship(n.ID, sub), nil

	case "cross_join":
		return operators.NewCrossJoin(n.ID, n.JoinID, sub), nil

	case "nested_loop_join":
		return operators.NewNestedLoopJoin(n.ID, n.JoinID, n.LeftPos, n.RightPos, sub), nil

	case "hash_join":
		return operators.NewHashJoin(n.ID, n.JoinID, n.LeftPos, n.RightPos, sub), nil

	case "left_outer_join":
		return operators.NewLeftOuterJoin(n.ID, n.JoinID, n.LeftPos, n.RightPos, n.RightWidth, sub), nil

	case "end_pipeline":
		return operators.NewEndPipeline(n.ID, n.JoinID), nil

	case "hash_end_pipeline":
		return operators.NewHashEndPipeline(n.ID, n.JoinID, n.KeyPos), nil

	default:
		return nil, fmt.Errorf("unsupported operator type %q", n.Type)
	}
}

func (b *builder) buildItems(nodes []ItemNode) ([]operators.Item, error) {
	items := make([]operators.Item, len(nodes))
	for i, it := range nodes {
		switch it.Kind {
		case "forward":
			items[i] = operators.ForwardItem(it.Pos)
		case "property":
			rt, err := resultKind(it.ResultType)
			if err != nil {
				return nil, err
			}
			items[i] = operators.PropertyItemAt(it.Pos, it.Key, rt)
		case "conditional":
			items[i] = operators.ConditionalItemAt(it.Pos, it.HasProperties, it.Then, it.Else)
		default:
			return nil, fmt.Errorf("unsupported projection item kind %q", it.Kind)
		}
	}
	return items, nil
}

func resultKind(s string) (tuple.Kind, error) {
	switch s {
	case "int":
		return tuple.KindInt, nil
	case "double":
		return tuple.KindDouble, nil
	case "uint":
		return tuple.KindUint, nil
	case "string", "":
		return tuple.KindString, nil
	case "time":
		return tuple.KindTime, nil
	default:
		return 0, fmt.Errorf("unsupported projection result type %q", s)
	}
}

func aggregateKind(s string) (grouper.Kind, error) {
	switch s {
	case "count":
		return grouper.Count, nil
	case "pcount":
		return grouper.PCount, nil
	case "sum_int":
		return grouper.SumInt, nil
	case "sum_double":
		return grouper.SumDouble, nil
	case "sum_uint":
		return grouper.SumUint, nil
	case "avg":
		return grouper.Avg, nil
	default:
		return 0, fmt.Errorf("unsupported aggregate kind %q", s)
	}
}

func buildExpr(n *ExprNode) (*filterexpr.Node, error) {
	if n == nil {
		return nil, fmt.Errorf("filter_tuple requires an expr")
	}
	switch n.Op {
	case "key":
		return filterexpr.KeyNode(n.Key), nil
	case "number":
		return filterexpr.NumberNode(n.Value), nil
	case "string":
		return filterexpr.StringNode(n.Text), nil
	case "eq", "le", "lt", "ge", "gt", "and", "or":
		left, err := buildExpr(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := buildExpr(n.Right)
		if err != nil {
			return nil, err
		}
		switch n.Op {
		case "eq":
			return filterexpr.EqNode(left, right), nil
		case "le":
			return filterexpr.LeNode(left, right), nil
		case "lt":
			return filterexpr.LtNode(left, right), nil
		case "ge":
			return filterexpr.GeNode(left, right), nil
		case "gt":
			return filterexpr.GtNode(left, right), nil
		case "and":
			return filterexpr.AndNode(left, right), nil
		default:
			return filterexpr.OrNode(left, right), nil
		}
	case "call":
		args := make([]*filterexpr.Node, len(n.Args))
		for i := range n.Args {
			arg, err := buildExpr(&n.Args[i])
			if err != nil {
				return nil, err
			}
			args[i] = arg
		}
		return filterexpr.CallNode(n.Fn, args...), nil
	default:
		return nil, fmt.Errorf("unsupported expr op %q", n.Op)
	}
}

func buildProps(nodes []PropNode) ([]graph.PropertyInput, error) {
	out := make([]graph.PropertyInput, len(nodes))
	for i, p := range nodes {
		var cell tuple.Cell
		switch p.Kind {
		case "int":
			cell = tuple.IntCell(int64(p.Value))
		case "double":
			cell = tuple.DoubleCell(p.Value)
		case "uint":
			cell = tuple.UintCell(uint64(p.Value))
		case "string", "":
			cell = tuple.StringCell(p.Text)
		default:
			return nil, fmt.Errorf("unsupported property kind %q", p.Kind)
		}
		out[i] = graph.PropertyInput{Key: p.Key, Value: cell}
	}
	return out, nil
}
