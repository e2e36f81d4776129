// Package jqeval evaluates jq expressions against raw graph snapshots.
// It implements the query.Evaluator escape-hatch contract.
package jqeval

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/itchyny/gojq"

	"codeatlas/internal/graph"
)

// Evaluator runs jq expressions via gojq.
type Evaluator struct{}

// New creates an Evaluator.
func New() *Evaluator {
	return &Evaluator{}
}

// Evaluate parses and runs the expression over the snapshot. The snapshot
// is presented to the expression as its JSON wire form. A single output
// is returned as-is; multiple outputs are returned as a slice.
func (e *Evaluator) Evaluate(ctx context.Context, snap *graph.Snapshot, expression string) (any, error) {
	q, err := gojq.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("parse expression: %w", err)
	}

	input, err := snapshotValue(snap)
	if err != nil {
		return nil, err
	}

	var outputs []any
	iter := q.RunWithContext(ctx, input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			return nil, fmt.Errorf("evaluate expression: %w", err)
		}
		outputs = append(outputs, v)
	}

	switch len(outputs) {
	case 0:
		return nil, nil
	case 1:
		return outputs[0], nil
	default:
		return outputs, nil
	}
}

// snapshotValue converts the snapshot into the generic JSON value shape
// gojq operates on.
func snapshotValue(snap *graph.Snapshot) (any, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return v, nil
}
