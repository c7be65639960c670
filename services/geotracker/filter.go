package geotracker

import (
	"fmt"

	"github.com/Knetic/govaluate"
)

// Filter decides whether a validated point is recorded, eg. "speed >= 1"
// to drop stationary fixes. An empty expression records everything.
type Filter struct {
	expr *govaluate.EvaluableExpression
}

func NewFilter(expression string) (*Filter, error) {
	if expression == "" {
		return &Filter{}, nil
	}
	expr, err := govaluate.NewEvaluableExpression(expression)
	if err != nil {
		return nil, fmt.Errorf("record expression %q: %w", expression, err)
	}
	return &Filter{expr: expr}, nil
}

func (f *Filter) Allow(p TrackPoint) (bool, error) {
	if f == nil || f.expr == nil {
		return true, nil
	}
	result, err := f.expr.Evaluate(map[string]interface{}{
		"latitude":  p.Latitude,
		"longitude": p.Longitude,
		"altitude":  p.Altitude,
		"speed":     p.Speed,
	})
	if err != nil {
		return false, err
	}
	allow, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("record expression %q is not boolean: %v", f.expr.String(), result)
	}
	return allow, nil
}
