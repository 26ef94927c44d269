// Package quality aggregates coal-quality test results.
package quality

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"coalhub/model"
)

// ErrInvalidResult is matched by every ValidationError.
var ErrInvalidResult = errors.New("invalid test result")

// ValidationError describes the first test result that could not be aggregated.
type ValidationError struct {
	// Index is the position of the offending entry, or -1 for a whole group.
	Index    int
	ItemCode string
	// Field is "itemCode", "value" or "weight".
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("item %q: %s", e.ItemCode, e.Reason)
	}
	if e.Value != "" {
		return fmt.Sprintf("result %d (item %q): %s %q %s", e.Index, e.ItemCode, e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("result %d (item %q): %s %s", e.Index, e.ItemCode, e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidResult) hold.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidResult
}

// ParseNumber converts submitted text to a finite float64.
func ParseNumber(s model.Numeric) (float64, error) {
	text := strings.TrimSpace(string(s))
	if text == "" {
		return 0, errors.New("is empty")
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, errors.New("is not a number")
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.New("is not finite")
	}
	return v, nil
}

// ParseWeight converts a weight, defaulting to 1 when none was supplied.
func ParseWeight(s model.Numeric) (float64, error) {
	if s.IsEmpty() {
		return 1, nil
	}
	w, err := ParseNumber(s)
	if err != nil {
		return 0, err
	}
	if w < 0 {
		return 0, errors.New("is negative")
	}
	return w, nil
}

// group accumulates one item code with Neumaier compensated sums.
type group struct {
	code        string
	sum, sumC   float64
	total, totC float64
}

func (g *group) add(value, weight float64) {
	g.sum, g.sumC = neumaier(g.sum, g.sumC, value*weight)
	g.total, g.totC = neumaier(g.total, g.totC, weight)
}

func (g *group) average() float64 {
	return (g.sum + g.sumC) / (g.total + g.totC)
}

func neumaier(sum, c, x float64) (float64, float64) {
	t := sum + x
	if math.Abs(sum) >= math.Abs(x) {
		c += (sum - t) + x
	} else {
		c += (x - t) + sum
	}
	return t, c
}

// ComputeWeightedAverages returns the weighted mean of the values of every
// item code in results: Σ(value·weight) / Σ(weight), with a missing weight
// counting as 1 for that entry.
//
// It returns nil and no error when results is empty. The first invalid entry
// aborts the computation with a *ValidationError, as does a code whose total
// weight is not positive.
func ComputeWeightedAverages(results []model.TestResult) (map[string]float64, error) {
	if len(results) == 0 {
		return nil, nil
	}

	groups := make(map[string]*group)
	order := make([]*group, 0)

	for i, r := range results {
		if strings.TrimSpace(r.ItemCode) == "" {
			return nil, &ValidationError{Index: i, Field: "itemCode", Reason: "is empty"}
		}
		value, err := ParseNumber(r.Value)
		if err != nil {
			return nil, &ValidationError{
				Index: i, ItemCode: r.ItemCode, Field: "value", Value: string(r.Value), Reason: err.Error(),
			}
		}
		weight, err := ParseWeight(r.Weight)
		if err != nil {
			return nil, &ValidationError{
				Index: i, ItemCode: r.ItemCode, Field: "weight", Value: string(r.Weight), Reason: err.Error(),
			}
		}

		g, ok := groups[r.ItemCode]
		if !ok {
			g = &group{code: r.ItemCode}
			groups[r.ItemCode] = g
			order = append(order, g)
		}
		g.add(value, weight)
	}

	averages := make(map[string]float64, len(order))
	for _, g := range order {
		if g.total+g.totC <= 0 {
			return nil, &ValidationError{
				Index: -1, ItemCode: g.code, Field: "weight", Reason: "total weight must be positive",
			}
		}
		avg := g.average()
		if math.IsNaN(avg) || math.IsInf(avg, 0) {
			return nil, &ValidationError{
				Index: -1, ItemCode: g.code, Field: "value", Reason: "weighted average overflows",
			}
		}
		averages[g.code] = avg
	}
	return averages, nil
}
