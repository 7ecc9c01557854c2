package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

const (
	// MinRating is the lowest score the oracle may return ("no risk").
	MinRating = 0
	// MaxRating is the highest score the oracle may return.
	MaxRating = 10
)

var errMalformed = errors.New("malformed oracle verdict")

// Result is the outcome of classifying one file: either a score or Indeterminate.
type Result struct {
	Rating      int
	Description string
	Determinate bool
}

// Scored returns a determinate result.
func Scored(rating int, description string) Result {
	return Result{Rating: rating, Description: description, Determinate: true}
}

// Indeterminate returns the result used when the oracle could not produce a verdict.
func Indeterminate() Result {
	return Result{}
}

// IsIndeterminate reports whether no score was obtained.
func (r Result) IsIndeterminate() bool {
	return !r.Determinate
}

func (r Result) String() string {
	if r.IsIndeterminate() {
		return "indeterminate"
	}
	return fmt.Sprintf("score(%d)", r.Rating)
}

// ParseVerdict strictly validates the oracle's message content. The content must be a
// single JSON object {"data":{"rating":number,"description":string}} with an integral
// rating within [MinRating, MaxRating]. Surrounding prose or code fences are rejected.
func ParseVerdict(content string) (Result, error) {
	var envelope struct {
		Data map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &envelope); err != nil {
		return Result{}, fmt.Errorf("%w: %v", errMalformed, err)
	}
	if envelope.Data == nil {
		return Result{}, fmt.Errorf("%w: missing data object", errMalformed)
	}

	rating, ok := envelope.Data["rating"].(float64)
	if !ok {
		return Result{}, fmt.Errorf("%w: data.rating is not a number", errMalformed)
	}
	if rating != math.Trunc(rating) || rating < MinRating || rating > MaxRating {
		return Result{}, fmt.Errorf("%w: data.rating %v is not an integer in [%d,%d]", errMalformed, rating, MinRating, MaxRating)
	}

	description, ok := envelope.Data["description"].(string)
	if !ok {
		return Result{}, fmt.Errorf("%w: data.description is not a string", errMalformed)
	}

	return Scored(int(rating), description), nil
}
