package series

import (
	"github.com/chemiclast/rasorite/internal/errors"
	"github.com/chemiclast/rasorite/internal/value"
)

// Normalize rescales primary against the mean of reference. Each reference
// point with value r contributes the primary point at exactly the same
// timestamp, multiplied by mean/r. Timestamps missing from primary and
// reference points equal to zero are dropped. The result follows the order
// of reference and keeps the primary series' name.
func Normalize(primary, reference Series) (Series, error) {
	out := Series{Name: primary.Name}
	if len(reference.Points) == 0 {
		return out, nil
	}

	values := make([]value.Value, len(reference.Points))
	for i, p := range reference.Points {
		values[i] = p.Value
	}
	sum, err := value.Sum(values)
	if err != nil {
		return Series{}, errors.New().Wrap(ErrNormalize, err).
			WithMessage("cannot average reference series " + reference.Name)
	}
	mean := sum.Float64() / float64(len(values))

	out.Points = make([]Point, 0, len(reference.Points))
	for _, ref := range reference.Points {
		if ref.Value.IsZero() {
			continue
		}
		match, ok := findAt(primary, ref)
		if !ok {
			continue
		}
		scalar := mean / ref.Value.Float64()
		out.Points = append(out.Points, Point{
			Time:  ref.Time,
			Value: value.FromFloat64(match.Value.Float64() * scalar),
		})
	}
	return out, nil
}

func findAt(s Series, ref Point) (Point, bool) {
	for _, p := range s.Points {
		if p.Time.Equal(ref.Time) {
			return p, true
		}
	}
	return Point{}, false
}
