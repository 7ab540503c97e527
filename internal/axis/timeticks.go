package axis

import "time"

// TimeTick is a labelled mark on a date axis.
type TimeTick struct {
	Time  time.Time
	Label string
}

type timeStep struct {
	step   time.Duration
	layout string
}

const day = 24 * time.Hour

var timeSteps = []timeStep{
	{step: time.Minute, layout: "15:04"},
	{step: 5 * time.Minute, layout: "15:04"},
	{step: 10 * time.Minute, layout: "15:04"},
	{step: 30 * time.Minute, layout: "Jan 2 15:04"},
	{step: time.Hour, layout: "Jan 2 15:04"},
	{step: 6 * time.Hour, layout: "Jan 2 15:04"},
	{step: 12 * time.Hour, layout: "Jan 2 15:04"},
	{step: day, layout: "Jan 2"},
	{step: 2 * day, layout: "Jan 2"},
	{step: 7 * day, layout: "Jan 2"},
	{step: 14 * day, layout: "Jan 2"},
	{step: 30 * day, layout: "2006-01-02"},
}

// TimeTicks returns at most maxTicks ticks inside [start, end], aligned to
// UTC step boundaries. The step is the finest one on a fixed ladder that
// keeps the count within maxTicks; spans too long for the coarsest step are
// truncated at maxTicks.
func TimeTicks(start, end time.Time, maxTicks int) []TimeTick {
	if maxTicks <= 0 {
		return nil
	}
	start, end = start.UTC(), end.UTC()
	if end.Before(start) {
		start, end = end, start
	}
	if end.Equal(start) {
		return []TimeTick{{Time: start, Label: start.Format(timeSteps[len(timeSteps)-1].layout)}}
	}

	chosen := timeSteps[len(timeSteps)-1]
	for _, ts := range timeSteps {
		if countTimeTicks(start, end, ts.step) <= maxTicks {
			chosen = ts
			break
		}
	}

	ticks := make([]TimeTick, 0, maxTicks)
	for t := alignTime(start, chosen.step); !t.After(end) && len(ticks) < maxTicks; t = t.Add(chosen.step) {
		ticks = append(ticks, TimeTick{Time: t, Label: t.Format(chosen.layout)})
	}
	return ticks
}

// alignTime rounds t up to the next multiple of step since the zero time.
func alignTime(t time.Time, step time.Duration) time.Time {
	aligned := t.Truncate(step)
	if aligned.Before(t) {
		aligned = aligned.Add(step)
	}
	return aligned
}

func countTimeTicks(start, end time.Time, step time.Duration) int {
	first := alignTime(start, step)
	if first.After(end) {
		return 0
	}
	return int(end.Sub(first)/step) + 1
}
