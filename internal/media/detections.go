package media

import (
	"cmp"
	"math"
	"slices"
	"strconv"
)

// defaultShowFor is how long a detection box stays on screen in seconds.
const defaultShowFor = 1.0

// Box is a detection bounding box at a time of the video. Coords are x, y, width and height in percent.
type Box struct {
	Time    float64
	Coords  [4]float64
	ShowFor float64
}

// VisibleDetections returns the boxes shown at the playback position. A box is visible within half of its
// display time around its own time.
func VisibleDetections(boxes []Box, position float64) []Box {
	var visible []Box
	for _, b := range boxes {
		showFor := b.ShowFor
		if showFor <= 0 {
			showFor = defaultShowFor
		}
		if math.Abs(position-b.Time) <= showFor/2 {
			visible = append(visible, b)
		}
	}
	return visible
}

// flagColors colour the flags of successive detection answers.
var flagColors = []string{ //nolint:gochecknoglobals // palette
	"flag-red", "flag-orange", "flag-blue", "flag-green", "flag-purple",
	"flag-pink", "flag-yellow", "flag-indigo", "flag-teal", "flag-cyan",
}

// Flag marks a detection on the video progress bar.
type Flag struct {
	Time    float64
	Label   string
	Color   string
	Percent float64
}

// Flags turns the timestamps of the detection answers into progress bar flags. The n-th answer is labelled
// "Result n" and gets the n-th colour of the palette, gray when the palette runs out. Flags are sorted by time and
// duplicates of the same answer are dropped.
func Flags(answers [][]float64, duration float64) []Flag {
	var flags []Flag
	for i, timestamps := range answers {
		color := "flag-gray"
		if i < len(flagColors) {
			color = flagColors[i]
		}
		label := "Result " + strconv.Itoa(i+1)
		for _, t := range timestamps {
			percent := 0.0
			if duration > 0 {
				percent = math.Min(t/duration*100, 100) //nolint:mnd // percent
			}
			flag := Flag{Time: t, Label: label, Color: color, Percent: percent}
			if !slices.ContainsFunc(flags, func(f Flag) bool { return f.Time == t && f.Color == color }) {
				flags = append(flags, flag)
			}
		}
	}
	slices.SortStableFunc(flags, func(a, b Flag) int {
		return cmp.Compare(a.Time, b.Time)
	})
	return flags
}
