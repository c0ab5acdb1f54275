package models

import "fmt"

type Format string

const (
	FormatSingleElimination Format = "single_elimination"
	FormatDoubleElimination Format = "double_elimination"
	FormatRoundRobin        Format = "round_robin"
	FormatSwiss             Format = "swiss"
	FormatMultiStage        Format = "multi_stage"
)

var knownFormats = []Format{
	FormatSingleElimination,
	FormatDoubleElimination,
	FormatRoundRobin,
	FormatSwiss,
	FormatMultiStage,
}

func ParseFormat(s string) (Format, error) {
	for _, f := range knownFormats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q", s)
}

// DrawsByDefault reports whether a completed match without a winner is a legal outcome.
func (f Format) DrawsByDefault() bool {
	return f == FormatRoundRobin || f == FormatSwiss
}

// Elimination formats qualify by bracket depth instead of by standings.
func (f Format) Elimination() bool {
	return f == FormatSingleElimination || f == FormatDoubleElimination
}
