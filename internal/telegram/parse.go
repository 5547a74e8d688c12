package telegram

import (
	"strings"

	"centesimi/internal/core"
)

// commandArgs returns the whitespace-separated arguments after the command
// word, so "/nc food Food and drink" yields ["food", "Food", "and", "drink"].
func commandArgs(text string) []string {
	fields := strings.Fields(text)
	if len(fields) <= 1 {
		return nil
	}
	return fields[1:]
}

// scanAmount runs through the pieces of a message and returns the parsed
// value of the last one that reads as an amount.
func scanAmount(pieces []string) (cents int64, found bool) {
	for _, piece := range pieces {
		if v, err := core.ParseAmountCents(piece); err == nil {
			cents, found = v, true
		}
	}
	return cents, found
}
