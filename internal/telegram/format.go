package telegram

import (
	"fmt"
	"strings"

	"centesimi/internal/core"
)

const usageText = `Commands:
/lc - list categories
/nc <alias> <name> - new category (send /nc alone to be asked step by step)
/uc <alias> <new name> - rename a category (works step by step too)
/cost <alias> <YYYY-MM-DD> <amount> - record a spending on a date
/rm - remove the last spending
/stm - totals for the current month
/sp <from> <to> - totals between dates (end day excluded)

Or just send "<alias> <amount>" to record a spending now. Send only the
alias or only the amount and the other half is asked for.`

// formatCategories renders the category list one per line.
func formatCategories(cats []core.Category) string {
	var sb strings.Builder
	sb.WriteString("Categories:")
	for _, c := range cats {
		fmt.Fprintf(&sb, "\n%s (%s)", c.Alias, c.Name)
	}
	return sb.String()
}

// formatBreakdown renders per-category totals plus the grand total.
func formatBreakdown(header string, b core.Breakdown) string {
	if len(b.Rows) == 0 {
		return fmt.Sprintf("%s: no entries.", header)
	}

	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteString(":")
	for _, row := range b.Rows {
		fmt.Fprintf(&sb, "\n%s (%s): %s (%s)",
			row.Category.Alias, row.Category.Name,
			core.FormatCents(row.TotalCents), countLabel(row.Count))
	}
	fmt.Fprintf(&sb, "\nTotal: %s", core.FormatCents(b.TotalCents))
	return sb.String()
}

func countLabel(n int64) string {
	if n == 1 {
		return "1 entry"
	}
	return fmt.Sprintf("%d entries", n)
}
