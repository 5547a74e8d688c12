package memory

import (
	"context"
	"fmt"
	"sync"

	"centesimi/internal/sheets"
)

// Mirror collects audit rows in memory. It stands in for the Google client
// in tests and in deployments without a spreadsheet.
type Mirror struct {
	mu   sync.Mutex
	rows []sheets.AuditRow
}

var _ sheets.AuditWriter = (*Mirror)(nil)

func New() *Mirror {
	return &Mirror{}
}

// Append stores the row and returns a synthetic row reference.
func (m *Mirror) Append(_ context.Context, row sheets.AuditRow) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, row)
	return fmt.Sprintf("mem:%d", len(m.rows)), nil
}

// Rows returns a copy of everything appended so far.
func (m *Mirror) Rows() []sheets.AuditRow {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sheets.AuditRow(nil), m.rows...)
}
