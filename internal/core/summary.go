package core

// CategoryTotal is one row of a per-category breakdown: how many non-deleted
// entries matched and their exact sum.
type CategoryTotal struct {
	Category   Category
	Count      int64
	TotalCents int64
}

// Breakdown is a sparse per-category aggregation over a window. Categories
// with no matching entries are omitted.
type Breakdown struct {
	ConversationID int64
	TotalCents     int64
	Rows           []CategoryTotal
}
