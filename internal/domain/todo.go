package domain

// Todo is the only persisted entity.
// Не зависит от Gin, Postgres, Redis.
type Todo struct {
	ID        int64
	Title     string
	Completed bool
}

// TodoFilter narrows a query over todos. Zero value matches everything.
type TodoFilter struct {
	Completed *bool
	// Title is a substring constraint; empty means no constraint.
	Title string
	// IDs restricts to the given ids. nil = no constraint, empty = matches nothing.
	IDs []int64
}

// TodoPatch holds the fields to change. nil = не менять.
type TodoPatch struct {
	Title     *string
	Completed *bool
}

// Empty reports whether the patch changes nothing.
func (p TodoPatch) Empty() bool {
	return p.Title == nil && p.Completed == nil
}
