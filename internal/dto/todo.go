package dto

// ListTodosQuery is the query string of GET /todos. Absent fields do not filter.
type ListTodosQuery struct {
	Completed *bool   `form:"completed"`
	Title     *string `form:"title"`
}

type CreateTodoRequest struct {
	Title string `json:"title" binding:"required"`
}

type UpdateTodoRequest struct {
	Title     *string `json:"title"`     // nil = не менять
	Completed *bool   `json:"completed"` // nil = не менять
}

type BatchUpdateTodoRequest struct {
	IDs       []int64 `json:"ids" binding:"required"`
	Completed *bool   `json:"completed" binding:"required"`
}

type TodoResponse struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

type ListTodosResponse struct {
	Items []TodoResponse `json:"items"`
}

// CountResponse carries the result of remaining, remove-completed,
// batch-update and import.
type CountResponse struct {
	Count int64 `json:"count"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
