package backend

// Envelope is the uniform wrapper in which the backend returns every response
type Envelope[T any] struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Data      T      `json:"data"`
}

// Page is the shape of every paginated list returned by the backend
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
}
