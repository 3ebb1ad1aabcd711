package domain

// TodoItem is a single todo entry; Time is an optional HH:MM due time.
type TodoItem struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	Time      string `json:"time,omitempty"`
}
