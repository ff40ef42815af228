package haeksim

const (
	GeneratePath = "/api/generate"
	StatusPath   = "/api/status/"

	FieldPrompt = "prompt"
	FieldFile   = "file"
)

// TaskStatus is the state of one task on the generation service.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
)

// IsTerminal reports whether polling must stop.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}
