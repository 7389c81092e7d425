package queue

import "github.com/voicebox/voicebox-api/internal/domain"

// TaskView is a read-model of a task enriched with its derived queue
// position. Position is 0 for anything not pending.
type TaskView struct {
	Task     *domain.Task
	Position int
}

// viewOf pairs a task clone with its current queue position.
func (q *Queue) viewOf(task *domain.Task) *TaskView {
	return &TaskView{
		Task:     task,
		Position: q.registry.QueuePosition(task.ID),
	}
}
