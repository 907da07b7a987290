package task

import "strings"

type TaskOption func(*Task)

func WithText(text string) TaskOption {
	return func(task *Task) {
		task.Text = strings.TrimSpace(text)
	}
}

func WithDatetime(datetime string) TaskOption {
	return func(task *Task) {
		task.Datetime = strings.TrimSpace(datetime)
	}
}

func WithCompleted(completed bool) TaskOption {
	return func(task *Task) {
		task.Completed = completed
	}
}

func ToggledCompleted() TaskOption {
	return func(task *Task) {
		task.Completed = !task.Completed
	}
}

func (t *Task) Apply(options ...TaskOption) {
	for _, opt := range options {
		if opt != nil {
			opt(t)
		}
	}
}
