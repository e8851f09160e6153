package task

import (
	"context"
	"time"
)

// TaskFunc 任务执行函数类型
type TaskFunc func(ctx context.Context) error

// Task 延迟任务
// Recurring 为 true 时任务执行后按原 Delay 重新入轮，用于周期性维护任务
type Task struct {
	ID        string    // 任务唯一 ID
	Delay     int       // 延迟秒数 (1-60)
	Recurring bool      // 是否周期执行
	Fn        TaskFunc  // 执行函数
	CreatedAt time.Time // 创建时间
}

// NewTask 创建一次性任务
func NewTask(id string, delay int, fn TaskFunc) *Task {
	return &Task{
		ID:        id,
		Delay:     delay,
		Fn:        fn,
		CreatedAt: time.Now(),
	}
}

// NewRecurringTask 创建周期任务
func NewRecurringTask(id string, interval int, fn TaskFunc) *Task {
	t := NewTask(id, interval, fn)
	t.Recurring = true
	return t
}

// Execute 执行任务
func (t *Task) Execute(ctx context.Context) error {
	if t.Fn == nil {
		return nil
	}
	return t.Fn(ctx)
}
