package task

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// TestSlotAddAndRemove 测试槽位添加和删除
func TestSlotAddAndRemove(t *testing.T) {
	slot := NewSlot()

	slot.AddTask(NewTask("task-1", 5, nil))
	slot.AddTask(NewTask("task-2", 5, nil))

	if slot.Count() != 2 {
		t.Errorf("期望任务数 = 2, 实际 = %d", slot.Count())
	}

	if !slot.RemoveTask("task-1") {
		t.Error("期望删除成功")
	}

	if slot.Count() != 1 {
		t.Errorf("期望任务数 = 1, 实际 = %d", slot.Count())
	}

	// 删除不存在的任务
	if slot.RemoveTask("task-not-exist") {
		t.Error("期望删除失败")
	}
}

// TestSlotGetAndClear 测试获取并清空
func TestSlotGetAndClear(t *testing.T) {
	slot := NewSlot()

	slot.AddTask(NewTask("task-1", 5, nil))
	slot.AddTask(NewTask("task-2", 5, nil))

	tasks := slot.GetAndClear()

	if len(tasks) != 2 {
		t.Errorf("期望获取2个任务, 实际 = %d", len(tasks))
	}

	if slot.Count() != 0 {
		t.Errorf("期望槽位已清空, 实际任务数 = %d", slot.Count())
	}

	// 再次获取应该为空
	if tasks = slot.GetAndClear(); tasks != nil {
		t.Errorf("期望 nil, 实际 = %v", tasks)
	}
}

// TestTimeWheelTick 测试时间轮推进
func TestTimeWheelTick(t *testing.T) {
	wheel := NewTimeWheel()
	defer wheel.Stop()

	// 添加延迟1秒的任务
	wheel.AddTask(NewTask("task-1", 1, nil))

	tasks := wheel.Tick()

	if len(tasks) != 1 {
		t.Fatalf("期望获取1个任务, 实际 = %d", len(tasks))
	}

	if tasks[0].ID != "task-1" {
		t.Errorf("期望任务ID = task-1, 实际 = %s", tasks[0].ID)
	}
}

// TestSchedulerStartStop 测试调度器启动和停止
func TestSchedulerStartStop(t *testing.T) {
	scheduler := NewScheduler(5)

	if err := scheduler.Start(); err != nil {
		t.Fatalf("启动调度器失败: %v", err)
	}

	if !scheduler.IsRunning() {
		t.Error("期望调度器运行中")
	}

	// 重复启动应该失败
	if err := scheduler.Start(); err == nil {
		t.Error("期望重复启动失败")
	}

	scheduler.Stop()

	if scheduler.IsRunning() {
		t.Error("期望调度器已停止")
	}
}

// TestSchedulerAddRemoveTask 测试添加和删除任务
func TestSchedulerAddRemoveTask(t *testing.T) {
	scheduler := NewScheduler(5)
	scheduler.Start()
	defer scheduler.Stop()

	task := NewTask("task-1", 5, func(ctx context.Context) error { return nil })

	if err := scheduler.AddTask(task); err != nil {
		t.Errorf("添加任务失败: %v", err)
	}

	if err := scheduler.RemoveTask("task-1", 5); err != nil {
		t.Errorf("删除任务失败: %v", err)
	}

	// 删除不存在的任务
	if err := scheduler.RemoveTask("task-not-exist", 5); err == nil {
		t.Error("期望删除失败")
	}
}

// TestSchedulerTaskExecution 测试任务执行
func TestSchedulerTaskExecution(t *testing.T) {
	scheduler := NewScheduler(5)
	scheduler.Start()
	defer scheduler.Stop()

	var executed atomic.Int32

	fn := func(ctx context.Context) error {
		executed.Add(1)
		return nil
	}

	// 添加多个任务,延迟1秒
	for i := 1; i <= 5; i++ {
		scheduler.AddTask(NewTask(fmt.Sprintf("task-%d", i), 1, fn))
	}

	// 等待任务执行 (2秒足够)
	time.Sleep(2 * time.Second)

	if executed.Load() != 5 {
		t.Errorf("期望执行5个任务, 实际 = %d", executed.Load())
	}
}

// TestSchedulerRecurringTask 测试周期任务重复执行
func TestSchedulerRecurringTask(t *testing.T) {
	scheduler := NewScheduler(5)
	scheduler.Start()
	defer scheduler.Stop()

	var executed atomic.Int32

	task := NewRecurringTask("task-recurring", 1, func(ctx context.Context) error {
		executed.Add(1)
		return nil
	})
	scheduler.AddTask(task)

	// 间隔1秒的周期任务在3.5秒内应至少执行2次
	time.Sleep(3500 * time.Millisecond)

	if executed.Load() < 2 {
		t.Errorf("期望周期任务至少执行2次, 实际 = %d", executed.Load())
	}
}

// TestSchedulerConcurrent 测试并发安全
func TestSchedulerConcurrent(t *testing.T) {
	scheduler := NewScheduler(10)
	scheduler.Start()
	defer scheduler.Stop()

	var executed atomic.Int32

	fn := func(ctx context.Context) error {
		executed.Add(1)
		return nil
	}

	// 并发添加任务
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			scheduler.AddTask(NewTask(fmt.Sprintf("task-%d", id), 1, fn))
		}(i)
	}

	wg.Wait()

	// 等待任务执行
	time.Sleep(2 * time.Second)

	if executed.Load() != 100 {
		t.Errorf("期望执行100个任务, 实际 = %d", executed.Load())
	}
}

// TestWorkerPoolPanicRecover 测试 panic 恢复
func TestWorkerPoolPanicRecover(t *testing.T) {
	scheduler := NewScheduler(5)
	scheduler.Start()
	defer scheduler.Stop()

	var executed atomic.Int32

	panicFn := func(ctx context.Context) error {
		executed.Add(1)
		panic("测试 panic")
	}

	normalFn := func(ctx context.Context) error {
		executed.Add(1)
		return nil
	}

	scheduler.AddTask(NewTask("task-panic", 1, panicFn))
	scheduler.AddTask(NewTask("task-normal", 1, normalFn))

	time.Sleep(2 * time.Second)

	// 两个任务都应该被执行 (panic 被恢复)
	if executed.Load() != 2 {
		t.Errorf("期望执行2个任务, 实际 = %d", executed.Load())
	}
}

// BenchmarkTimeWheelTick 性能测试: 时间轮推进
func BenchmarkTimeWheelTick(b *testing.B) {
	wheel := NewTimeWheel()
	defer wheel.Stop()

	for i := 0; i < 100; i++ {
		wheel.AddTask(NewTask(fmt.Sprintf("task-%d", i), 1, nil))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		wheel.Tick()
	}
}
