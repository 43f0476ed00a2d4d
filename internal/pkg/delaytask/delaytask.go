package delaytask

import (
	"context"
	"sync"
	"time"
)

// Task 一个延迟任务的句柄
type Task struct {
	timer  *time.Timer
	ctx    context.Context
	cancel context.CancelFunc
}

// Cancel 尽力取消。如果任务已经开始执行，只会取消传给它的 ctx，
// 执行中的任务需要自己在动手前检查状态
func (t *Task) Cancel() bool {
	stopped := t.timer.Stop()
	t.cancel()
	return stopped
}

// Done 任务被取消或者调度器关闭时关闭
func (t *Task) Done() <-chan struct{} {
	return t.ctx.Done()
}

// Scheduler 按 key 管理延迟任务，同一个 key 同时只有一个待执行的任务
type Scheduler[K comparable] struct {
	mu     sync.Mutex
	tasks  map[K]*Task
	ctx    context.Context
	cancel context.CancelFunc
}

func NewScheduler[K comparable]() *Scheduler[K] {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler[K]{
		tasks:  make(map[K]*Task),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Schedule 如果 key 上已经有任务，旧任务会被取消
func (s *Scheduler[K]) Schedule(key K, delay time.Duration, fn func(ctx context.Context)) *Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.tasks[key]; ok {
		old.Cancel()
	}
	ctx, cancel := context.WithCancel(s.ctx)
	task := &Task{ctx: ctx, cancel: cancel}
	task.timer = time.AfterFunc(delay, func() {
		s.remove(key, task)
		if ctx.Err() != nil {
			return
		}
		fn(ctx)
	})
	s.tasks[key] = task
	return task
}

// Cancel 取消 key 上的待执行任务，返回 true 表示任务还没开始执行
func (s *Scheduler[K]) Cancel(key K) bool {
	s.mu.Lock()
	task, ok := s.tasks[key]
	delete(s.tasks, key)
	s.mu.Unlock()
	if !ok {
		return false
	}
	return task.Cancel()
}

// Pending key 上是否还有没执行的任务
func (s *Scheduler[K]) Pending(key K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[key]
	return ok
}

func (s *Scheduler[K]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Close 取消全部任务，之后调度的任务不会再执行
func (s *Scheduler[K]) Close() {
	s.mu.Lock()
	tasks := s.tasks
	s.tasks = make(map[K]*Task)
	s.mu.Unlock()
	for _, t := range tasks {
		t.Cancel()
	}
	s.cancel()
}

func (s *Scheduler[K]) remove(key K, task *Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.tasks[key]; ok && cur == task {
		delete(s.tasks, key)
	}
}
