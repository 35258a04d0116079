package watcher

import (
	"sync"
	"time"
)

// DefaultDebounce 是默认的合并窗口，编辑器保存时往往连续产生多个事件。
const DefaultDebounce = 200 * time.Millisecond

// Debouncer 将窗口期内的多次触发合并为最后一次回调。回调串行执行，同一时刻至多一个。
type Debouncer struct {
	duration time.Duration

	run   sync.Mutex // 持有期间正在执行回调
	mu    sync.Mutex
	timer *time.Timer
	seq   uint64
}

// NewDebouncer 创建 Debouncer，duration <= 0 时使用 DefaultDebounce。
func NewDebouncer(duration time.Duration) *Debouncer {
	if duration <= 0 {
		duration = DefaultDebounce
	}
	return &Debouncer{duration: duration}
}

// Trigger 在窗口期结束后执行 callback；窗口期内再次触发会取消之前的回调。
func (d *Debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	seq := d.seq

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, func() {
		d.run.Lock()
		defer d.run.Unlock()
		// 等待上一个回调期间可能又有新的触发或取消，只执行最新一次。
		d.mu.Lock()
		current := seq == d.seq
		if current {
			d.timer = nil
		}
		d.mu.Unlock()
		if current {
			callback()
		}
	})
}

// Cancel 取消尚未执行的回调。
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Wait 阻塞到正在执行的回调结束。与 Cancel 连用可保证之后不再有回调运行。
func (d *Debouncer) Wait() {
	d.run.Lock()
	d.run.Unlock()
}

// Pending 报告是否有等待执行的回调。
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Duration 返回合并窗口。
func (d *Debouncer) Duration() time.Duration { return d.duration }
