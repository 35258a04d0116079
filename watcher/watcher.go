// Package watcher 监听场景文件与设备配置文件的变化，去抖后通知调用方重新求值。
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher 监听一组文件。fsnotify 监听的是文件所在目录，
// 这样编辑器以"写临时文件再重命名"的方式保存时也能收到事件。
type Watcher struct {
	fs        *fsnotify.Watcher
	files     map[string]bool
	debouncer *Debouncer
}

// New 为 paths 创建监听器，空路径会被忽略。
func New(paths []string, debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("创建文件监听失败: %w", err)
	}
	w := &Watcher{
		fs:        fw,
		files:     map[string]bool{},
		debouncer: NewDebouncer(debounce),
	}
	dirs := map[string]bool{}
	for _, p := range paths {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			fw.Close()
			return nil, fmt.Errorf("解析路径 %s 失败: %w", p, err)
		}
		w.files[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("监听目录 %s 失败: %w", dir, err)
		}
		dirs[dir] = true
	}
	if len(w.files) == 0 {
		fw.Close()
		return nil, fmt.Errorf("没有需要监听的文件")
	}
	return w, nil
}

// Files 返回被监听文件的绝对路径。
func (w *Watcher) Files() []string {
	out := make([]string, 0, len(w.files))
	for f := range w.files {
		out = append(out, f)
	}
	return out
}

// Run 阻塞直到 ctx 结束。被监听文件发生写入、创建、重命名或删除时，
// 去抖后以该文件路径调用 onChange；onChange 串行执行，Run 返回前会等待进行中的调用结束。
// 监听错误交给 onError（可为 nil）。
func (w *Watcher) Run(ctx context.Context, onChange func(path string), onError func(error)) error {
	defer func() {
		w.debouncer.Cancel()
		w.debouncer.Wait()
	}()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			name := filepath.Clean(event.Name)
			w.debouncer.Trigger(func() { onChange(name) })
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			if onError != nil {
				onError(err)
			}
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	abs, err := filepath.Abs(event.Name)
	if err != nil || !w.files[abs] {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove)
}

// Close 释放底层监听。
func (w *Watcher) Close() error {
	w.debouncer.Cancel()
	return w.fs.Close()
}
