package conf

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchCallback 规则文件变更后的回调函数。
// err 为重载或监视错误（读取、解析失败时旧规则保持生效）；
// 重载成功时 err 为 nil，issues 为重载后规则的逐条校验结果。
// 回调自身 panic 会被恢复，并以包装 [ErrWatchFailed] 的错误再次通知。
type WatchCallback func(r *Rules, issues []Issue, err error)

// WatchOption 监视器配置选项。
type WatchOption func(*watchOptions)

type watchOptions struct {
	debounce time.Duration
}

func defaultWatchOptions() *watchOptions {
	return &watchOptions{
		debounce: 100 * time.Millisecond,
	}
}

// WithDebounce 设置防抖时间。
// 在指定时间内的多次变更只触发一次重载，必须为正值。
func WithDebounce(d time.Duration) WatchOption {
	return func(o *watchOptions) {
		o.debounce = d
	}
}

// Watcher 规则文件监视器。
// 监控规则文件变更，自动重载并重新校验。
type Watcher struct {
	rules    *Rules
	watcher  *fsnotify.Watcher
	callback WatchCallback
	debounce time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	mu       sync.Mutex
	running  bool
	timer    *time.Timer // 防抖定时器，Stop() 时需要取消
}

// Watch 创建规则文件监视器。
//
// 文件变更时自动调用 [Rules.Reload] 并重新校验全部条目，
// 结果通过 callback 通知调用方。监视的是文件所在目录而非文件本身，
// 以兼容编辑器先删后建、写临时文件再 rename 的原子写入模式。
//
// 返回的 Watcher 需调用 Start 或 StartAsync 开始监视，Stop 停止。
// 从字节数据加载的规则不支持监视。
func Watch(rules *Rules, callback WatchCallback, opts ...WatchOption) (*Watcher, error) {
	if rules == nil {
		return nil, fmt.Errorf("%w: nil rules", ErrWatchFailed)
	}
	if rules.path == "" {
		return nil, ErrNotFromFile
	}
	if callback == nil {
		return nil, ErrNilCallback
	}

	options := defaultWatchOptions()
	for _, opt := range opts {
		opt(options)
	}
	if options.debounce <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDebounce, options.debounce)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWatchFailed, err)
	}

	dir := filepath.Dir(rules.path)
	if err := fsWatcher.Add(dir); err != nil {
		closeErr := fsWatcher.Close()
		return nil, errors.Join(
			fmt.Errorf("%w: watch directory %s: %w", ErrWatchFailed, dir, err),
			closeErr,
		)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Watcher{
		rules:    rules,
		watcher:  fsWatcher,
		callback: callback,
		debounce: options.debounce,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Start 启动监视。
// 此方法会阻塞直到 Stop 被调用，通常应在 goroutine 中运行。
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	w.run()
}

// StartAsync 异步启动监视，立即返回。
// 先置位 running 再启动 goroutine，避免与 Stop 的竞态。
func (w *Watcher) StartAsync() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	go w.run()
}

// Stop 停止监视并释放 fsnotify 资源。
// 幂等；返回后不再触发回调。未启动过的 Watcher 也可调用。
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	// 停止防抖定时器，防止 Stop 后仍触发回调
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}

	w.cancel()
	w.running = false
	return w.watcher.Close()
}

// run 运行监视循环。
func (w *Watcher) run() {
	filename := filepath.Base(w.rules.path)

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event, filename)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.handleError(err)
		}
	}
}

// handleEvent 处理文件系统事件。
func (w *Watcher) handleEvent(event fsnotify.Event, filename string) {
	// 只处理目标规则文件的事件
	if filepath.Base(event.Name) != filename {
		return
	}

	// Write: 直接修改；Create: 先删后建；Rename: 写临时文件后原子替换
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	// 防抖：重置计时器
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}

	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case <-w.ctx.Done():
			return
		default:
		}

		err := w.rules.Reload()
		var issues []Issue
		if err == nil {
			issues = w.rules.Validate()
		}
		w.invoke(issues, err)
	})
}

// handleError 处理 fsnotify 错误。
func (w *Watcher) handleError(err error) {
	w.invoke(nil, fmt.Errorf("conf: watch error: %w", err))
}

// invoke 调用用户回调，恢复回调中的 panic 以保持监视循环存活。
// panic 值包装成 ErrWatchFailed 错误再次通知；错误通知自身再 panic 则放弃。
func (w *Watcher) invoke(issues []Issue, err error) {
	if w.callback == nil {
		return
	}
	defer func() {
		if v := recover(); v != nil {
			w.reportPanic(v)
		}
	}()
	w.callback(w.rules, issues, err)
}

// reportPanic 将回调 panic 的值以错误形式通知回调方。
func (w *Watcher) reportPanic(v any) {
	defer func() { _ = recover() }()
	w.callback(w.rules, nil, fmt.Errorf("%w: callback panic: %v", ErrWatchFailed, v))
}
