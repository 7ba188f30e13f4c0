package sensor

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settleInterval 设备节点出现后等待权限等就绪的时间
const settleInterval = 500 * time.Millisecond

// PortWatcher 监视串口设备节点的插拔
//
// 监视设备所在目录，设备节点被创建时（防抖后）调用 onAdded，被删除时调用 onRemoved。
type PortWatcher struct {
	path      string
	fsWatcher *fsnotify.Watcher
	onAdded   func()
	onRemoved func()
	settle    time.Duration

	cancel chan struct{}
	wg     sync.WaitGroup
}

// WatchPort 开始监视串口设备
//
// 参数：
//   - path: 设备路径（如 /dev/ttyUSB0）
//   - onAdded: 设备出现时的回调
//   - onRemoved: 设备消失时的回调
//
// 返回：
//   - *PortWatcher: 监视器
//   - error: 无法监视设备目录
func WatchPort(path string, onAdded, onRemoved func()) (*PortWatcher, error) {
	return watchPort(path, settleInterval, onAdded, onRemoved)
}

func watchPort(path string, settle time.Duration, onAdded, onRemoved func()) (*PortWatcher, error) {
	fsW, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create port watcher: %w", err)
	}
	dir := filepath.Dir(path)
	if err := fsW.Add(dir); err != nil {
		fsW.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w := &PortWatcher{
		path:      filepath.Clean(path),
		fsWatcher: fsW,
		onAdded:   onAdded,
		onRemoved: onRemoved,
		settle:    settle,
		cancel:    make(chan struct{}),
	}
	w.wg.Add(1)
	go w.watchLoop()
	log.Printf("[PortWatcher] Watching %s", w.path)
	return w, nil
}

// watchLoop 处理 fsnotify 事件
func (w *PortWatcher) watchLoop() {
	defer w.wg.Done()
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.cancel:
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}

			switch {
			case event.Has(fsnotify.Create):
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(w.settle, func() {
					select {
					case <-w.cancel:
					default:
						log.Printf("[PortWatcher] Device appeared: %s", w.path)
						if w.onAdded != nil {
							w.onAdded()
						}
					}
				})
			case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
				if timer != nil {
					timer.Stop()
					timer = nil
				}
				if w.onRemoved != nil {
					w.onRemoved()
				}
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.Printf("[PortWatcher] Error: %v", err)
		}
	}
}

// Close 停止监视
func (w *PortWatcher) Close() error {
	select {
	case <-w.cancel:
		return nil
	default:
	}
	close(w.cancel)
	err := w.fsWatcher.Close()
	w.wg.Wait()
	return err
}
