package sensor

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"
)

// 串口状态
const (
	StateStopped = "Stopped"
	StateOpened  = "Opened"
	StateClosed  = "Closed"
	StateRemoved = "Removed"
)

// PortOpener 打开串口
type PortOpener func(path string, baudRate int) (io.ReadCloser, error)

// OpenSerialPort 用 go.bug.st/serial 打开串口（8N1）
func OpenSerialPort(path string, baudRate int) (io.ReadCloser, error) {
	port, err := serial.Open(path, &serial.Mode{BaudRate: baudRate})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", path, err)
	}
	return port, nil
}

// SerialReader 串口距离传感器
//
// 传感器每行发送一个整数读数。读取在后台 goroutine 进行，
// Read 只返回最近一次解析成功的值，从不阻塞。
type SerialReader struct {
	path     string
	baudRate int
	open     PortOpener
	now      func() time.Time

	mu       sync.Mutex
	port     io.ReadCloser
	latest   float64
	lastLine string
	state    string
	average  *MovingAverage

	received          int
	countResetAt      time.Time
	readingsPerSecond int

	wg sync.WaitGroup
}

// SerialOptions 串口读取选项
type SerialOptions struct {
	Path             string
	BaudRate         int
	UseMovingAverage bool
	Open             PortOpener       // 为 nil 时使用 OpenSerialPort
	Now              func() time.Time // 为 nil 时使用 time.Now
}

// NewSerialReader 创建串口读取器（尚未打开）
func NewSerialReader(opts SerialOptions) *SerialReader {
	r := &SerialReader{
		path:     opts.Path,
		baudRate: opts.BaudRate,
		open:     opts.Open,
		now:      opts.Now,
		state:    StateStopped,
	}
	if r.open == nil {
		r.open = OpenSerialPort
	}
	if r.now == nil {
		r.now = time.Now
	}
	if opts.UseMovingAverage {
		r.average = NewMovingAverage(DefaultAverageSize)
	}
	return r
}

// Start 打开串口并开始后台读取
// 已经打开时什么也不做
func (r *SerialReader) Start() error {
	r.mu.Lock()
	if r.port != nil {
		r.mu.Unlock()
		return nil
	}
	r.mu.Unlock()

	port, err := r.open(r.path, r.baudRate)
	if err != nil {
		r.setState(err.Error())
		log.Printf("[SerialReader] Error: %v", err)
		return err
	}

	r.mu.Lock()
	r.port = port
	r.state = StateOpened
	r.countResetAt = r.now()
	r.received = 0
	r.mu.Unlock()
	log.Printf("[SerialReader] Port opened: %s (%d baud)", r.path, r.baudRate)

	r.wg.Add(1)
	go r.readLoop(port)
	return nil
}

// Stop 关闭串口并等待后台读取结束
func (r *SerialReader) Stop() error {
	return r.shutdown(StateClosed)
}

// Removed 设备从系统中移除时调用
func (r *SerialReader) Removed() {
	log.Printf("[SerialReader] Port was removed: %s", r.path)
	r.shutdown(StateRemoved)
}

func (r *SerialReader) shutdown(state string) error {
	r.mu.Lock()
	port := r.port
	r.port = nil
	r.state = state
	r.mu.Unlock()

	var err error
	if port != nil {
		err = port.Close()
	}
	r.wg.Wait()
	return err
}

// readLoop 按行读取直到串口关闭
func (r *SerialReader) readLoop(port io.ReadCloser) {
	defer r.wg.Done()

	scanner := bufio.NewScanner(port)
	for scanner.Scan() {
		r.handleLine(scanner.Text())
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.port != port {
		// Stop 或 Removed 已经设置了状态
		return
	}
	r.port = nil
	port.Close()
	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
		r.state = err.Error()
		log.Printf("[SerialReader] Error: %v", err)
		return
	}
	r.state = StateClosed
	log.Printf("[SerialReader] Port closed: %s", r.path)
}

// handleLine 解析一行读数
func (r *SerialReader) handleLine(line string) {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.received++
	if now.Sub(r.countResetAt) >= time.Second {
		r.readingsPerSecond = r.received
		r.received = 0
		r.countResetAt = now
	}

	trimmed := strings.TrimSpace(line)
	value, err := strconv.Atoi(trimmed)
	if err != nil {
		return
	}
	if r.average != nil {
		value = r.average.Add(value)
	}
	r.latest = float64(value)
	r.lastLine = trimmed
}

// Read 返回最近一次读数（可能已经过时）
func (r *SerialReader) Read() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latest
}

// Reset 串口读数由传感器决定，重置只覆盖到下一次读数到来
func (r *SerialReader) Reset(value float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.latest = value
}

// State 返回串口状态（Stopped/Opened/Closed/Removed 或错误信息）
func (r *SerialReader) State() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Connected 串口是否已打开
func (r *SerialReader) Connected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.port != nil
}

// ReadingsPerSecond 上一秒收到的读数个数
func (r *SerialReader) ReadingsPerSecond() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.readingsPerSecond
}

// LastLine 最近一次解析成功的原始行
func (r *SerialReader) LastLine() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastLine
}

// Path 返回串口设备路径
func (r *SerialReader) Path() string { return r.path }

func (r *SerialReader) setState(state string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = state
}
