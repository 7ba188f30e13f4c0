package app

import (
	"errors"
	"log"

	"github.com/decker502/curiosity/pkg/config"
	"github.com/decker502/curiosity/pkg/scenes"
	"github.com/decker502/curiosity/pkg/sensor"
)

// distanceInput 本次运行使用的距离来源
//
// 配置了串口时使用串口传感器（并监视设备插拔），否则使用模拟滑块。
type distanceInput struct {
	source  sensor.Source
	slider  *sensor.Slider
	serial  *sensor.SerialReader
	watcher *sensor.PortWatcher
}

// newDistanceInput 根据配置创建距离来源
//
// 参数：
//   - cfg: 配置
//   - open: 串口打开函数（为 nil 时使用真实串口）
//
// 返回：
//   - *distanceInput: 距离来源；串口打开失败不是错误，读数保持最后的值
func newDistanceInput(cfg *config.Configuration, open sensor.PortOpener) *distanceInput {
	if cfg.PortPath == "" {
		slider := sensor.NewSlider(cfg.MinDistance, cfg.MaxDistance)
		log.Printf("[App] No serial port configured, using simulation slider")
		return &distanceInput{source: slider, slider: slider}
	}

	serial := sensor.NewSerialReader(sensor.SerialOptions{
		Path:             cfg.PortPath,
		BaudRate:         cfg.BaudRate,
		UseMovingAverage: cfg.UseMovingAverage,
		Open:             open,
	})
	if err := serial.Start(); err != nil {
		log.Printf("[App] Warning: Serial port not available yet: %v", err)
	}

	in := &distanceInput{source: serial, serial: serial}

	watcher, err := sensor.WatchPort(cfg.PortPath,
		func() {
			if err := serial.Start(); err != nil {
				log.Printf("[App] Warning: Failed to reopen serial port: %v", err)
			}
		},
		serial.Removed,
	)
	if err != nil {
		log.Printf("[App] Warning: Serial hot-plug disabled: %v", err)
	} else {
		in.watcher = watcher
	}
	return in
}

// status 返回串口状态；使用滑块时返回 nil
func (in *distanceInput) status() scenes.SensorStatus {
	if in.serial == nil {
		return nil
	}
	return in.serial
}

// Close 停止监视并关闭串口
func (in *distanceInput) Close() error {
	var errs []error
	if in.watcher != nil {
		if err := in.watcher.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if in.serial != nil {
		if err := in.serial.Stop(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
