package config

import (
	"errors"
	"fmt"
	"log"
	"os"
)

// UserStore 用户可覆盖配置的存储接口
// *gdata.Manager 直接满足该接口；测试中使用内存实现
type UserStore interface {
	ObjectPropExists(objectKey, propKey string) bool
	LoadObjectProp(objectKey, propKey string) ([]byte, error)
	SaveObjectProp(objectKey, propKey string, data []byte) error
}

// 用户配置在 gdata 中的存储位置
const (
	userConfigObject   = "config"
	userConfigProperty = "configuration.json"
)

// Source 配置来源
type Source int

const (
	// SourceFile 命令行 -config 指定的文件
	SourceFile Source = iota
	// SourceUser 用户数据目录中的覆盖配置
	SourceUser
	// SourceBundled 程序内嵌的默认配置
	SourceBundled
)

// String 返回来源名称（用于日志）
func (s Source) String() string {
	switch s {
	case SourceFile:
		return "file"
	case SourceUser:
		return "user"
	case SourceBundled:
		return "bundled"
	default:
		return "unknown"
	}
}

// ErrNoConfiguration 所有来源都无法解析出有效配置（配置故障，不可恢复）
var ErrNoConfiguration = errors.New("failed to load configuration from both user and bundled sources")

// LoadOptions 配置加载选项
type LoadOptions struct {
	Path    string    // 显式指定的配置文件（可为空）
	Store   UserStore // 用户覆盖配置存储（可为 nil，降级为只用内嵌配置）
	Bundled []byte    // 内嵌默认配置
}

// Load 按优先级加载配置
//
// 顺序：显式文件 → 用户覆盖配置 → 内嵌默认配置。
// 某个来源存在但解析或校验失败时记录日志并尝试下一个来源。
//
// 参数：
//   - opts: 加载选项
//
// 返回：
//   - *Configuration: 第一个有效的配置
//   - Source: 配置来源
//   - error: 所有来源都失败时返回 ErrNoConfiguration
func Load(opts LoadOptions) (*Configuration, Source, error) {
	if opts.Path != "" {
		data, err := os.ReadFile(opts.Path)
		if err != nil {
			log.Printf("[Config] Warning: Failed to read %s: %v", opts.Path, err)
		} else if cfg, err := Parse(data); err != nil {
			log.Printf("[Config] Warning: Ignoring %s: %v", opts.Path, err)
		} else {
			return cfg, SourceFile, nil
		}
	}

	if opts.Store != nil && opts.Store.ObjectPropExists(userConfigObject, userConfigProperty) {
		data, err := opts.Store.LoadObjectProp(userConfigObject, userConfigProperty)
		if err != nil {
			log.Printf("[Config] Warning: Failed to load user configuration: %v", err)
		} else if cfg, err := Parse(data); err != nil {
			log.Printf("[Config] Warning: Ignoring user configuration: %v", err)
		} else {
			return cfg, SourceUser, nil
		}
	}

	if len(opts.Bundled) > 0 {
		cfg, err := Parse(opts.Bundled)
		if err == nil {
			return cfg, SourceBundled, nil
		}
		log.Printf("[Config] Error: Bundled configuration is invalid: %v", err)
	}

	return nil, SourceBundled, ErrNoConfiguration
}

// Install 把一份配置写入用户覆盖位置
// 写入前先完整校验，避免装入一份下次启动时会被跳过的配置
//
// 参数：
//   - store: 用户配置存储
//   - data: 配置文件内容
//
// 返回：
//   - error: 校验失败或写入失败
func Install(store UserStore, data []byte) error {
	if store == nil {
		return errors.New("user configuration store is unavailable")
	}
	if _, err := Parse(data); err != nil {
		return err
	}
	if err := store.SaveObjectProp(userConfigObject, userConfigProperty, data); err != nil {
		return fmt.Errorf("failed to save user configuration: %w", err)
	}
	log.Printf("[Config] User configuration installed")
	return nil
}
