// Package zone 把距离读数划分为游戏区域，并把距离映射为视频目标位置
//
// 所有函数都是纯函数，只依赖构造时传入的配置。
// 区域采用半开区间：
//   - 安全区：[maxDistance - saveZone, maxDistance)
//   - 死亡区：(-∞, minDistance + deathZone)
//
// 两个区域重叠时由状态机保证死亡区优先。
package zone

import (
	"github.com/decker502/curiosity/pkg/config"
	"github.com/decker502/curiosity/pkg/types"
	"github.com/decker502/curiosity/pkg/utils"
)

// Classifier 区域分类器
type Classifier struct {
	maxDistance float64
	minDistance float64
	saveZone    float64
	deathZone   float64
}

// NewClassifier 根据配置创建区域分类器
//
// 参数：
//   - cfg: 已校验的配置（只读取距离相关字段）
//
// 返回：
//   - Classifier: 区域分类器（值类型，可随意复制）
func NewClassifier(cfg *config.Configuration) Classifier {
	return Classifier{
		maxDistance: cfg.MaxDistance,
		minDistance: cfg.MinDistance,
		saveZone:    cfg.SaveZone,
		deathZone:   cfg.DeathZone,
	}
}

// MaxDistance 返回量程最远端
func (c Classifier) MaxDistance() float64 { return c.maxDistance }

// MinDistance 返回量程最近端
func (c Classifier) MinDistance() float64 { return c.minDistance }

// InSaveZone 距离是否位于安全区
func (c Classifier) InSaveZone(distance float64) bool {
	return distance < c.maxDistance && distance >= c.maxDistance-c.saveZone
}

// InKillZone 距离是否位于死亡区
func (c Classifier) InKillZone(distance float64) bool {
	return distance < c.minDistance+c.deathZone
}

// Overlaps 两个区域是否存在交集
func (c Classifier) Overlaps() bool {
	return c.saveZone > 0 && c.maxDistance-c.saveZone < c.minDistance+c.deathZone
}

// MappingInput 返回某状态下用于映射视频位置的"距离"
//
// 死亡相关状态固定使用最近距离（驱动到视频结尾），
// 拯救相关状态固定使用最远距离（驱动回视频开头），
// 其余状态使用实时距离。
func (c Classifier) MappingInput(state types.GameState, distance float64) float64 {
	switch state {
	case types.StateKilled, types.StateStatsKilled:
		return c.minDistance
	case types.StateSaved, types.StateStatsSaved:
		return c.maxDistance
	default:
		return distance
	}
}

// FrameForDistance 计算视频应驱动到的目标位置（秒）
//
// 把 [maxDistance, minDistance] 线性映射到 [0, totalSeconds]：
// 距离越远越靠近视频开头，距离越近越靠近视频结尾。
// 输入先限制在量程内，保证目标位置不会超出视频范围。
//
// 参数：
//   - state: 当前状态
//   - distance: 实时距离
//   - totalSeconds: 主视频时长
//
// 返回：
//   - float64: 目标位置（秒），范围 [0, totalSeconds]
func (c Classifier) FrameForDistance(state types.GameState, distance, totalSeconds float64) float64 {
	input := utils.Clamp(c.MappingInput(state, distance), c.minDistance, c.maxDistance)
	return utils.MapRange(input, c.maxDistance, c.minDistance, 0, totalSeconds)
}
