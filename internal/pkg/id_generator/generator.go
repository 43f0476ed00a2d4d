package id

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/sony/sonyflake"
)

// 基准时间 2024-01-01 00:00:00 UTC
var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

var errInvalidSettings = errors.New("sonyflake 配置不正确")

// Generator 告警、批次、升级事件都用它生成ID
type Generator interface {
	NextID() (uint64, error)
}

// NewSonyflake machineID 需要在集群内唯一
func NewSonyflake(machineID uint16) (*sonyflake.Sonyflake, error) {
	sf := sonyflake.NewSonyflake(sonyflake.Settings{
		StartTime: epoch,
		MachineID: func() (uint16, error) {
			return machineID, nil
		},
	})
	if sf == nil {
		return nil, errInvalidSettings
	}
	return sf, nil
}

// Sequence 单机递增的ID，测试里用
type Sequence struct {
	cur atomic.Uint64
}

func NewSequence(start uint64) *Sequence {
	s := &Sequence{}
	s.cur.Store(start)
	return s
}

func (s *Sequence) NextID() (uint64, error) {
	return s.cur.Add(1), nil
}
