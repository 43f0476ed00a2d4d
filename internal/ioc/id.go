package ioc

import (
	id "gitee.com/flycash/care-notification/internal/pkg/id_generator"
	"github.com/gotomicro/ego/core/econf"
)

func InitIDGenerator() id.Generator {
	type Config struct {
		MachineID uint16 `yaml:"machineID"`
	}
	var cfg Config
	if err := econf.UnmarshalKey("idGenerator", &cfg); err != nil {
		panic(err)
	}
	sf, err := id.NewSonyflake(cfg.MachineID)
	if err != nil {
		panic(err)
	}
	return sf
}
