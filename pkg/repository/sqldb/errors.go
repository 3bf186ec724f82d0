package sqldb

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vitalmap/pkg/domain/interfaces"
)

var (
	ErrNotFound           = interfaces.ErrNotFound
	ErrUnsupportedDialect = goerr.New("unsupported SQL dialect")
)
