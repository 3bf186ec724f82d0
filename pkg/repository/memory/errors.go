package memory

import "github.com/secmon-lab/vitalmap/pkg/domain/interfaces"

var ErrNotFound = interfaces.ErrNotFound
