package firestore

import "github.com/secmon-lab/vitalmap/pkg/domain/interfaces"

var ErrNotFound = interfaces.ErrNotFound
