package interfaces

import "github.com/m-mizutani/goerr/v2"

// ErrNotFound is returned by every repository backend for a missing record
var ErrNotFound = goerr.New("not found")
