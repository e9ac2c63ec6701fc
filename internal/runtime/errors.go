package runtime

import "errors"

var (
	ErrRuntime     = errors.New("runtime error")
	ErrUnsupported = errors.New("operation not supported by containerd backend")
)
