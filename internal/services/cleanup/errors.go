package cleanup

import "errors"

// ErrAlreadyRunning is returned when a sweep is requested while another one
// is still in progress.
var ErrAlreadyRunning = errors.New("cleanup already running")
