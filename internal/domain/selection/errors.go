package selection

import "errors"

// ErrUnknownAction is returned for interactions the widget does not define.
var ErrUnknownAction = errors.New("unknown action")
