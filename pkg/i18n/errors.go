package i18n

import "errors"

// ErrInvalidSource is returned when a translation source cannot be decoded.
var ErrInvalidSource = errors.New("i18n: invalid translation source")
