package decoder

import "errors"

var errInvalidVersion = errors.New("qrcode/decoder: invalid version")
