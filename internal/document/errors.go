package document

import "errors"

var ErrRender = errors.New("document render failed")
