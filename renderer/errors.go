package renderer

import "errors"

var (
	ErrNoContext            = errors.New("renderer: no graphics context attached")
	ErrInvalidViewport      = errors.New("renderer: invalid viewport dimensions")
	ErrInvalidDetailOptions = errors.New("renderer: invalid detail options")
)
