package httpserver

import "errors"

var (
	ErrStart    = errors.New("httpserver: cannot start listener")
	ErrShutdown = errors.New("httpserver: graceful shutdown incomplete")
)
