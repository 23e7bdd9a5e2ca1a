package pipes

import "errors"

var (
	ErrClosed         = errors.New("pipes: signal closed")
	ErrNilSignal      = errors.New("pipes: nil signal")
	ErrNoSignals      = errors.New("pipes: no signals provided")
	ErrNoInitialValue = errors.New("pipes: no active signals provided")
	ErrWorkerFailed   = errors.New("pipes: worker failed")
)
