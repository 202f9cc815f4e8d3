package session

import "time"

// Observer records session operation metrics. Implementations are provided
// by the metrics package to keep this package free of instrumentation imports.
type Observer interface {
	// ObserveOperation records the duration and outcome of an operation.
	// op is one of OpOpen, OpCompress, OpCrop or OpRelease.
	ObserveOperation(op string, duration time.Duration, err error)

	// ObserveState records the state the session is in after an operation.
	ObserveState(state State)
}
