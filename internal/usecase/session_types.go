package usecase

import (
	"context"

	"kissbooth/internal/domain"
	"kissbooth/internal/ports"
)

// boothSession is the single live capture-and-send workflow instance. All
// mutable fields are guarded by the controller mutex; async flows re-check
// session identity before applying their results so late outcomes of a
// closed or replaced session are discarded.
type boothSession struct {
	id     string
	label  string
	ctx    context.Context
	cancel context.CancelFunc

	phase     domain.Phase
	stream    ports.DeviceStream
	feed      *liveFeed
	countdown *int
	captured  []byte
	errDetail string
}
