package services

import (
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/repotree/internal/core/domain"
	"github.com/custodia-labs/repotree/internal/core/ports/driven"
	"github.com/custodia-labs/repotree/internal/logger"
)

const progressBuffer = 256

// progressDispatcher forwards events to a sink from a single goroutine so
// workers never wait on a slow sink. Any event that finds the buffer full
// is dropped and counted; the run report does not depend on the sink.
type progressDispatcher struct {
	sink    driven.ProgressSink
	events  chan func()
	done    chan struct{}
	once    sync.Once
	dropped atomic.Int64
}

func newProgressDispatcher(sink driven.ProgressSink) *progressDispatcher {
	if sink == nil {
		sink = driven.NopProgress{}
	}
	d := &progressDispatcher{
		sink:   sink,
		events: make(chan func(), progressBuffer),
		done:   make(chan struct{}),
	}
	go d.loop()
	return d
}

func (d *progressDispatcher) loop() {
	defer close(d.done)
	for ev := range d.events {
		ev()
	}
}

func (d *progressDispatcher) send(ev func()) {
	select {
	case d.events <- ev:
	default:
		d.dropped.Add(1)
	}
}

func (d *progressDispatcher) OnDiscoveryProgress(completed, totalEstimate int) {
	d.send(func() { d.sink.OnDiscoveryProgress(completed, totalEstimate) })
}

func (d *progressDispatcher) OnSyncStart(action domain.SyncAction) {
	d.send(func() { d.sink.OnSyncStart(action) })
}

func (d *progressDispatcher) OnSyncEnd(result domain.SyncResult) {
	d.send(func() { d.sink.OnSyncEnd(result) })
}

// Dropped returns how many events never reached the sink.
func (d *progressDispatcher) Dropped() int64 {
	return d.dropped.Load()
}

// close flushes queued events and stops the dispatcher.
func (d *progressDispatcher) close() {
	d.once.Do(func() {
		close(d.events)
	})
	<-d.done
	if n := d.dropped.Load(); n > 0 {
		logger.Debug("progress sink fell behind, %d events dropped", n)
	}
}
