package worker

import (
	"context"
	"testing"
	"time"
)

type slowDrainer struct{ delay time.Duration }

func (d slowDrainer) Wait(ctx context.Context) error {
	select {
	case <-time.After(d.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestStopRespectsTimeout(t *testing.T) {
	w := StartNotificationWorker(nil, slowDrainer{delay: time.Minute}, nil)
	start := time.Now()
	w.Stop(20 * time.Millisecond)
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("Stop() took %v", elapsed)
	}
}

func TestStopWithoutDrainer(t *testing.T) {
	var w *NotificationWorker
	w.Stop(time.Millisecond)
	StartNotificationWorker(nil, nil, nil).Stop(time.Millisecond)
}
