package recording

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/foxseedlab/voicecap/internal/recording"
)

// SignalCancel maps SIGINT to the Escape trigger and SIGTERM/SIGHUP to the
// hidden trigger, mirroring a user abandoning the capture.
type SignalCancel struct{}

func (SignalCancel) Listen(f func(recording.StopTrigger)) func() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case sig := <-ch:
				f(triggerFor(sig))
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			signal.Stop(ch)
			close(done)
		})
	}
}

func triggerFor(sig os.Signal) recording.StopTrigger {
	if sig == os.Interrupt {
		return recording.TriggerEscape
	}
	return recording.TriggerHidden
}
