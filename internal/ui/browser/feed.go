package browser

import (
	tea "github.com/charmbracelet/bubbletea"

	"jobboard-listing/internal/listing/engine"
)

// Source is the part of *engine.Engine the browser listens to.
type Source interface {
	Subscribe(fn func(engine.View))
	Done() <-chan struct{}
}

// Feed subscribes to src and returns a channel holding only the latest
// view. A slow reader skips intermediate views instead of stalling the
// engine. The channel is closed once src stops.
func Feed(src Source) <-chan engine.View {
	ch := make(chan engine.View, 1)
	src.Subscribe(func(v engine.View) {
		// the engine publishes from a single goroutine, so after draining
		// there is always room
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- v:
		default:
		}
	})
	go func() {
		<-src.Done()
		close(ch)
	}()
	return ch
}

// viewMsg carries a new engine view into the program.
type viewMsg engine.View

// engineStopped is sent when the feed closes.
type engineStopped struct{}

// noticeExpired asks to dismiss the notice raised at the given time.
type noticeExpired struct{ key int64 }

func waitForView(ch <-chan engine.View) tea.Cmd {
	return func() tea.Msg {
		v, ok := <-ch
		if !ok {
			return engineStopped{}
		}
		return viewMsg(v)
	}
}
