package transport

import (
	"errors"
	"sync"
	"time"
)

// errReadTimeout signals that no data arrived within the requested window,
// distinct from a real I/O error (session/transport loss).
var errReadTimeout = errors.New("transport: read timeout")

// pump continuously reads from stdout in the background since ssh.Session's
// pipes don't support read deadlines the way a net.Conn does. readWithTimeout
// pulls from the pumped channel with a select/timer instead.
type pump struct {
	once sync.Once
	ch   chan []byte
	errc chan error
}

func (t *Transport) ensurePump() *pump {
	if t.pumpState != nil {
		return t.pumpState
	}
	p := &pump{ch: make(chan []byte, 64), errc: make(chan error, 1)}
	go func() {
		buf := make([]byte, 4096)
		for {
			n, err := t.stdout.Read(buf)
			if n > 0 {
				cp := make([]byte, n)
				copy(cp, buf[:n])
				p.ch <- cp
			}
			if err != nil {
				p.errc <- err
				return
			}
		}
	}()
	t.pumpState = p
	return p
}

// readWithTimeout returns data pulled from the background pump, or
// (0, errReadTimeout) if nothing arrived within timeout, or (0, err) if the
// underlying read failed (session/transport loss).
func (t *Transport) readWithTimeout(dst []byte, timeout time.Duration) (int, error) {
	p := t.ensurePump()
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case chunk := <-p.ch:
		n := copy(dst, chunk)
		return n, nil
	case err := <-p.errc:
		return 0, err
	case <-timer.C:
		return 0, errReadTimeout
	}
}
