package logger

import (
	"io"
	"os"
	"sync"

	"github.com/apex/log"
	"github.com/apex/log/handlers/text"
)

// Broadcaster is an io.Writer that mirrors output to a sink and to every subscriber channel.
type Broadcaster struct {
	mu          sync.Mutex
	out         io.Writer
	subscribers map[chan string]bool
}

var Instance = NewBroadcaster(os.Stdout)

func NewBroadcaster(out io.Writer) *Broadcaster {
	return &Broadcaster{
		out:         out,
		subscribers: make(map[chan string]bool),
	}
}

func (b *Broadcaster) Write(p []byte) (n int, err error) {
	msg := string(p)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.out != nil {
		b.out.Write(p)
	}

	// slow readers drop lines rather than block logging
	for ch := range b.subscribers {
		select {
		case ch <- msg:
		default:
		}
	}

	return len(p), nil
}

// SetOutput replaces the mirror sink. A nil writer only feeds subscribers.
func (b *Broadcaster) SetOutput(out io.Writer) {
	b.mu.Lock()
	b.out = out
	b.mu.Unlock()
}

func (b *Broadcaster) Subscribe() chan string {
	ch := make(chan string, 100)
	b.mu.Lock()
	b.subscribers[ch] = true
	b.mu.Unlock()
	return ch
}

func (b *Broadcaster) Unsubscribe(ch chan string) {
	b.mu.Lock()
	if b.subscribers[ch] {
		delete(b.subscribers, ch)
		close(ch)
	}
	b.mu.Unlock()
}

func GetWriter() io.Writer {
	return Instance
}

// Setup routes apex/log through the broadcaster at the given level.
// Unknown levels fall back to info.
func Setup(level string) {
	log.SetHandler(text.New(GetWriter()))
	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.SetLevel(log.InfoLevel)
		log.WithField("level", level).Warn("unknown log level, using info")
		return
	}
	log.SetLevel(lvl)
}
