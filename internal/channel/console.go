package channel

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// ConsoleChannel reads from stdin and writes to stdout. Because log data
// spans multiple lines, input is buffered: lines accumulate until an
// empty line submits them as one message. Slash commands fire
// immediately without buffering.
type ConsoleChannel struct {
	mu      sync.Mutex
	handler func(InboundMessage)
	running bool
	cancel  context.CancelFunc
}

func NewConsoleChannel() *ConsoleChannel {
	return &ConsoleChannel{}
}

func (c *ConsoleChannel) Name() string { return "console" }

func (c *ConsoleChannel) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.running = true

	go c.readLoop(ctx)
	return nil
}

func (c *ConsoleChannel) Stop(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}
	c.running = false
	return nil
}

func (c *ConsoleChannel) Send(_ context.Context, msg OutboundMessage) error {
	fmt.Printf("\n[LogLens]: %s\n\n> ", msg.Text)
	return nil
}

func (c *ConsoleChannel) OnMessage(handler func(InboundMessage)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handler = handler
}

func (c *ConsoleChannel) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *ConsoleChannel) readLoop(ctx context.Context) {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	fmt.Println("Paste log data and finish with an empty line, or type /help.")
	fmt.Print("> ")

	var buffered []string
	for {
		select {
		case <-ctx.Done():
			return
		default:
			if !scanner.Scan() {
				return
			}
			line := scanner.Text()

			switch {
			case strings.HasPrefix(line, "/"):
				c.deliver(line)
			case line == "" && len(buffered) > 0:
				c.deliver(strings.Join(buffered, "\n"))
				buffered = buffered[:0]
			case line == "":
				fmt.Print("> ")
			default:
				buffered = append(buffered, line)
			}
		}
	}
}

func (c *ConsoleChannel) deliver(text string) {
	c.mu.Lock()
	handler := c.handler
	c.mu.Unlock()

	if handler == nil {
		return
	}
	handler(InboundMessage{
		ChannelName: "console",
		SenderID:    "local",
		SenderName:  "User",
		ChatID:      "console",
		Text:        text,
		Timestamp:   time.Now(),
	})
}
