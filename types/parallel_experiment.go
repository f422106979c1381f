package types

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gosuri/uilive"
	channerics "github.com/niceyeti/channerics/channels"
)

// Progress is emitted by a stat run after every epoch
type Progress struct {
	Experiment string
	// Padding is the width of the experiment column
	Padding int
	Run     int
	Epoch   int
	Epochs  int
	Reward  float64
	Done    bool
}

func (p Progress) String() string {
	status := "running"
	if p.Done {
		status = "done"
	}
	return fmt.Sprintf("Exp:%*s, Run:%d, Epoch:%d/%d, Reward:%8.2f [%s]",
		p.Padding, p.Experiment, p.Run+1, p.Epoch, p.Epochs, p.Reward, status)
}

// TERMINAL PRINTER

// TerminalPrinter keeps one live line per parallel slot
type TerminalPrinter struct {
	parallelOutputs []*ParallelOutput
	frequency       time.Duration
	enabled         bool

	writer  *uilive.Writer
	writers []io.Writer
}

func NewTerminalPrinter(slots int, frequency time.Duration, enabled bool) *TerminalPrinter {
	if slots < 1 {
		slots = 1
	}
	if frequency <= 0 {
		frequency = time.Second
	}
	outputs := make([]*ParallelOutput, slots)
	for i := range outputs {
		outputs[i] = NewParallelOutput()
	}
	writer := uilive.New()
	writers := make([]io.Writer, slots-1)
	for i := range writers {
		writers[i] = writer.Newline()
	}
	return &TerminalPrinter{
		parallelOutputs: outputs,
		frequency:       frequency,
		enabled:         enabled,
		writer:          writer,
		writers:         writers,
	}
}

// Consume fans in the progress channels and keeps the terminal up to date
// until all of them are closed or ctx is done. The returned channel is closed
// once the printer has stopped.
func (p *TerminalPrinter) Consume(ctx context.Context, sources ...<-chan Progress) <-chan struct{} {
	stopped := make(chan struct{})
	events := channerics.OrDone(ctx.Done(), channerics.Merge(ctx.Done(), sources...))
	go func() {
		defer close(stopped)
		ticker := time.NewTicker(p.frequency)
		defer ticker.Stop()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					p.print()
					return
				}
				output := p.parallelOutputs[event.Run%len(p.parallelOutputs)]
				output.Set(event.String())
				output.Running = true
			case <-ticker.C:
				p.print()
			}
		}
	}()
	return stopped
}

func (p *TerminalPrinter) print() {
	if !p.enabled {
		return
	}
	for i, output := range p.parallelOutputs {
		if !output.Running {
			continue
		}
		s := output.Get()
		if i == 0 {
			fmt.Fprint(p.writer, s+"\n")
		} else {
			fmt.Fprint(p.writers[i-1], s+"\n")
		}
	}
	p.writer.Flush()
}

// PARALLEL OUTPUT

// ParallelOutput is the latest status line of one slot
type ParallelOutput struct {
	mu        sync.Mutex
	printable string

	Running bool
}

func NewParallelOutput() *ParallelOutput {
	return &ParallelOutput{}
}

func (p *ParallelOutput) Set(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.printable = s
}

func (p *ParallelOutput) Get() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.printable
}
