// Package pipeline runs one host-accelerator round trip: load the image,
// frame it, exchange it over the serial channel, validate and reshape the
// reply, and write the result. Stages run strictly in sequence.
package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/pixelstream/internal/config"
	"github.com/banshee-data/pixelstream/internal/fault"
	"github.com/banshee-data/pixelstream/internal/imageio"
	"github.com/banshee-data/pixelstream/internal/journal"
	"github.com/banshee-data/pixelstream/internal/monitoring"
	"github.com/banshee-data/pixelstream/internal/pixels"
	"github.com/banshee-data/pixelstream/internal/report"
	"github.com/banshee-data/pixelstream/internal/serialport"
	"github.com/banshee-data/pixelstream/internal/timeutil"
	"github.com/banshee-data/pixelstream/internal/transport"
)

// Recorder receives one entry per run. *journal.DB implements it.
type Recorder interface {
	Record(*journal.Run) error
}

// Pipeline holds the collaborators of a run. Factory is required; Journal and
// Clock are optional.
type Pipeline struct {
	Factory serialport.Factory
	Journal Recorder
	Clock   timeutil.Clock
}

// Result describes a successful run.
type Result struct {
	RunID            string
	BytesSent        int
	BytesReceived    int
	OutputPath       string
	ExchangeDuration time.Duration
	Summary          report.Summary
}

// Run executes the pipeline for cfg. On any failure no output file is
// written and the returned error carries a fault.Kind.
func (p *Pipeline) Run(cfg config.Config) (*Result, error) {
	if p.Factory == nil {
		return nil, fault.New(fault.Unexpected, "run", errors.New("no serial port factory configured"))
	}

	clock := timeutil.Or(p.Clock)
	res := &Result{RunID: uuid.NewString()}
	started := clock.Now()
	monitoring.Logf("run %s: %s -> %s via %s", res.RunID, cfg.InputPath, cfg.OutputPath, cfg.Channel.Port)

	err := fault.Classify("run", p.run(cfg, res, clock))
	p.record(cfg, res, started, clock.Since(started), err)

	if err != nil {
		monitoring.Logf("run %s failed (%s): %v", res.RunID, fault.KindOf(err), err)
		return nil, err
	}
	monitoring.Logf("run %s complete. image saved to %s", res.RunID, res.OutputPath)
	return res, nil
}

func (p *Pipeline) run(cfg config.Config, res *Result, clock timeutil.Clock) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	done := monitoring.Timed(clock, "load")
	src, err := imageio.Load(cfg.InputPath, cfg.Width, cfg.Height)
	done()
	if err != nil {
		return err
	}

	stream := pixels.Encode(src)
	res.BytesSent = len(stream)
	expected := cfg.FrameSize()

	exchangeStart := clock.Now()
	received, err := transport.Exchange(p.Factory, cfg.Channel, stream, expected)
	res.ExchangeDuration = clock.Since(exchangeStart)
	if err != nil {
		return err
	}
	res.BytesReceived = len(received)

	// A short read is a completed exchange; only the length check catches it.
	out, err := pixels.Decode(received, cfg.Width, cfg.Height)
	if err != nil {
		return err
	}
	monitoring.Logf("received %d bytes in %v. rebuilding image", len(received), res.ExchangeDuration.Round(time.Millisecond))

	res.Summary = report.Summarize(stream, received)
	monitoring.Logf("summary: %s", res.Summary)

	done = monitoring.Timed(clock, "save")
	err = imageio.Save(cfg.OutputPath, out)
	done()
	if err != nil {
		return err
	}
	res.OutputPath = cfg.OutputPath

	if cfg.HistogramPath != "" {
		if err := report.SaveHistogram(cfg.HistogramPath, stream, received, report.DefaultBins); err != nil {
			monitoring.Logf("histogram not written: %v", err)
		}
	}
	return nil
}

func (p *Pipeline) record(cfg config.Config, res *Result, started time.Time, elapsed time.Duration, runErr error) {
	if p.Journal == nil {
		return
	}

	entry := &journal.Run{
		RunID:         res.RunID,
		StartedAt:     started,
		Duration:      elapsed,
		Port:          cfg.Channel.Port,
		BaudRate:      cfg.Channel.BaudRate,
		Width:         cfg.Width,
		Height:        cfg.Height,
		InputPath:     cfg.InputPath,
		OutputPath:    res.OutputPath,
		ExpectedBytes: cfg.FrameSize(),
		ReceivedBytes: res.BytesReceived,
		Outcome:       journal.OutcomeOK,
	}
	if runErr != nil {
		entry.Outcome = fault.KindOf(runErr).String()
		entry.ErrorMessage = runErr.Error()
	}
	if err := p.Journal.Record(entry); err != nil {
		monitoring.Logf("run %s: journal entry not written: %v", res.RunID, err)
	}
}
