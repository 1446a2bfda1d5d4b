// Command pixelstream sends a grayscale image to an FPGA accelerator over a
// serial link and saves the processed frame it returns.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/banshee-data/pixelstream/internal/config"
	"github.com/banshee-data/pixelstream/internal/fault"
	"github.com/banshee-data/pixelstream/internal/imageio"
	"github.com/banshee-data/pixelstream/internal/journal"
	"github.com/banshee-data/pixelstream/internal/pipeline"
	"github.com/banshee-data/pixelstream/internal/serialport"
	"github.com/banshee-data/pixelstream/internal/version"
)

// Exit statuses.
const (
	exitOK          = 0
	exitFailure     = 1
	exitInvalidConf = 2
)

var (
	configPath    = flag.String("config", "", "Optional JSON config file; flags set on the command line take precedence")
	port          = flag.String("port", config.DefaultPort, "Serial port connected to the accelerator")
	baud          = flag.Int("baud", config.DefaultBaudRate, "Baud rate (must match the FPGA UART)")
	readTimeout   = flag.Duration("timeout", config.DefaultReadTimeout, "Timeout applied to each serial read")
	inputPath     = flag.String("input", config.DefaultInputPath, "Image to send")
	outputPath    = flag.String("output", config.DefaultOutputPath, "Where to write the processed image (format from extension)")
	width         = flag.Int("width", config.DefaultWidth, "Frame width in pixels")
	height        = flag.Int("height", config.DefaultHeight, "Frame height in pixels")
	histogramPath = flag.String("histogram", "", "Optional PNG path for a sent/received intensity histogram")
	journalPath   = flag.String("journal", "", "Optional SQLite database recording each run")
	history       = flag.Int("history", 0, "Print the last N runs from -journal and exit")
	devMode       = flag.Bool("dev", false, "Use an in-memory loopback port instead of hardware")
	devTruncate   = flag.Int("dev-truncate", 0, "In -dev mode, echo at most this many bytes")
	devInvert     = flag.Bool("dev-invert", false, "In -dev mode, echo inverted samples")
	devSilent     = flag.Bool("dev-silent", false, "In -dev mode, never reply (zero-byte read)")
	listPorts     = flag.Bool("list-ports", false, "List serial ports and exit")
	showVersion   = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	if *showVersion {
		fmt.Println(version.String())
		return exitOK
	}
	if *listPorts {
		return printPorts()
	}

	cfg, err := buildConfig(setFlags())
	if err != nil {
		log.Printf("invalid configuration: %v", err)
		return exitInvalidConf
	}

	if *history > 0 {
		return printHistory(cfg.JournalPath, *history)
	}

	p := &pipeline.Pipeline{Factory: newFactory()}
	if cfg.JournalPath != "" {
		db, err := journal.Open(cfg.JournalPath)
		if err != nil {
			log.Printf("journal disabled: %v", err)
		} else {
			defer db.Close()
			p.Journal = db
		}
	}

	log.Printf("loading image %s", cfg.InputPath)
	res, err := p.Run(cfg)
	if err != nil {
		log.Printf("error (%s): %v", fault.KindOf(err), err)
		return exitFailure
	}
	log.Printf("processing complete. image saved to %s (%d bytes exchanged in %v)",
		res.OutputPath, res.BytesReceived, res.ExchangeDuration.Round(time.Millisecond))
	return exitOK
}

// setFlags returns the names of flags given explicitly on the command line.
var setFlags = func() map[string]bool {
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// buildConfig layers defaults, the optional config file and explicitly set
// flags, then validates the result.
func buildConfig(set map[string]bool) (config.Config, error) {
	cfg := config.Default()

	if *configPath != "" {
		f, err := config.LoadFile(*configPath)
		if err != nil {
			return cfg, err
		}
		if err := f.Apply(&cfg); err != nil {
			return cfg, err
		}
	}

	if set["port"] {
		cfg.Channel.Port = *port
	}
	if set["baud"] {
		cfg.Channel.BaudRate = *baud
	}
	if set["timeout"] {
		cfg.Channel.ReadTimeout = *readTimeout
	}
	if set["input"] {
		cfg.InputPath = *inputPath
	}
	if set["output"] {
		cfg.OutputPath = *outputPath
	}
	if set["width"] {
		cfg.Width = *width
	}
	if set["height"] {
		cfg.Height = *height
	}
	if set["histogram"] {
		cfg.HistogramPath = *histogramPath
	}
	if set["journal"] {
		cfg.JournalPath = *journalPath
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if !imageio.SupportedOutput(cfg.OutputPath) {
		return cfg, fmt.Errorf("unsupported output format for %q", cfg.OutputPath)
	}
	return cfg, nil
}

func newFactory() serialport.Factory {
	if *devMode {
		log.Printf("dev mode: using loopback port (truncate=%d invert=%v silent=%v)", *devTruncate, *devInvert, *devSilent)
		return &serialport.LoopbackFactory{Truncate: *devTruncate, Invert: *devInvert, Silent: *devSilent}
	}
	return serialport.NewRealFactory()
}

func printPorts() int {
	ports, err := serialport.ListPorts()
	if err != nil {
		log.Printf("failed to list serial ports: %v", err)
		return exitFailure
	}
	if len(ports) == 0 {
		fmt.Println("no serial ports found")
		return exitOK
	}
	fmt.Println(strings.Join(ports, "\n"))
	return exitOK
}

func printHistory(path string, n int) int {
	if path == "" {
		log.Printf("-history requires -journal")
		return exitInvalidConf
	}
	db, err := journal.Open(path)
	if err != nil {
		log.Printf("failed to open journal: %v", err)
		return exitFailure
	}
	defer db.Close()

	runs, err := db.Recent(n)
	if err != nil {
		log.Printf("failed to read journal: %v", err)
		return exitFailure
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tRUN\tPORT\tBYTES\tOUTCOME\tDURATION")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\t%s\t%v\n",
			r.StartedAt.Format(time.RFC3339), r.RunID, r.Port,
			r.ReceivedBytes, r.ExpectedBytes, r.Outcome, r.Duration)
	}
	w.Flush()
	return exitOK
}
