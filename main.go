package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/ftag"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"midi2struct/config"
	"midi2struct/encode"
	"midi2struct/midi"
	"midi2struct/pipeline"
	"midi2struct/structure"
	"midi2struct/tui"
)

var (
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("211")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fail(err)
	}

	var (
		output     = flag.String("o", cfg.Output, "output path (\"-\" for stdout)")
		minPitch   = flag.Uint("min-pitch", uint(cfg.MinPitch), "minimal note pitch")
		maxPitch   = flag.Uint("max-pitch", uint(cfg.MaxPitch), "maximal note pitch")
		minVel     = flag.Uint("min-velocity", uint(cfg.MinVelocity), "minimal velocity for a note to sound")
		maxEvents  = flag.Int("max-events-per-func", cfg.MaxEventsPerFunc, "maximal amount of values per function")
		notesPer   = flag.Int("notes-per-value", cfg.NotesPerValue, "pitch slots packed into one value")
		version    = flag.Int("structure-version", cfg.StructureVersion, "structure format version")
		baseAddr   = flag.Uint("base-address", uint(cfg.BaseAddress), "first block address")
		repeat     = flag.Bool("repeat", cfg.Repeat, "loop the music")
		inspect    = flag.Bool("inspect", false, "browse the encoded result interactively")
		preview    = flag.String("preview", "", "play the filtered timeline out a MIDI port matching this name")
		listPorts  = flag.Bool("list-ports", false, "list MIDI output ports and exit")
		saveConfig = flag.Bool("save-config", false, "persist the current settings as defaults")
		verbose    = flag.Bool("v", false, "verbose logging")
	)
	flag.Usage = usage
	flag.Parse()

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}
	// Keep log lines off stdout, which may carry the structure itself.
	log.SetOutput(os.Stderr)

	if *listPorts {
		ports, err := midi.OutPorts()
		if err != nil {
			fail(err)
		}
		for _, p := range ports {
			fmt.Println(p)
		}
		return
	}

	// Range-check raw flag values before narrowing; uint8(300) would
	// otherwise wrap to 44 and sail past Validate.
	var ferr error
	if cfg.MinPitch, ferr = narrowMIDI("min-pitch", *minPitch); ferr != nil {
		fail(ferr)
	}
	if cfg.MaxPitch, ferr = narrowMIDI("max-pitch", *maxPitch); ferr != nil {
		fail(ferr)
	}
	if cfg.MinVelocity, ferr = narrowMIDI("min-velocity", *minVel); ferr != nil {
		fail(ferr)
	}
	if cfg.BaseAddress, ferr = narrowAddr("base-address", *baseAddr); ferr != nil {
		fail(ferr)
	}
	cfg.Output = *output
	cfg.MaxEventsPerFunc = *maxEvents
	cfg.NotesPerValue = *notesPer
	cfg.StructureVersion = *version
	cfg.Repeat = *repeat

	if *saveConfig {
		if err := cfg.Validate(); err != nil {
			fail(err)
		}
		if err := cfg.Save(); err != nil {
			fail(err)
		}
		if path, err := config.ConfigPath(); err == nil {
			log.Info("saved defaults", "path", path)
		}
		if flag.NArg() == 0 {
			return
		}
	}

	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}
	input := flag.Arg(0)

	if *inspect {
		res, err := pipeline.Convert(cfg, input)
		if err != nil {
			fail(err)
		}
		p := tea.NewProgram(tui.NewModel(cfg, res), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			fail(err)
		}
		return
	}

	if *preview != "" {
		res, err := pipeline.Convert(cfg, input)
		if err != nil {
			fail(err)
		}
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()
		log.Info("previewing", "events", len(res.Timeline), "port", *preview)
		if err := midi.Preview(ctx, res.Timeline, res.TicksPerQuarter, *preview); err != nil {
			fail(err)
		}
		return
	}

	res, err := pipeline.Run(cfg, input)
	if err != nil {
		fail(err)
	}

	if cfg.Output != "-" {
		printSummary(cfg, res)
	}
}

func printSummary(cfg *config.Config, res *pipeline.Result) {
	loop := "terminal"
	if cfg.Repeat {
		loop = "loops to first block"
	}
	fmt.Println(accentStyle.Render("midi2struct"))
	fmt.Printf("  tracks     %d\n", res.TrackCount)
	fmt.Printf("  events     %d merged, %d kept\n", res.EventsMerged, res.EventsKept)
	fmt.Printf("  values     %d\n", len(res.Values))
	fmt.Printf("  functions  %d (max %d values each)\n", len(res.Functions), cfg.MaxEventsPerFunc)
	fmt.Printf("  blocks     %d starting at %d, %s\n", len(res.Layout.Blocks), cfg.BaseAddress, loop)
	fmt.Println(dimStyle.Render("  wrote " + cfg.Output))
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: midi2struct [flags] <input.mid>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Converts a MIDI file to a block VM structure file with a music player.")
	fmt.Fprintln(os.Stderr, "")
	flag.PrintDefaults()
}

// narrowMIDI narrows a raw flag value to the 0-127 MIDI range.
func narrowMIDI(name string, v uint) (uint8, error) {
	if v > 127 {
		return 0, fault.New(fmt.Sprintf("%s %d exceeds 127", name, v), ftag.With(config.ErrTag))
	}
	return uint8(v), nil
}

// narrowAddr narrows a raw flag value to the 32-bit address space.
func narrowAddr(name string, v uint) (uint32, error) {
	if v > math.MaxUint32 {
		return 0, fault.New(fmt.Sprintf("%s %d exceeds the 32-bit address space", name, v), ftag.With(config.ErrTag))
	}
	return uint32(v), nil
}

// fail reports one descriptive error naming the failing stage.
func fail(err error) {
	fmt.Fprintln(os.Stderr, errStyle.Render(fmt.Sprintf("%s error: %v", stage(err), err)))
	os.Exit(1)
}

func stage(err error) string {
	switch ftag.Get(err) {
	case config.ErrTag:
		return "config"
	case midi.ErrTag:
		return "input"
	case encode.ErrTagCapacity:
		return "capacity"
	case structure.ErrTag:
		return "output"
	default:
		return "internal"
	}
}
