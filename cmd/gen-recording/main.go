// gen-recording writes a synthetic accelerometer recording to a CSV
// file. Handy for exercising the calibrator without device data: the
// generated file carries a known scale/offset distortion that a run
// should recover.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/okian/autocal/internal/adapters/csvfile"
	"github.com/okian/autocal/internal/synth"
)

func main() {
	cfg := synth.DefaultConfig()

	out := flag.String("out", "recording.csv", "output CSV path")
	flag.Float64Var(&cfg.SamplingRate, "rate", cfg.SamplingRate, "sampling rate in Hz")
	flag.Float64Var(&cfg.Hours, "hours", cfg.Hours, "recording length in hours")
	flag.IntVar(&cfg.StillSeconds, "still", cfg.StillSeconds, "still segment length in seconds")
	flag.IntVar(&cfg.MoveSeconds, "move", cfg.MoveSeconds, "movement segment length in seconds")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed")
	moveOnly := flag.Bool("movement-only", false, "generate movement with no still segments")

	flag.Float64Var(&cfg.Scale[0], "scale-x", 1, "injected x-axis scale distortion")
	flag.Float64Var(&cfg.Scale[1], "scale-y", 1, "injected y-axis scale distortion")
	flag.Float64Var(&cfg.Scale[2], "scale-z", 1, "injected z-axis scale distortion")
	flag.Float64Var(&cfg.Offset[0], "offset-x", 0, "injected x-axis offset distortion")
	flag.Float64Var(&cfg.Offset[1], "offset-y", 0, "injected y-axis offset distortion")
	flag.Float64Var(&cfg.Offset[2], "offset-z", 0, "injected z-axis offset distortion")
	flag.Parse()

	rec := synth.Generate(cfg)
	if *moveOnly {
		rec = synth.GenerateMovementOnly(cfg)
	}

	if err := csvfile.WriteRecording(*out, rec); err != nil {
		os.Stderr.WriteString("write recording: " + err.Error() + "\n")
		os.Exit(1)
	}
	fmt.Printf("wrote %d samples (%.1f h at %.1f Hz) to %s\n",
		rec.Acceleration.Len(), cfg.Hours, cfg.SamplingRate, *out)
}
