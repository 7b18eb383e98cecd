// Command ddsim runs dislocation-dynamics simulations on a single slip
// plane, in the spirit of the teacher's cobra-based entry point:
// subcommands for running, listing prior runs, browsing presets,
// scripted batches, CRSS/Nc calibration and post-run spectral
// analysis, with the interactive prompt-for-a-parameter-file fallback
// the original command-line tool offered when invoked bare.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/san-kum/ddsim/internal/calibrate"
	"github.com/san-kum/ddsim/internal/config"
	"github.com/san-kum/ddsim/internal/coord"
	"github.com/san-kum/ddsim/internal/grain"
	"github.com/san-kum/ddsim/internal/loader"
	"github.com/san-kum/ddsim/internal/output"
	"github.com/san-kum/ddsim/internal/polycrystal"
	"github.com/san-kum/ddsim/internal/preset"
	"github.com/san-kum/ddsim/internal/scenario"
	"github.com/san-kum/ddsim/internal/slipplane"
	"github.com/san-kum/ddsim/internal/slipsystem"
	"github.com/san-kum/ddsim/internal/spectrum"
	"github.com/spf13/cobra"
)

var (
	dataDir  string
	stepMask string
	seed     int64

	calibrateTarget    float64
	calibrateTauCRange []float64
	calibrateNcRange   []int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ddsim",
		Short: "single-slip-plane dislocation dynamics simulator",
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".ddsim", "run output directory")

	runCmd := &cobra.Command{
		Use:   "run [parameter-file]",
		Short: "run a simulation from a parameter file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runCommand,
	}
	runCmd.Flags().StringVar(&stepMask, "mask", "step_", "step output filename prefix")
	runCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "RNG seed (overridden by the parameter file's own seed key if set)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list prior runs",
		RunE:  listCommand,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [category]",
		Short: "list preset categories, or the presets within one",
		Args:  cobra.MaximumNArgs(1),
		RunE:  presetsCommand,
	}

	batchCmd := &cobra.Command{
		Use:   "batch [scenario-file]",
		Short: "run a scripted sequence of parameter sets",
		Args:  cobra.ExactArgs(1),
		RunE:  batchCommand,
	}

	calibrateCmd := &cobra.Command{
		Use:   "calibrate [parameter-file]",
		Short: "grid-search tau_crss and N_c against a target step count",
		Args:  cobra.ExactArgs(1),
		RunE:  calibrateCommand,
	}
	calibrateCmd.Flags().Float64Var(&calibrateTarget, "target-steps", 100, "target number of completed steps")
	calibrateCmd.Flags().Float64SliceVar(&calibrateTauCRange, "tau-crss", []float64{1e6, 5e6, 1e7}, "tau_crss candidates (Pa)")
	calibrateCmd.Flags().IntSliceVar(&calibrateNcRange, "nc", []int{2, 4, 8}, "N_c candidates")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [parameter-file]",
		Short: "run a simulation and report the dominant frequency of its glide velocity",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeCommand,
	}

	rootCmd.AddCommand(runCmd, listCmd, presetsCmd, batchCmd, calibrateCmd, analyzeCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// promptForParamFile mirrors the original tool's behaviour of asking
// for a parameter file path on stdin when none was given on the
// command line.
func promptForParamFile() (string, error) {
	fmt.Print("Parameter file name: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// singlePlaneRun holds everything built from a parameter file needed
// to step a one-grain, one-slip-system, one-slip-plane hierarchy.
type singlePlaneRun struct {
	pc *polycrystal.Polycrystal
	sp *slipplane.SlipPlane
}

// buildSinglePlaneRun loads p's dislocation structure file and wires
// it into a minimal one-grain hierarchy under a fresh polycrystal.
func buildSinglePlaneRun(p *config.Params, seed int64) (*singlePlaneRun, error) {
	if p.DislocationStructureFile == "" {
		return nil, fmt.Errorf("parameter file is missing dislocationStructureFile")
	}

	pc := polycrystal.New(seed)
	pc.DefaultTauC = p.TauCRSS
	pc.AppliedStress = p.AppliedStressTensor()

	nextDefectID := 0
	nextID := func() int { nextDefectID++; return nextDefectID }

	sp, err := loader.LoadSlipPlaneStructure(p.DislocationStructureFile, nextID)
	if err != nil {
		return nil, err
	}

	boundary := []coord.Vector3d{
		coord.NewVector3d(-1, -1, 0), coord.NewVector3d(1, -1, 0),
		coord.NewVector3d(1, 1, 0), coord.NewVector3d(-1, 1, 0),
	}
	g := grain.New(boundary, coord.ZeroVector3d, pc.Frame)
	sys := slipsystem.New(sp.Direction, sp.Normal, g.Frame)
	sys.AddPlane(sp)
	g.AddSlipSystem(sys)
	pc.AddGrain(g)
	pc.SetInitialDefectID(nextDefectID)

	return &singlePlaneRun{pc: pc, sp: sp}, nil
}

// runSteps calls Step until stepCount steps have completed, stopping
// early (with its error) on the first failure. A time-step underflow that Step
// reports as recovered (its local-reaction pass resolved the too-close
// pair) is retried in place rather than treated as fatal, since the
// contact is now gone or pinned and the same step index is expected to
// succeed.
func runSteps(ctx context.Context, r *singlePlaneRun, p *config.Params, onStep func(step int) error) (int, error) {
	step := 0
	for step < p.StepCount {
		err := r.pc.Step(ctx, p.DtMax, p.B, p.MinDistance, p.ReactionRadius, p.Mu, p.Nu)
		if err != nil {
			var stepErr *polycrystal.StepError
			if errors.As(err, &stepErr) && errors.Is(stepErr.Wrapped, polycrystal.ErrTimeStepUnderflow) && stepErr.Recovered {
				continue
			}
			return step, err
		}
		if onStep != nil {
			if err := onStep(step); err != nil {
				return step + 1, err
			}
		}
		step++
	}
	return p.StepCount, nil
}

func runCommand(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 {
		path = args[0]
	} else {
		var err error
		path, err = promptForParamFile()
		if err != nil {
			return err
		}
	}

	p, err := config.Load(path)
	if err != nil {
		return err
	}
	if p.Seed != 0 {
		seed = p.Seed
	}

	r, err := buildSinglePlaneRun(p, seed)
	if err != nil {
		return err
	}

	store := output.New(dataDir)
	if err := store.Init(); err != nil {
		return err
	}
	runID := fmt.Sprintf("run_%d", seed)

	stepsRun, runErr := runSteps(context.Background(), r, p, func(step int) error {
		return store.WriteStep(runID, stepMask, step, []*slipplane.SlipPlane{r.sp})
	})

	meta := output.RunMetadata{
		ID:          runID,
		Timestamp:   time.Now(),
		Seed:        seed,
		Mu:          p.Mu,
		Nu:          p.Nu,
		B:           p.B,
		TauCRSS:     p.TauCRSS,
		StepCount:   p.StepCount,
		StepsRun:    stepsRun,
		TimeElapsed: r.pc.TimeElapsed,
	}
	if runErr != nil {
		meta.Err = runErr.Error()
	}
	if err := store.SaveMetadata(runID, meta); err != nil {
		return err
	}

	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps completed: %d/%d\n", stepsRun, p.StepCount)
	fmt.Printf("time elapsed: %.6e s\n", r.pc.TimeElapsed)
	return runErr
}

func listCommand(cmd *cobra.Command, args []string) error {
	store := output.New(dataDir)
	runs, err := store.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIMESTAMP\tSTEPS\tTIME_ELAPSED\tERROR")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d/%d\t%.4e\t%s\n",
			run.ID, run.Timestamp.Format("2006-01-02 15:04:05"),
			run.StepsRun, run.StepCount, run.TimeElapsed, run.Err)
	}
	return w.Flush()
}

func presetsCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		for _, cat := range preset.Categories() {
			fmt.Println(cat)
		}
		return nil
	}
	names := preset.ListPresets(args[0])
	if len(names) == 0 {
		return fmt.Errorf("no presets for category %q", args[0])
	}
	for _, n := range names {
		fmt.Println(n)
	}
	return nil
}

func batchCommand(cmd *cobra.Command, args []string) error {
	s, err := scenario.Load(args[0])
	if err != nil {
		return err
	}

	store := output.New(dataDir)
	if err := store.Init(); err != nil {
		return err
	}

	run := func(ctx context.Context, p *config.Params) (int, float64, error) {
		if p.DislocationStructureFile == "" {
			return 0, 0, nil
		}
		r, err := buildSinglePlaneRun(p, seed)
		if err != nil {
			return 0, 0, err
		}
		stepsRun, err := runSteps(ctx, r, p, nil)
		return stepsRun, r.pc.TimeElapsed, err
	}

	results, err := scenario.Run(context.Background(), s, run)
	for _, res := range results {
		fmt.Printf("%s: %d steps, t=%.4e", res.SaveAs, res.StepsRun, res.TimeElapsed)
		if res.Err != nil {
			fmt.Printf(" (error: %v)", res.Err)
		}
		fmt.Println()
	}
	return err
}

func calibrateCommand(cmd *cobra.Command, args []string) error {
	basePath := args[0]
	base, err := config.Load(basePath)
	if err != nil {
		return err
	}

	ncFloats := make([]float64, len(calibrateNcRange))
	for i, v := range calibrateNcRange {
		ncFloats[i] = float64(v)
	}

	g := calibrate.NewGridSearch([]string{"tau_crss", "nc"}, [][]float64{calibrateTauCRange, ncFloats})

	observe := func(ctx context.Context, params map[string]float64) (float64, error) {
		p := *base
		p.TauCRSS = params["tau_crss"]

		r, err := buildSinglePlaneRun(&p, seed)
		if err != nil {
			return 0, err
		}
		nc := int(params["nc"])
		for _, d := range r.sp.Defects {
			if d.Source != nil {
				d.Source.Nc = nc
			}
		}
		stepsRun, _ := runSteps(ctx, r, &p, nil)
		return float64(stepsRun), nil
	}

	best, _, err := g.Search(context.Background(), calibrate.TargetDistance(calibrateTarget, observe))
	if err != nil {
		return err
	}
	if best == nil {
		return fmt.Errorf("no candidate produced a usable run")
	}
	fmt.Printf("best tau_crss: %.6e\n", best["tau_crss"])
	fmt.Printf("best nc: %.0f\n", best["nc"])
	return nil
}

func analyzeCommand(cmd *cobra.Command, args []string) error {
	p, err := config.Load(args[0])
	if err != nil {
		return err
	}
	r, err := buildSinglePlaneRun(p, seed)
	if err != nil {
		return err
	}
	if _, err := runSteps(context.Background(), r, p, nil); err != nil {
		return err
	}

	// Report on the first mobile dislocation's glide-axis velocity
	// history, the observable most likely to show avalanche periodicity.
	for _, d := range r.sp.Defects {
		if d.Disloc == nil || !d.Disloc.Mobile {
			continue
		}
		history := make([]float64, len(d.Disloc.VelocityHist))
		for i, v := range d.Disloc.VelocityHist {
			history[i] = v.Dot(r.sp.Direction)
		}
		padded := spectrum.PadToPowerOfTwo(history)
		if len(padded) < 2 {
			fmt.Println("history too short for spectral analysis")
			return nil
		}
		freq := spectrum.DominantFrequency(padded, 1.0)
		fmt.Printf("dominant frequency: %.6f (in units of 1/step)\n", freq)
		return nil
	}
	fmt.Println("no mobile dislocation found on the slip plane")
	return nil
}
