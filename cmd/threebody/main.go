package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/san-kum/threebody/internal/config"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	logLevel   string
	configFile string
	preset     string

	dt           float64
	steps        int
	gravity      float64
	epsilon      float64
	integrator   string
	field        string
	openAngle    float64
	workers      int
	fps          int
	length       int
	pngPath      string
	gifPath      string
	svgPath      string
	progress     int
	noRender     bool
	noSave       bool
	stepsPerTick int
	addr         string

	outputPath   string
	body         int
	axis         string
	perturbation float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "threebody",
		Short:        "2D Newtonian gravity simulator",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(logLevel)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".threebody", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and render it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().StringVar(&pngPath, "png", "", "output PNG path")
	runCmd.Flags().StringVar(&gifPath, "gif", "", "output GIF path")
	runCmd.Flags().IntVar(&progress, "progress", config.DefaultProgressInterval, "log progress every n steps (0 disables)")
	runCmd.Flags().BoolVar(&noRender, "no-render", false, "skip PNG and GIF output")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a simulation in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSimFlags(liveCmd)
	liveCmd.Flags().IntVar(&stepsPerTick, "steps-per-tick", 10, "physics steps per frame")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "stream a simulation over websocket",
		Args:  cobra.NoArgs,
		RunE:  serveSimulation,
	}
	addSimFlags(serveCmd)
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	showCmd.Flags().IntVar(&body, "body", 0, "body to chart")
	showCmd.Flags().StringVar(&axis, "axis", "x", "coordinate to chart (x, y, vx, vy)")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "render a stored run to PNG and GIF",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&pngPath, "png", "", "output PNG path (default <run_id>.png)")
	plotCmd.Flags().StringVar(&gifPath, "gif", "", "output GIF path (default <run_id>.gif)")
	plotCmd.Flags().IntVar(&fps, "fps", config.DefaultFPS, "animation frame rate")
	plotCmd.Flags().StringVar(&svgPath, "svg", "", "also write an SVG trajectory plot")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run frames to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and frames to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	lyapunovCmd := &cobra.Command{
		Use:   "lyapunov",
		Short: "estimate the largest lyapunov exponent",
		Args:  cobra.NoArgs,
		RunE:  lyapunov,
	}
	addSimFlags(lyapunovCmd)
	lyapunovCmd.Flags().Float64Var(&perturbation, "perturbation", 1e-8, "initial displacement of the first body")

	rootCmd.AddCommand(runCmd, liveCmd, serveCmd, listCmd, showCmd, plotCmd, exportCSVCmd, exportJSONCmd, presetsCmd, lyapunovCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultTimeStep, "time step")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultTotalSteps, "number of steps")
	cmd.Flags().Float64Var(&gravity, "g", 0, "gravitational constant (default from config)")
	cmd.Flags().Float64Var(&epsilon, "epsilon", 0, "singularity distance (default from config)")
	cmd.Flags().StringVar(&integrator, "integrator", "euler", "integrator (euler, leapfrog, rk4)")
	cmd.Flags().StringVar(&field, "field", "direct", "force field (direct, barneshut)")
	cmd.Flags().Float64Var(&openAngle, "theta", config.DefaultTheta, "barnes-hut opening angle")
	cmd.Flags().IntVar(&workers, "workers", 1, "force workers")
	cmd.Flags().IntVar(&fps, "fps", config.DefaultFPS, "animation frame rate")
	cmd.Flags().IntVar(&length, "length", config.DefaultLength, "animation length in seconds")
}

func setupLogging(level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
	return nil
}

// resolveConfig builds the run configuration: a config file wins over a
// preset, and flags set on the command line win over both. The result is
// validated before any command starts simulating.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case configFile != "":
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		if preset != "" {
			slog.Warn("config file overrides preset", "config", configFile, "preset", preset)
		}
		cfg = loaded
	case preset != "":
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	default:
		cfg = config.DefaultConfig()
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.TimeStep = dt
	}
	if flags.Changed("steps") {
		cfg.TotalSteps = steps
	}
	if flags.Changed("g") {
		cfg.G = gravity
	}
	if flags.Changed("epsilon") {
		cfg.Epsilon = epsilon
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("field") {
		cfg.Field = field
	}
	if flags.Changed("theta") {
		cfg.Theta = openAngle
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("fps") {
		cfg.Animation.FPS = fps
	}
	if flags.Changed("length") {
		cfg.Animation.Length = length
	}
	if flags.Changed("png") {
		cfg.Output.PNG = pngPath
	}
	if flags.Changed("gif") {
		cfg.Output.GIF = gifPath
	}
	if flags.Changed("progress") {
		cfg.ProgressInterval = progress
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
