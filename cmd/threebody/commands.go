package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/threebody/internal/analysis"
	"github.com/san-kum/threebody/internal/config"
	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/export"
	"github.com/san-kum/threebody/internal/metrics"
	"github.com/san-kum/threebody/internal/render"
	"github.com/san-kum/threebody/internal/sim"
	"github.com/san-kum/threebody/internal/storage"
	"github.com/san-kum/threebody/internal/stream"
	"github.com/san-kum/threebody/internal/viz"
	"github.com/spf13/cobra"
)

func renderOptions(cfg *config.Config) render.Options {
	opt := render.DefaultOptions()
	opt.Size = cfg.Render.Size
	opt.Scale = cfg.Render.Scale
	opt.Extent = cfg.Render.Extent
	opt.FPS = cfg.Animation.FPS
	return opt
}

func runName() string {
	if preset != "" && configFile == "" {
		return preset
	}
	return "run"
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	logger := slog.Default()
	var opts []sim.Option
	if cfg.ProgressInterval > 0 {
		opts = append(opts, sim.WithObserver(sim.NewProgressLogger(logger, cfg.ProgressInterval, cfg.TotalSteps)))
	}
	e, err := cfg.NewEngine(opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	stride := cfg.Stride()
	logger.Info("simulating",
		"bodies", len(cfg.Bodies),
		"steps", cfg.TotalSteps,
		"dt", cfg.TimeStep,
		"integrator", cfg.Integrator,
		"field", cfg.Field,
		"stride", stride,
	)

	start := time.Now()
	result, err := sim.Run(ctx, e, stride, metrics.Defaults(cfg.G, cfg.Radius())...)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)
	logger.Info("finished simulating", "steps", result.StepsTaken, "frames", len(result.Frames), "elapsed", elapsed.Round(time.Millisecond))

	if !noRender {
		if err := renderFiles(cfg.Output.PNG, cfg.Output.GIF, result.Frames, renderOptions(cfg)); err != nil {
			return err
		}
	}

	runID := ""
	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err = st.Save(metadata(cfg, result), result.Frames)
		if err != nil {
			return err
		}
	}

	fmt.Println(viz.TitleStyle.Render("three body run"))
	if runID != "" {
		fmt.Println(viz.KeyValue("run id", runID))
	}
	fmt.Println(viz.KeyValue("steps", result.StepsTaken))
	fmt.Println(viz.KeyValue("frames", len(result.Frames)))
	fmt.Println(viz.KeyValue("completed in", elapsed.Round(time.Millisecond)))
	printMetrics(os.Stdout, result.Metrics)
	fmt.Print(viz.Trajectory(result.Frames, 40, 20).Render(viz.BodyStyles))
	return nil
}

func metadata(cfg *config.Config, result *sim.Result) storage.RunMetadata {
	return storage.RunMetadata{
		Name:       runName(),
		TimeStep:   cfg.TimeStep,
		TotalSteps: cfg.TotalSteps,
		StepsTaken: result.StepsTaken,
		Stride:     result.Stride,
		G:          cfg.G,
		Epsilon:    cfg.Epsilon,
		Integrator: cfg.Integrator,
		Field:      cfg.Field,
		Bodies:     dynamo.CloneBodies(cfg.Bodies),
		Metrics:    result.Metrics,
	}
}

func printMetrics(w io.Writer, m map[string]float64) {
	if len(m) == 0 {
		return
	}
	fmt.Fprintln(w, viz.Separator(40))
	for _, name := range []string{"energy_drift", "momentum_drift", "angular_momentum_drift", "min_separation", "bounded"} {
		if v, ok := m[name]; ok {
			fmt.Fprintln(w, viz.KeyValue(name, fmt.Sprintf("%.6g", v)))
		}
	}
}

// renderFiles writes the PNG plot and GIF animation; an empty path skips
// that output.
func renderFiles(pngOut, gifOut string, frames []dynamo.Snapshot, opt render.Options) error {
	outputs := []struct {
		path string
		draw func(io.Writer, []dynamo.Snapshot, render.Options) error
	}{
		{pngOut, render.Plot},
		{gifOut, render.Animate},
	}
	for _, o := range outputs {
		if o.path == "" {
			continue
		}
		slog.Info("rendering", "path", o.path, "frames", len(frames))
		if err := writeFile(o.path, func(w io.Writer) error { return o.draw(w, frames, opt) }); err != nil {
			return fmt.Errorf("render %s: %w", o.path, err)
		}
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// output returns stdout or the --output file.
func output() (io.Writer, func() error, error) {
	if outputPath == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	e, err := cfg.NewEngine()
	if err != nil {
		return err
	}

	title := "THREE BODY"
	if preset != "" {
		title = strings.ToUpper(preset)
	}
	m := viz.NewModel(e, viz.ModelOptions{
		StepsPerTick: stepsPerTick,
		Radius:       cfg.Radius(),
		Title:        title,
	})
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(viz.Model); ok && fm.Err() != nil {
		return fm.Err()
	}
	return nil
}

func serveSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	e, err := cfg.NewEngine()
	if err != nil {
		return err
	}

	hub := stream.NewHub(slog.Default())
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	srv, errc, err := startServer(addr, mux)
	if err != nil {
		return err
	}
	slog.Info("streaming", "addr", srv.Addr, "path", "/ws", "fps", cfg.Animation.FPS, "stride", cfg.Stride())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	go func() {
		if err, ok := <-errc; ok && err != nil {
			cancel(err)
		}
	}()

	interval := time.Second / time.Duration(cfg.Animation.FPS)
	runErr := stream.Play(ctx, sim.Sample(e.Snapshots(ctx), cfg.Stride()), hub, interval)

	hub.Close()
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("shutdown", "err", err)
	}
	if cause := context.Cause(ctx); cause != nil && !errors.Is(cause, context.Canceled) {
		return cause
	}
	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}

// startServer binds addr before returning, so a busy port is reported
// before anything is streamed. Serve errors arrive on the channel, which is
// closed when the server stops.
func startServer(addr string, h http.Handler) (*http.Server, <-chan error, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, err
	}
	srv := &http.Server{Addr: ln.Addr().String(), Handler: h}
	errc := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()
	return srv, errc, nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tBODIES\tSTEPS\tFRAMES\tDT\tINTEG")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%.4g\t%s\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			len(run.Bodies),
			run.StepsTaken,
			run.Frames,
			run.TimeStep,
			run.Integrator,
		)
	}
	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, []dynamo.Snapshot, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	frames, err := st.LoadFrames(runID)
	if err != nil {
		return nil, nil, err
	}
	return meta, frames, nil
}

func showRun(cmd *cobra.Command, args []string) error {
	meta, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("no data to show")
	}

	fmt.Println(viz.TitleStyle.Render(meta.ID))
	fmt.Println(viz.KeyValue("created", meta.Timestamp.Format(time.RFC3339)))
	fmt.Println(viz.KeyValue("bodies", len(meta.Bodies)))
	fmt.Println(viz.KeyValue("steps", fmt.Sprintf("%d / %d", meta.StepsTaken, meta.TotalSteps)))
	fmt.Println(viz.KeyValue("time step", meta.TimeStep))
	fmt.Println(viz.KeyValue("G", meta.G))
	fmt.Println(viz.KeyValue("integrator", meta.Integrator))
	fmt.Println(viz.KeyValue("stride", meta.Stride))
	printMetrics(os.Stdout, meta.Metrics)

	fmt.Print(viz.Trajectory(frames, 40, 20).Render(viz.BodyStyles))
	chart, err := viz.SeriesPlot(frames, body, axis, 60, 10)
	if err != nil {
		return err
	}
	fmt.Println(chart)

	values, err := viz.Series(frames, body, axis)
	if err != nil {
		return err
	}
	if len(frames) > 1 {
		if period := analysis.DominantPeriod(values, frames[1].Time-frames[0].Time); period > 0 {
			fmt.Println(viz.KeyValue("dominant period", fmt.Sprintf("%.4g", period)))
		}
	}
	return nil
}

func lyapunov(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	ec, err := cfg.Engine()
	if err != nil {
		return err
	}
	f, err := cfg.NewField()
	if err != nil {
		return err
	}
	integ, err := cfg.NewIntegrator()
	if err != nil {
		return err
	}

	slog.Info("estimating lyapunov exponent", "steps", ec.TotalSteps, "perturbation", perturbation)
	lambda, err := analysis.LyapunovExponent(f, integ, ec, perturbation)
	if err != nil {
		return err
	}
	fmt.Println(viz.KeyValue("lyapunov", fmt.Sprintf("%.6g", lambda)))
	if lambda > 0 {
		fmt.Println(viz.Subtle.Render("positive: nearby starts diverge exponentially"))
	}
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	_, frames, err := loadRun(runID)
	if err != nil {
		return err
	}

	pngOut, gifOut := pngPath, gifPath
	if pngOut == "" {
		pngOut = runID + ".png"
	}
	if gifOut == "" {
		gifOut = runID + ".gif"
	}
	opt := render.DefaultOptions()
	opt.FPS = fps
	if err := renderFiles(pngOut, gifOut, frames, opt); err != nil {
		return err
	}
	fmt.Printf("wrote %s and %s\n", pngOut, gifOut)

	if svgPath != "" {
		if err := writeFile(svgPath, func(w io.Writer) error { return export.TrajectorySVG(w, frames, opt.Size*2) }); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgPath)
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}
	w, closeFn, err := output()
	if err != nil {
		return err
	}
	if err := storage.WriteCSV(w, frames); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}
	w, closeFn, err := output()
	if err != nil {
		return err
	}
	if err := storage.ExportJSON(w, *meta, frames); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tBODIES\tG\tDT\tSTEPS\tINTEG")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%g\t%g\t%d\t%s\n", name, len(p.Bodies), p.G, p.TimeStep, p.TotalSteps, p.Integrator)
	}
	return w.Flush()
}
