package sim

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/san-kum/threebody/internal/dynamo"
)

// ProgressLogger logs every Interval steps.
type ProgressLogger struct {
	Logger     *slog.Logger
	Interval   int
	TotalSteps int

	start time.Time
}

func NewProgressLogger(logger *slog.Logger, interval, totalSteps int) *ProgressLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProgressLogger{Logger: logger, Interval: interval, TotalSteps: totalSteps}
}

func (p *ProgressLogger) OnStep(s dynamo.Snapshot) {
	if s.Step == 0 {
		p.start = time.Now()
	}
	if p.Interval <= 0 || s.Step%p.Interval != 0 {
		return
	}
	attrs := []any{slog.Int("step", s.Step), slog.Float64("time", s.Time)}
	if p.TotalSteps > 0 {
		attrs = append(attrs, slog.String("progress", percent(s.Step, p.TotalSteps)))
	}
	if !p.start.IsZero() {
		attrs = append(attrs, slog.Duration("elapsed", time.Since(p.start).Round(time.Millisecond)))
	}
	p.Logger.Info("finished step", attrs...)
}

func percent(step, total int) string {
	return fmt.Sprintf("%.1f%%", 100*float64(step)/float64(total))
}
