package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"propbind"
	"propbind/internal/config"
)

// Slider is the model driving the screen; a ticker stands in for the user
// dragging it back and forth.
type Slider struct {
	Value int
}

// Clock tracks how long the demo has been running.
type Clock struct {
	Uptime time.Duration
}

// Screen is a passive property bag; it has no knowledge of being observed.
type Screen struct {
	ValueLabel   string
	PercentLabel string
	UptimeLabel  string
}

var (
	sliderValue = propbind.NewProperty("Value",
		func(s *Slider) int { return s.Value },
		func(s *Slider, v int) { s.Value = v })
	clockUptime = propbind.NewProperty("Uptime",
		func(c *Clock) time.Duration { return c.Uptime },
		func(c *Clock, v time.Duration) { c.Uptime = v })
	screenValueLabel = propbind.NewProperty("ValueLabel",
		func(s *Screen) string { return s.ValueLabel },
		func(s *Screen, v string) { s.ValueLabel = v })
	screenPercentLabel = propbind.NewProperty("PercentLabel",
		func(s *Screen) string { return s.PercentLabel },
		func(s *Screen, v string) { s.PercentLabel = v })
	screenUptimeLabel = propbind.NewProperty("UptimeLabel",
		func(s *Screen) string { return s.UptimeLabel },
		func(s *Screen, v string) { s.UptimeLabel = v })
)

type demo struct {
	cfg      *config.Config
	logger   *logrus.Logger
	notifier *propbind.Notifier
	loop     *propbind.Loop
	slider   *Slider
	clock    *Clock
	screen   *Screen
	bindings []*propbind.Binding
	start    time.Time
	step     int
}

func newDemo(cfg *config.Config, logger *logrus.Logger) (*demo, error) {
	d := &demo{
		cfg:      cfg,
		logger:   logger,
		notifier: propbind.NewNotifier(logger),
		loop:     propbind.NewLoop(),
		slider:   &Slider{Value: cfg.Slider.Min},
		clock:    &Clock{},
		screen:   &Screen{},
		step:     cfg.Slider.Step,
	}

	percent, err := d.percentTransform()
	if err != nil {
		return nil, err
	}

	common := []propbind.BindOption{
		propbind.WithNotifier(d.notifier),
		propbind.WithDispatcher(d.loop),
		propbind.WithLogger(logger),
	}

	valueBinding, err := propbind.Bind(d.slider, sliderValue, d.screen, screenValueLabel,
		append(common, propbind.WithTransform(func(_, value any) (any, error) {
			return strconv.Itoa(value.(int)), nil
		}))...)
	if err != nil {
		return nil, fmt.Errorf("failed to bind value label: %w", err)
	}

	percentBinding, err := propbind.Bind(d.slider, sliderValue, d.screen, screenPercentLabel,
		append(common, propbind.WithTransform(percent))...)
	if err != nil {
		return nil, fmt.Errorf("failed to bind percent label: %w", err)
	}

	uptimeBinding, err := propbind.Bind(d.clock, clockUptime, d.screen, screenUptimeLabel,
		append(common, propbind.WithTransform(func(_, value any) (any, error) {
			return value.(time.Duration).Truncate(time.Second).String(), nil
		}))...)
	if err != nil {
		return nil, fmt.Errorf("failed to bind uptime label: %w", err)
	}

	d.bindings = []*propbind.Binding{valueBinding, percentBinding, uptimeBinding}
	return d, nil
}

// percentTransform loads the configured percent-label script, or builds one
// from the slider range.
func (d *demo) percentTransform() (propbind.Transform, error) {
	if d.cfg.Screen.PercentScript != "" {
		d.logger.Infof("Loading percent transform script: %s", d.cfg.Screen.PercentScript)
		return propbind.ScriptTransformFile(d.cfg.Screen.PercentScript)
	}
	span := d.cfg.Slider.Max - d.cfg.Slider.Min
	if span <= 0 {
		span = 1
	}
	script := fmt.Sprintf(
		`(function(value, old) { return Math.round((value - %d) * 100 / %d) + "%%"; })`,
		d.cfg.Slider.Min, span)
	return propbind.ScriptTransform(script)
}

// Run drives the models from a ticker and renders on the loop, the demo's
// UI-safe context, until ctx is done.
func (d *demo) Run(ctx context.Context) {
	d.start = time.Now()
	go d.drive(ctx)
	d.loop.Run(ctx)
	fmt.Println()
}

func (d *demo) drive(ctx context.Context) {
	ticker := time.NewTicker(d.cfg.Screen.Refresh())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.loop.Async(d.tick)
		}
	}
}

// tick runs on the loop. It is the mutating collaborator, so every write is
// followed by an Emit.
func (d *demo) tick() {
	old := d.slider.Value
	next := old + d.step
	if next >= d.cfg.Slider.Max {
		next = d.cfg.Slider.Max
		d.step = -d.step
	} else if next <= d.cfg.Slider.Min {
		next = d.cfg.Slider.Min
		d.step = -d.step
	}
	d.slider.Value = next
	propbind.EmitOld(d.notifier, d.slider, sliderValue.Name(), old)

	d.clock.Uptime = time.Since(d.start)
	propbind.Emit(d.notifier, d.clock, clockUptime.Name())

	d.render()
}

func (d *demo) render() {
	fmt.Printf("\r%s   ", d.renderLine())
}

func (d *demo) renderLine() string {
	span := d.cfg.Slider.Max - d.cfg.Slider.Min
	if span <= 0 {
		span = 1
	}
	filled := (d.slider.Value - d.cfg.Slider.Min) * 20 / span
	bar := "[" + strings.Repeat("#", filled) + strings.Repeat("-", 20-filled) + "]"
	return fmt.Sprintf("%s value=%s (%s)  up %s",
		bar, d.screen.ValueLabel, d.screen.PercentLabel, d.screen.UptimeLabel)
}

func (d *demo) Close() {
	for _, b := range d.bindings {
		b.Unbind()
	}
}
