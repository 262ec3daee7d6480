// Command binw2-sim runs the binw2 binary watch firmware on an emulated AVR
// and shows its charlieplexed LEDs in a window, a terminal or over MQTT.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/binw2-sim/internal/avr"
	"github.com/sweeney/binw2-sim/internal/board"
	"github.com/sweeney/binw2-sim/internal/firmware"
	"github.com/sweeney/binw2-sim/internal/gpio"
	"github.com/sweeney/binw2-sim/internal/mqtt"
	"github.com/sweeney/binw2-sim/internal/pov"
	"github.com/sweeney/binw2-sim/internal/render"
	sig "github.com/sweeney/binw2-sim/internal/signal"
	"github.com/sweeney/binw2-sim/internal/status"
	"github.com/sweeney/binw2-sim/internal/topology"
	"github.com/sweeney/binw2-sim/internal/web"
)

// Frontends selectable with -ui.
const (
	uiWindow = "window"
	uiTerm   = "term"
	uiNone   = "none"
)

type config struct {
	ui       string
	hold     int
	poll     time.Duration
	redraw   time.Duration
	mcu      string
	freq     uint64
	realtime bool
	press    time.Duration
	broker   string
	httpAddr string
	mirror   string
	gpioChip string
	start    string
}

func main() {
	var cfg config
	flag.StringVar(&cfg.ui, "ui", uiWindow, "Frontend: window, term or none")
	flag.IntVar(&cfg.hold, "pov", pov.DefaultHold, "Frames an LED stays lit after it was driven")
	flag.DurationVar(&cfg.poll, "poll", sig.DefaultCheck, "Change signal polling interval")
	flag.DurationVar(&cfg.redraw, "redraw", sig.DefaultMinRedraw, "Minimum interval between redraws")
	flag.StringVar(&cfg.mcu, "mcu", avr.DefaultMCU, "Emulated microcontroller")
	flag.Uint64Var(&cfg.freq, "mcu-freq", avr.DefaultFrequency, "MCU clock in Hz")
	flag.BoolVar(&cfg.realtime, "realtime", true, "Pace the emulator to the wall clock")
	flag.DurationVar(&cfg.press, "press", avr.DefaultPress, "Length of one button press")
	flag.StringVar(&cfg.broker, "broker", "", "MQTT broker address (empty to disable)")
	flag.StringVar(&cfg.httpAddr, "http", ":8080", "HTTP status address (empty to disable)")
	flag.StringVar(&cfg.mirror, "mirror", "", `Mirror LEDs to GPIO lines, "led:line,..." (empty to disable)`)
	flag.StringVar(&cfg.gpioChip, "gpiochip", gpio.DefaultChip, "GPIO chip for -mirror")
	flag.StringVar(&cfg.start, "start", "", "Watch start time HH:MM (default now)")

	flag.Parse()

	if err := run(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(cfg config) error {
	if cfg.ui != uiWindow && cfg.ui != uiTerm && cfg.ui != uiNone {
		return fmt.Errorf("unknown -ui %q", cfg.ui)
	}
	if cfg.hold < 1 {
		return fmt.Errorf("-pov must be at least 1, got %d", cfg.hold)
	}
	start, err := parseStart(cfg.start, time.Now())
	if err != nil {
		return err
	}

	// Core: table, board, firmware, emulated MCU
	table := topology.Default()
	b, err := board.New(table, board.Config{Hold: cfg.hold, MinRedraw: cfg.redraw})
	if err != nil {
		return fmt.Errorf("init board: %w", err)
	}
	fw, err := firmware.NewWatch(table, start)
	if err != nil {
		return fmt.Errorf("init firmware: %w", err)
	}
	machine, err := avr.New(avr.Config{
		MCU:        cfg.mcu,
		Frequency:  cfg.freq,
		Realtime:   cfg.realtime,
		ButtonLine: avr.DefaultButtonLine,
		Press:      cfg.press,
	}, fw, b.ButtonRequests())
	if err != nil {
		return fmt.Errorf("init mcu: %w", err)
	}
	b.Attach(machine.Port())

	tracker := status.NewTracker(time.Now(), status.Config{
		UI:          cfg.ui,
		MCU:         machine.MCU(),
		FrequencyHz: machine.Frequency(),
		HoldTicks:   b.HoldTicks(),
		PollMs:      cfg.poll.Milliseconds(),
		RedrawMs:    cfg.redraw.Milliseconds(),
		Broker:      cfg.broker,
		HTTPAddr:    cfg.httpAddr,
	})

	out := &outputs{board: b, tracker: tracker, now: time.Now}

	// GPIO mirror
	mappings, err := gpio.ParseMappings(cfg.mirror)
	if err != nil {
		return err
	}
	if len(mappings) > 0 {
		w, err := gpio.NewRealWriter(cfg.gpioChip, gpio.Lines(mappings))
		if err != nil {
			return fmt.Errorf("init gpio: %w", err)
		}
		out.mirror = gpio.NewMirror(w, mappings)
		defer out.mirror.Close()
		log.Printf("gpio: mirroring %d LEDs on %s", len(mappings), cfg.gpioChip)
	}

	// MQTT
	if cfg.broker != "" {
		publisher, err := mqtt.NewRealPublisher(cfg.broker, tracker.SetMQTTConnected)
		if err != nil {
			log.Printf("mqtt: %v (continuing without MQTT)", err)
		} else {
			defer publisher.Close()
			out.publisher = publisher
			out.mqttStatus = publisher
		}
	}
	out.startup()

	// HTTP status server
	if cfg.httpAddr != "" {
		srv := web.New(cfg.httpAddr, tracker, table, b)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.httpAddr)
	}

	ctx, cancel := context.WithCancel(context.Background())

	emuDone := make(chan struct{})
	go func() {
		defer close(emuDone)
		if err := machine.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("avr: %v", err)
		}
	}()
	defer func() { <-emuDone }()
	defer cancel()

	log.Printf("started: ui=%s mcu=%s freq=%d pov=%d poll=%v redraw=%v start=%s broker=%q",
		cfg.ui, machine.MCU(), machine.Frequency(), b.HoldTicks(), cfg.poll, cfg.redraw,
		start.Format("15:04"), cfg.broker)
	if help := keyHelp(cfg.ui, machine.Button().Line()); help != "" {
		log.Print(help)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	if cfg.ui == uiNone {
		ticker := time.NewTicker(cfg.poll)
		defer ticker.Stop()
		return runLoop(b, out, ticker.C, sigCh)
	}

	// Interactive frontends own their loop; a signal just stops them.
	reason := make(chan string, 1)
	go func() {
		select {
		case s := <-sigCh:
			log.Printf("received %v, shutting down", s)
			reason <- signalName(s)
			cancel()
		case <-ctx.Done():
		}
	}()

	opts := render.Options{
		Title:   fmt.Sprintf("binw2 (%s @ %d Hz)", machine.MCU(), machine.Frequency()),
		Check:   cfg.poll,
		OnFrame: out.frame,
		Status:  out.statusLine,
	}
	if cfg.ui == uiWindow {
		err = render.RunWindow(ctx, b, opts)
	} else {
		err = render.RunTerminal(ctx, b, opts, os.Stdin, os.Stdout)
	}

	why := "quit"
	select {
	case why = <-reason:
	default:
	}
	out.shutdown(why)
	return err
}

// runLoop drives the board without a frontend: each tick polls the change
// signal and renders a frame when a redraw is due.
func runLoop(b *board.Board, out *outputs, tick <-chan time.Time, sigs <-chan os.Signal) error {
	for {
		select {
		case s := <-sigs:
			log.Printf("received %v, shutting down", s)
			out.shutdown(signalName(s))
			return nil

		case <-tick:
			now := out.now()
			if b.PollTick(now) {
				out.frame(b.RenderFrame(now, nil))
			}
		}
	}
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}

// keyHelp lists the keys an interactive frontend understands.
func keyHelp(ui string, buttonLine uint8) string {
	switch ui {
	case uiWindow:
		return fmt.Sprintf("keys: space = press the button on line %d, q/esc = quit, F12 = status line", buttonLine)
	case uiTerm:
		return fmt.Sprintf("keys: space = press the button on line %d, q/esc/ctrl-c = quit, s = status line", buttonLine)
	}
	return ""
}

// parseStart parses an "HH:MM" start time on now's date. Empty means now.
func parseStart(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return now, nil
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("-start %q: want HH:MM", s)
	}
	return time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location()), nil
}
