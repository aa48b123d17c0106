// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package main

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/spf13/cobra"

	"github.com/gviegas/rendercore/driver"
	"github.com/gviegas/rendercore/engine"
	"github.com/gviegas/rendercore/wsi"
)

const dflFrames = 120

type runFlags struct {
	config   string
	frames   int
	resizes  []string
	headless bool
	driver   string
	debug    bool
}

func newRunCmd(lf *logFlags) *cobra.Command {
	var rf runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Render frames and report statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := engine.DefaultConfig()
			if rf.config != "" {
				var err error
				if cfg, err = engine.LoadConfig(rf.config); err != nil {
					return err
				}
			}
			fs := cmd.Flags()
			if fs.Changed("driver") {
				cfg.Driver = rf.driver
			}
			if fs.Changed("debug") {
				cfg.Debug = rf.debug
			}
			evs, err := parseResizes(rf.resizes)
			if err != nil {
				return err
			}
			log := setLogger(lf.level(cfg.LogLevel))
			return run(&cfg, &rf, evs, log)
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&rf.config, "config", "", "configuration file (.toml, .yaml or .yml)")
	fs.IntVar(&rf.frames, "frames", dflFrames, "number of frames to render (0 renders until the window is closed)")
	fs.StringArrayVar(&rf.resizes, "resize", nil, "resize to WxH before frame FRAME (WxH@FRAME, repeatable)")
	fs.BoolVar(&rf.headless, "headless", false, "do not create a window")
	fs.StringVar(&rf.driver, "driver", "", "name of the driver to use")
	fs.BoolVar(&rf.debug, "debug", false, "enable the validation layer")
	return cmd
}

// surfaceWindow is the wsi.Window used by run.
type surfaceWindow interface {
	wsi.Window
	SetSize(width, height int)
	Poll() bool
	Close()
}

// headless is a surfaceWindow with no native window.
type headless struct{ *wsi.Fixed }

func (h headless) SetSize(width, height int) { h.Resize(width, height) }
func (h headless) Poll() bool                { return true }
func (h headless) Close()                    {}

func run(cfg *engine.Config, rf *runFlags, evs []resizeEvent, log *slog.Logger) error {
	frames := rf.frames
	var win surfaceWindow
	if rf.headless {
		if frames <= 0 {
			return errors.New("headless run requires a positive frame count")
		}
		win = headless{wsi.NewFixed(cfg.Width, cfg.Height)}
	} else {
		w, err := newWindow(cfg.Width, cfg.Height, "framepipe")
		if err != nil {
			return fmt.Errorf("window: %w", err)
		}
		win = w
	}
	defer win.Close()

	r, err := engine.NewRenderer(cfg, win)
	if err != nil {
		return err
	}
	defer r.Free()

	vb, err := uploadTriangle(r)
	if err != nil {
		return err
	}
	// Not used by any frame, so the next slot reuse (or
	// Free) destroys it.
	defer r.Retire(vb)

	for i := 0; frames <= 0 || i < frames; i++ {
		if !win.Poll() {
			break
		}
		for len(evs) > 0 && evs[0].frame <= i {
			win.SetSize(evs[0].width, evs[0].height)
			evs = evs[1:]
		}
		if err := r.ResizeToWindow(); err != nil {
			return err
		}
		if err := r.BeginFrame(); err != nil {
			return err
		}
		r.Clear(clearColor(i))
		if err := r.EndFrame(); err != nil {
			return err
		}
	}
	if err := r.Sync().Flush(); err != nil {
		return err
	}
	st := r.Stats()
	log.Info("frame statistics",
		slog.Uint64("frames", st.Frames),
		slog.Uint64("waits", st.Waits),
		slog.Uint64("flushes", st.Flushes),
		slog.Uint64("uploads", st.Uploads),
		slog.Uint64("resizes", st.Resizes),
		slog.Uint64("fence", st.FenceValue))
	return nil
}

// clearColor cycles the red channel over frames.
func clearColor(frame int) [4]float32 {
	red := float32(frame%60) / 59
	return [4]float32{red, 0.2, 0.3, 1}
}

// uploadTriangle uploads the positions of a triangle
// into a device-local buffer and verifies the contents.
func uploadTriangle(r *engine.Renderer) (driver.Buffer, error) {
	pos := [...]float32{
		-1, -1, 0.5,
		1, -1, 0.5,
		0, 1, 0.5,
	}
	data := make([]byte, 0, len(pos)*4)
	for _, x := range pos {
		data = binary.LittleEndian.AppendUint32(data, math.Float32bits(x))
	}
	u := r.Uploader()
	buf, err := u.NewDefaultBuffer(int64(len(data)), data)
	if err != nil {
		return nil, err
	}
	b, err := u.Readback(buf, int64(len(data)))
	if err != nil {
		buf.Destroy()
		return nil, err
	}
	if !bytes.Equal(b, data) {
		buf.Destroy()
		return nil, errors.New("vertex buffer contents differ after upload")
	}
	engine.Logger().Info("vertex buffer uploaded", slog.Int("size", len(data)))
	return buf, nil
}
