package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"

	"github.com/richinsley/gowarp/audio"
	"github.com/richinsley/gowarp/compositor"
	"github.com/richinsley/gowarp/follow"
	"github.com/richinsley/gowarp/options"
	"github.com/richinsley/gowarp/params"
	"github.com/richinsley/gowarp/preview"
	"github.com/richinsley/gowarp/renderer"
	"github.com/richinsley/gowarp/sketch"
)

const micSampleRate = 44100

func init() {
	runtime.LockOSThread()
}

// sketchFactory returns a constructor that applies the command-line
// options to every sketch it builds.
func sketchFactory(o *options.SketchOptions) sketch.Factory {
	return func(width, height int, p compositor.Presenter, deviceDistortion bool) (*sketch.Sketch, error) {
		kind, err := o.FieldKind()
		if err != nil {
			return nil, err
		}
		mode, err := o.FollowMode()
		if err != nil {
			return nil, err
		}

		var cfg *options.Config
		specs := params.Defaults()
		if *o.ConfigFile != "" {
			cfg, err = options.LoadConfig(*o.ConfigFile)
			if err != nil {
				return nil, err
			}
			if specs, err = cfg.Specs(specs); err != nil {
				return nil, err
			}
		}

		var level sketch.LevelSource
		var dev audio.Device
		if *o.Audio {
			dev, level = openMicrophone()
		}

		sk, err := sketch.New(sketch.Config{
			Width:            width,
			Height:           height,
			Field:            kind,
			Seed:             *o.Seed,
			Detail:           *o.Detail,
			Workers:          *o.Workers,
			Follow:           follow.Config{Mode: mode, FPS: *o.FPS},
			Presenter:        p,
			DeviceDistortion: deviceDistortion,
			Specs:            specs,
			Level:            level,
			OnError: func(err error) {
				log.Printf("Parameter edit failed: %v", err)
			},
		})
		if err != nil {
			if dev != nil {
				dev.Stop()
			}
			return nil, err
		}
		if dev != nil {
			sk.OnDispose(func() {
				if err := dev.Stop(); err != nil {
					log.Printf("Failed to stop audio input: %v", err)
				}
			})
		}

		if *o.AudioGain != 0 {
			if err := sk.SetParameter(params.AudioGain, *o.AudioGain); err != nil {
				return nil, errors.Join(err, sk.Dispose())
			}
		}
		if cfg != nil {
			if err := cfg.Post(sk.Inbox()); err != nil {
				return nil, errors.Join(err, sk.Dispose())
			}
		}
		if *o.Watch {
			w, err := options.Watch(*o.ConfigFile, sk.Inbox())
			if err != nil {
				return nil, errors.Join(err, sk.Dispose())
			}
			sk.OnDispose(func() { w.Close() })
		}
		return sk, nil
	}
}

// openMicrophone starts the default input device. Without one the sketch
// runs with a silent device so the audio parameters keep working.
func openMicrophone() (audio.Device, sketch.LevelSource) {
	return openAudio(func() (audio.Device, error) {
		return audio.NewMicrophone(micSampleRate, 1)
	})
}

func openAudio(open func() (audio.Device, error)) (audio.Device, sketch.LevelSource) {
	dev, err := open()
	if err != nil {
		log.Printf("Microphone unavailable, audio is silent: %v", err)
		dev = audio.NewNullDevice(micSampleRate)
	}
	analyzer, err := audio.Listen(dev)
	if err != nil {
		log.Printf("Failed to start audio input: %v", err)
		if serr := dev.Stop(); serr != nil {
			log.Printf("Failed to release audio input: %v", serr)
		}
		dev = audio.NewNullDevice(micSampleRate)
		if analyzer, err = audio.Listen(dev); err != nil {
			return nil, nil
		}
	}
	return dev, analyzer
}

func main() {
	o := options.New(flag.CommandLine)
	flag.Parse()

	if *o.Help {
		fmt.Println("gowarp: distorted parametric visuals")
		flag.PrintDefaults()
		return
	}
	if err := o.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	newSketch := sketchFactory(o)
	var err error
	switch *o.Mode {
	case "record":
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		err = renderer.RunRecord(ctx, o, newSketch)
		stop()
		if err == nil {
			log.Printf("Successfully rendered to %s", *o.OutputFile)
		}
	case "preview":
		err = preview.Run(o, newSketch)
	default:
		err = renderer.Run(o, newSketch)
	}
	if err != nil {
		log.Fatalf("%s mode failed: %v", *o.Mode, err)
	}
}
