package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/gekko3d/lightpass"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "YAML scene config (defaults to the built-in demo scene)")
	renderer := flag.String("renderer", "", "Renderer backend: wgpu or gl")
	assetDir := flag.String("assets", "", "Directory model and texture paths are relative to")
	debug := flag.Bool("debug", false, "Verbose logging")
	flag.Parse()

	cfg := lightpass.DefaultConfig()
	if *configPath != "" {
		loaded, err := lightpass.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *renderer != "" {
		cfg.Renderer = lightpass.RendererName(*renderer)
	}
	if *assetDir != "" {
		cfg.AssetDir = *assetDir
	}
	if *debug {
		cfg.Debug.Verbose = true
	}

	app := lightpass.NewDemoApp(cfg)
	if err := app.Run(); err != nil {
		app.Logger().Errorf("lightpass: %v", err)
		os.Exit(1)
	}
}
