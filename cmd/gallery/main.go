package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/eringen/gallery"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// A missing .env is fine; real environment variables still apply.
	_ = godotenv.Load()

	var err error
	switch os.Args[1] {
	case "serve":
		err = withConfig(runServe)
	case "list":
		err = withConfig(func(cfg gallery.SiteConfig) error {
			return runList(cfg, os.Args[2:])
		})
	case "repl":
		err = withConfig(runRepl)
	case "index":
		err = withConfig(runIndex)
	case "fit":
		err = withConfig(func(cfg gallery.SiteConfig) error {
			return runFit(cfg, os.Args[2:])
		})
	case "version":
		fmt.Printf("gallery %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// withConfig loads the YAML file named by GALLERY_CONFIG (default
// gallery.yaml), overlays the environment and calls fn.
func withConfig(fn func(gallery.SiteConfig) error) error {
	cfg, err := gallery.LoadConfigFile(gallery.EnvOr("GALLERY_CONFIG", "gallery.yaml"))
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return err
	}
	return fn(cfg)
}

func printUsage() {
	fmt.Println(`gallery - An image gallery server built with Go, Echo, and templ

Usage:
  gallery <command> [arguments]

Commands:
  serve                 Serve the gallery over HTTP
  list [query]          Print the images matching query
  repl                  Search the library interactively
  index                 Probe image sizes into the size cache
  fit W H [VW VH]       Print the viewer geometry for an image size
  version               Print the gallery version
  help                  Show this help message

Configuration is read from gallery.yaml (or $GALLERY_CONFIG), then from
the environment and a .env file.

Examples:
  gallery serve
  gallery list author:jane
  gallery fit 320 200 1280 800`)
}
