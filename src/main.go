package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"imgoptimizer/src/config"
	"imgoptimizer/src/deployer"
	"imgoptimizer/src/optimizer"
	"imgoptimizer/src/watcher"
)

var (
	configFlag = flag.String("config", "config.yaml", "path to the YAML configuration")
	envFlag    = flag.String("env", ".env", "optional env file with IMGOPT_* overrides")
	watchFlag  = flag.Bool("watch", false, "keep running and re-optimize when source images change")
	deployFlag = flag.Bool("deploy", false, "publish the optimized images into deploy.public_dir")
)

func main() {
	flag.Parse()

	fmt.Println("🚀 Image Optimizer - web-ready product photos and logos")
	fmt.Println(strings.Repeat("=", 60))

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Printf("Loaded config: %d products, %d logos from %s", len(cfg.ProductFiles), len(cfg.LogoFiles), cfg.Input)

	if err := run(cfg); err != nil {
		log.Printf("❌ Error during optimization: %v", err)
		os.Exit(1)
	}

	if *watchFlag {
		if err := watch(cfg); err != nil {
			log.Fatalf("Watch mode failed: %v", err)
		}
	}
}

// loadConfig reads the config file, falling back to the built-in image set
// when the default path does not exist
func loadConfig() (*config.Config, error) {
	explicit := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			explicit = true
		}
	})

	cfg, err := config.Parse(*configFlag)
	if err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		log.Printf("No %s found, using built-in image list", *configFlag)
		cfg = config.Default()
	}

	if err := cfg.LoadEnv(*envFlag); err != nil {
		return nil, err
	}

	if *deployFlag {
		cfg.Deploy.Enabled = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func run(cfg *config.Config) error {
	o := optimizer.NewOptimizer(cfg)
	if cfg.Deploy.Enabled {
		o.SetDeployer(deployer.NewDeployer(cfg))
	}

	report, err := o.Run()
	if err != nil {
		return fmt.Errorf("stopped after %s: %w", o.Stage(), err)
	}

	o.PrintSummary(report)
	return nil
}

func watch(cfg *config.Config) error {
	w, err := watcher.NewWatcher(cfg)
	if err != nil {
		return err
	}
	defer w.Stop()

	if err := w.Start(); err != nil {
		return err
	}

	log.Println("Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case event, ok := <-w.Events():
			if !ok {
				return nil
			}
			log.Printf("📄 Event: %v - %s", event.Type, event.FilePath)
			if event.Type == watcher.EventDeleted {
				continue
			}

			// One run picks up every change queued so far
			drain(w.Events())

			if err := run(cfg); err != nil {
				log.Printf("❌ Error during optimization: %v", err)
			}

		case <-sigChan:
			log.Println("Shutting down...")
			return nil
		}
	}
}

func drain(events <-chan watcher.Event) {
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return
			}
		default:
			return
		}
	}
}
