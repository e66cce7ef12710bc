// Command schedsim runs a scheduling simulation described by a configuration
// file located in the input directory.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/viant/afs"
	"github.com/viant/afs/url"
	"github.com/viant/schedsim"
	"github.com/viant/schedsim/internal/location"
)

// ConfigEnv names an optional YAML file with engine settings
const ConfigEnv = "SCHEDSIM_CONFIG"

type missingConfigError struct {
	path string
}

func (e *missingConfigError) Error() string {
	return "Cannot find configure file at " + e.path
}

func main() {
	if len(os.Args) != 2 {
		fmt.Println("Usage: schedsim [path to configure file]")
		os.Exit(1)
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	if err := run(ctx, os.Args[1]); err != nil {
		var missing *missingConfigError
		if errors.As(err, &missing) {
			fmt.Println(missing.Error())
		} else {
			log.Print(err)
		}
		cancel()
		os.Exit(1)
	}
}

func run(ctx context.Context, name string) error {
	fs := afs.New()
	config := schedsim.DefaultConfig()
	if URL := os.Getenv(ConfigEnv); URL != "" {
		var err error
		if config, err = schedsim.LoadConfig(ctx, fs, URL); err != nil {
			return err
		}
	}
	simulationURL := name
	if url.IsRelative(name) {
		simulationURL = url.Join(config.Storage.InputDir, name)
	}
	if ok, _ := fs.Exists(ctx, location.Resolve(simulationURL)); !ok {
		return &missingConfigError{path: simulationURL}
	}
	srv, err := schedsim.New(schedsim.WithConfig(config), schedsim.WithFs(fs))
	if err != nil {
		return err
	}
	sim, err := srv.LoadSimulation(ctx, simulationURL)
	if err != nil {
		return err
	}
	_, err = srv.Runtime().Run(ctx, sim)
	return err
}
