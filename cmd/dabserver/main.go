// Command dabserver runs the dots-and-boxes decision engine API server.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/dabengine/pkg/api"
	"github.com/yourusername/dabengine/pkg/engine"
)

const version = "0.1.0"

func main() {
	host := flag.String("host", "localhost", "Host to bind to (use 0.0.0.0 for all interfaces)")
	port := flag.Int("port", 5000, "Port to listen on")
	configFile := flag.String("config", "", "Path to YAML server config (flags override)")
	tablePath := flag.String("qtable", "q_table.json", "Path to the persisted Q-table")
	alpha := flag.Float64("alpha", engine.DefaultLearningRate, "Learning rate")
	gamma := flag.Float64("gamma", engine.DefaultDiscountFactor, "Discount factor")
	epsilon := flag.Float64("epsilon", engine.DefaultExploration, "Starting exploration rate")
	decay := flag.Float64("decay", engine.DefaultExplorationDecay, "Exploration decay per decision")
	minEpsilon := flag.Float64("min-epsilon", engine.DefaultMinExploration, "Exploration rate floor")
	saveSampling := flag.Float64("save-sampling", engine.DefaultSaveSampling, "Probability of persisting after an update")
	seed := flag.Uint64("seed", 0, "Random seed (0 = fixed default)")
	readTimeout := flag.Duration("read-timeout", 30*time.Second, "HTTP read timeout")
	writeTimeout := flag.Duration("write-timeout", 30*time.Second, "HTTP write timeout")
	pretty := flag.Bool("pretty-logs", false, "Human-readable console logging")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Parse()

	if *showVersion {
		fmt.Printf("dabserver v%s\n", version)
		os.Exit(0)
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if *pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	config := api.DefaultConfig()
	if *configFile != "" {
		loaded, err := api.LoadConfig(*configFile)
		if err != nil {
			log.Fatal().Err(err).Str("path", *configFile).Msg("failed to load config")
		}
		config = loaded
	}

	// Flags override the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "host":
			config.Host = *host
		case "port":
			config.Port = *port
		case "read-timeout":
			config.ReadTimeout = *readTimeout
		case "write-timeout":
			config.WriteTimeout = *writeTimeout
		}
	})
	if *configFile == "" {
		config.Host = *host
		config.Port = *port
		config.ReadTimeout = *readTimeout
		config.WriteTimeout = *writeTimeout
	}

	eng := engine.NewEngine(engine.Options{
		TablePath:        *tablePath,
		LearningRate:     *alpha,
		DiscountFactor:   *gamma,
		Exploration:      *epsilon,
		ExplorationDecay: *decay,
		MinExploration:   *minEpsilon,
		SaveSampling:     *saveSampling,
		Seed:             *seed,
	})

	server := api.NewServer(eng, config, version)

	err := server.ListenAndServeWithGracefulShutdown()

	// Persist whatever the sampled schedule has not written yet.
	if closeErr := eng.Close(); closeErr != nil {
		log.Error().Err(closeErr).Msg("final q-table save failed")
	}

	if err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
