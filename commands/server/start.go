package server

import (
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tendermint/tendermint/abci/server"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/iov-one/lockdrop/errors"
)

const (
	flagBind    = "bind"
	flagDebug   = "debug"
	flagMetrics = "metrics"
)

type startConfig struct {
	bind    string
	metrics string
	debug   bool
}

func parseFlags(args []string) (startConfig, error) {
	var conf startConfig
	startFlags := flag.NewFlagSet("start", flag.ContinueOnError)
	startFlags.StringVar(&conf.bind, flagBind, "tcp://localhost:26658", "address server listens on")
	startFlags.StringVar(&conf.metrics, flagMetrics, "", "address prometheus metrics are served on, disabled if empty")
	startFlags.BoolVar(&conf.debug, flagDebug, false, "call stack returned on error")
	if err := startFlags.Parse(args); err != nil {
		return conf, errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	if startFlags.NArg() != 0 {
		return conf, errors.Wrapf(errors.ErrInvalidInput, "unexpected arguments: %v", startFlags.Args())
	}
	return conf, nil
}

// AppGenerator lets us lazily initialize app, using home dir
// and logger potentially initialized with other flags
type AppGenerator func(string, log.Logger, bool) (abci.Application, error)

// StartCmd initializes the application, serves it over the ABCI socket and
// blocks until the process receives an interrupt.
func StartCmd(gen AppGenerator, logger log.Logger, home string, args []string) error {
	conf, err := parseFlags(args)
	if err != nil {
		return err
	}

	// Generate the app in the proper dir
	app, err := gen(home, logger, conf.debug)
	if err != nil {
		return err
	}

	if conf.metrics != "" {
		go serveMetrics(conf.metrics, logger)
	}

	logger.Info("Starting ABCI app", "bind", conf.bind)
	svr, err := server.NewServer(conf.bind, "socket", app)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	svr.SetLogger(logger.With("module", "abci-server"))
	if err := svr.Start(); err != nil {
		return errors.Wrap(errors.ErrInvalidState, err.Error())
	}

	// Wait for a termination signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	logger.Info("Stopping ABCI app")
	return svr.Stop()
}

func serveMetrics(addr string, logger log.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	logger.Info("Serving metrics", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("Metrics server failed", "err", err)
	}
}
