package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/veldtec/tarstream/src/deliver"
)

func main() {
	app := &cli.App{
		Name:  "tarserv",
		Usage: "serve tar archive members over HTTP by streaming decode",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"i"},
				Value:   "/var/archives/",
				Usage:   "directory containing the .tar archives to serve",
			},
			&cli.StringFlag{
				Name:    "listen",
				Aliases: []string{"l"},
				Value:   "127.0.0.1:18123",
				Usage:   "IP:port to listen on",
			},
			&cli.StringFlag{
				Name:    "prefix",
				Aliases: []string{"p"},
				Value:   "/",
				Usage:   "request path prefix",
			},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "tarserv: %s\n", err)
		os.Exit(1)
	}
}

func newLogger() *zap.Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:     "timestamp",
		LevelKey:    "level",
		MessageKey:  "message",
		EncodeTime:  zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel: zapcore.LowercaseLevelEncoder,
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(os.Stderr),
		zapcore.InfoLevel,
	)
	return zap.New(core)
}

func run(c *cli.Context) error {
	logger := newLogger()
	defer func() { _ = logger.Sync() }()

	h := &deliver.TarHandler{
		ArchiveDirectory: c.String("dir"),
		Log:              logger,
	}
	mux := http.NewServeMux()
	mux.Handle(c.String("prefix"), http.StripPrefix(c.String("prefix"), h))

	logger.Info("starting",
		zap.String("listen", c.String("listen")),
		zap.String("dir", c.String("dir")))
	go func() {
		if err := http.ListenAndServe(c.String("listen"), mux); err != nil {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	<-sig
	logger.Info("stop")
	return nil
}
