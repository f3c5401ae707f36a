package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	logger "github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"signalexecutor/src/catalog"
	"signalexecutor/src/config"
	"signalexecutor/src/connectors"
	"signalexecutor/src/controller"
	"signalexecutor/src/executors"
	"signalexecutor/src/handler"
	"signalexecutor/src/server"
)

var Version string

func SetupLogger() {
	levelStr := strings.ToLower(os.Getenv("LOG_LEVEL"))

	level, err := logger.ParseLevel(levelStr)
	if err != nil {
		level = logger.InfoLevel
	}

	logger.SetLevel(level)
	logger.SetFormatter(&logger.TextFormatter{
		FullTimestamp: true,
	})
}

func main() {
	app := cli.NewApp()
	app.Name = "Signal Executor"
	app.Usage = "Webhook trade signal to MEXC futures order bridge"
	app.Version = Version

	app.Commands = []cli.Command{
		serveCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var serveCMD = cli.Command{
	Name:        "serve",
	Usage:       "run the webhook server",
	Action:      serveAction,
	ArgsUsage:   "",
	Flags:       []cli.Flag{},
	Description: `Run the webhook HTTP server and order pipeline`,
}

func serveAction(_ *cli.Context) error {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	SetupLogger()
	defer handlePanic()

	cfg, err := config.GetConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	client := connectors.NewClient(cfg)

	bootCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := client.SyncClock(bootCtx); err != nil {
		logger.WithError(err).Warn("Server clock sync failed, signing with local time")
	}

	instruments := catalog.NewCatalog(client)
	if err := instruments.Refresh(bootCtx); err != nil {
		logger.WithError(err).Warn("Startup catalog load failed, starting degraded; resolution retries lazily")
	}

	orders := controller.NewOrderController(cfg, client, instruments)

	var dispatcher *executors.Dispatcher
	if cfg.AsyncExecution {
		dispatcher = executors.NewDispatcher(orders, cfg.QueueSize, cfg.WorkerCount)
		dispatchCtx, stopWorkers := context.WithCancel(context.Background())
		defer stopWorkers()
		dispatcher.Start(dispatchCtx)
	}

	webhook := handler.WebhookHandler(orders, dispatcher, cfg.AsyncExecution, cfg.UseTestnet)

	server.StartServer(cfg.Port, webhook)
	return nil
}

func handlePanic() {
	if r := recover(); r != nil {
		logger.WithError(fmt.Errorf("%+v", r)).Error("Application panic")
	}
	//nolint
	time.Sleep(time.Second * 5)
}
