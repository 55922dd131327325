package main

import (
	"bufio"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ngoyal88/quip/pkg/config"
	"github.com/ngoyal88/quip/pkg/intercept"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Annotate log lines read from stdin",
	Long: `run echoes every line read from stdin and follows a share of them
(humor.frequency percent) with an annotation line. The config file is
watched and changes apply without a restart.`,
	Example: "  go test ./... 2>&1 | quip run",
	RunE:    runAnnotate,
}

func hookOptions(cfg config.Config) intercept.Options {
	return intercept.Options{
		Enabled:   cfg.Humor.Enabled,
		Frequency: cfg.Humor.Frequency,
	}
}

func runAnnotate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	printer := intercept.WriterPrinter(cmd.OutOrStdout())
	hook := intercept.New(&printer, a.engine, hookOptions(cfg),
		intercept.WithLogger(component("intercept")),
		intercept.WithContext(ctx),
	)
	hook.Install()
	defer hook.Uninstall()

	logger := component("config")
	if _, err := config.LoadAndWatch(cfgFile, func(next config.Config) {
		if err := a.engine.Reconfigure(next); err != nil {
			logger.Error().Err(err).Msg("reconfigure failed")
			return
		}
		hook.SetOptions(hookOptions(next))
	}); err != nil {
		logger.Warn().Err(err).Msg("config hot reload disabled")
	}

	a.serve()
	a.janitor(ctx, cfg.Cache.MaxAge)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(cmd.InOrStdin())
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case line, ok := <-lines:
			if !ok {
				break loop
			}
			printer(line)
		}
	}

	hook.Wait()
	return a.close()
}
