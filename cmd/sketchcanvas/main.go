package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/chzyer/readline"

	"github.com/sipeed/sketchcanvas/pkg/bus"
	"github.com/sipeed/sketchcanvas/pkg/config"
	"github.com/sipeed/sketchcanvas/pkg/converter"
	"github.com/sipeed/sketchcanvas/pkg/inbox"
	"github.com/sipeed/sketchcanvas/pkg/logger"
	"github.com/sipeed/sketchcanvas/pkg/metrics"
	"github.com/sipeed/sketchcanvas/pkg/prompt"
	"github.com/sipeed/sketchcanvas/pkg/providers"
	"github.com/sipeed/sketchcanvas/pkg/server"
	"github.com/sipeed/sketchcanvas/pkg/vault"
)

const usage = `Usage: sketchcanvas <command> [options]

Commands:
  convert [-mode m] [-name n] [-example img -example-canvas file] image.png
  serve   run the HTTP API and the inbox sweep
  shell   convert sketches interactively`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "convert":
		err = convertCmd(ctx, os.Args[2:])
	case "serve":
		err = serveCmd(ctx)
	case "shell":
		err = shellCmd(ctx)
	case "help", "-h", "--help":
		fmt.Println(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n%s\n", os.Args[1], usage)
		os.Exit(2)
	}

	if err != nil {
		logger.ErrorCF("main", "Exiting on error", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
}

func setup() (*config.Config, *converter.Converter, *vault.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	logger.SetLevel(logger.ParseLevel(cfg.LogLevel))
	if cfg.LogJSON {
		logger.SetOutput(os.Stderr, true)
	}

	store, err := vault.NewStore(cfg.VaultDir)
	if err != nil {
		return nil, nil, nil, err
	}
	provider, err := providers.NewProvider(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	var tracker *metrics.Tracker
	if ws := cfg.MetricsWorkspace(); ws != "" {
		if tracker, err = metrics.NewTracker(ws); err != nil {
			logger.WarnCF("main", "Usage metrics disabled", map[string]interface{}{"error": err.Error()})
		}
	}

	return cfg, converter.New(provider, store, tracker, cfg.Model, cfg.MaxTokens), store, nil
}

func printUpdate(u bus.StatusUpdate) {
	fmt.Printf("[%s] %s\n", u.Status, u.Message)
}

func convertCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	mode := fs.String("mode", "default", "system prompt: default, cannoli or variables")
	name := fs.String("name", "", "canvas name in the vault (default: image file name)")
	example := fs.String("example", "", "example sketch for a few-shot request")
	exampleCanvas := fs.String("example-canvas", "", "canvas file answering the example sketch")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("convert needs exactly one image path")
	}
	if (*example == "") != (*exampleCanvas == "") {
		return errors.New("-example and -example-canvas must be used together")
	}

	_, conv, _, err := setup()
	if err != nil {
		return err
	}

	job := converter.Job{
		Name:        *name,
		Mode:        prompt.ParseMode(*mode),
		ImagePath:   fs.Arg(0),
		ExamplePath: *example,
	}
	if job.Name == "" {
		job.Name = strings.TrimSuffix(filepath.Base(job.ImagePath), filepath.Ext(job.ImagePath))
	}
	if *exampleCanvas != "" {
		data, err := os.ReadFile(*exampleCanvas)
		if err != nil {
			return fmt.Errorf("reading example canvas: %w", err)
		}
		job.ExampleCanvas = strings.TrimSpace(string(data))
	}

	res, err := conv.Convert(ctx, job, printUpdate)
	if err != nil {
		return err
	}
	fmt.Println(res.Path)
	return nil
}

func serveCmd(ctx context.Context) error {
	cfg, conv, store, err := setup()
	if err != nil {
		return err
	}

	errCh := make(chan error, 2)
	go func() {
		errCh <- server.New(conv).ListenAndServe(ctx, cfg.ListenAddr)
	}()

	workers := 1
	if cfg.InboxDir != "" {
		dir := cfg.InboxDir
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(store.Dir(), dir)
		}
		in, err := inbox.New(dir, cfg.InboxSchedule, prompt.ModeDefault, conv)
		if err != nil {
			return err
		}
		workers++
		go func() { errCh <- in.Run(ctx) }()
	}

	for i := 0; i < workers; i++ {
		if err := <-errCh; err != nil {
			return err
		}
	}
	logger.Info("shutdown complete")
	return nil
}

func shellCmd(ctx context.Context) error {
	_, conv, store, err := setup()
	if err != nil {
		return err
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "sketch> ",
		HistoryFile:     filepath.Join(os.TempDir(), ".sketchcanvas_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("starting shell: %w", err)
	}
	defer rl.Close()

	fmt.Printf("Vault: %s\nEnter an image path, optionally followed by a mode. Ctrl-D quits.\n", store.Dir())
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		job := converter.Job{
			Name:      strings.TrimSuffix(filepath.Base(fields[0]), filepath.Ext(fields[0])),
			ImagePath: fields[0],
		}
		if len(fields) > 1 {
			job.Mode = prompt.ParseMode(fields[1])
		}
		if res, err := conv.Convert(ctx, job, printUpdate); err == nil {
			fmt.Println(res.Path)
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}
