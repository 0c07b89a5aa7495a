// Package inbox converts sketches dropped into a vault folder on a cron
// schedule.
package inbox

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/adhocore/gronx"

	"github.com/sipeed/sketchcanvas/pkg/converter"
	"github.com/sipeed/sketchcanvas/pkg/logger"
	"github.com/sipeed/sketchcanvas/pkg/prompt"
)

const (
	doneDir   = "done"
	failedDir = "failed"
)

type Converter interface {
	Convert(ctx context.Context, job converter.Job, emit converter.EmitFunc) (*converter.Result, error)
}

// Inbox picks up *.png files from dir. Converted files move to dir/done,
// files that failed to convert move to dir/failed so they are not retried on
// every sweep. A conversion cut short by cancellation leaves its file in dir.
type Inbox struct {
	dir      string
	schedule string
	mode     prompt.Mode
	conv     Converter
}

func New(dir, schedule string, mode prompt.Mode, conv Converter) (*Inbox, error) {
	gron := gronx.New()
	if !gron.IsValid(schedule) {
		return nil, fmt.Errorf("invalid inbox schedule %q", schedule)
	}
	for _, sub := range []string{doneDir, failedDir} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0755); err != nil {
			return nil, fmt.Errorf("create inbox dir: %w", err)
		}
	}
	return &Inbox{dir: dir, schedule: schedule, mode: mode, conv: conv}, nil
}

// Run sweeps at every schedule tick until ctx is cancelled.
func (in *Inbox) Run(ctx context.Context) error {
	logger.InfoCF("inbox", "Watching inbox", map[string]interface{}{
		"dir":      in.dir,
		"schedule": in.schedule,
	})
	for {
		next, err := gronx.NextTickAfter(in.schedule, time.Now(), false)
		if err != nil {
			return fmt.Errorf("next inbox tick: %w", err)
		}

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}

		if _, err := in.Sweep(ctx); err != nil {
			logger.ErrorCF("inbox", "Sweep failed", map[string]interface{}{"error": err.Error()})
		}
	}
}

// Sweep converts every pending sketch once and returns how many succeeded.
func (in *Inbox) Sweep(ctx context.Context) (int, error) {
	pending, err := in.pending()
	if err != nil {
		return 0, err
	}

	converted := 0
	for _, path := range pending {
		if ctx.Err() != nil {
			return converted, ctx.Err()
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

		dest := doneDir
		if _, err := in.conv.Convert(ctx, converter.Job{Name: name, Mode: in.mode, ImagePath: path}, nil); err != nil {
			if ctx.Err() != nil {
				// Interrupted, not failed: the sketch stays for the next sweep.
				return converted, ctx.Err()
			}
			logger.WarnCF("inbox", "Sketch not converted", map[string]interface{}{
				"file":  path,
				"error": err.Error(),
			})
			dest = failedDir
		} else {
			converted++
		}

		if err := os.Rename(path, filepath.Join(in.dir, dest, filepath.Base(path))); err != nil {
			return converted, fmt.Errorf("move %s: %w", path, err)
		}
	}
	return converted, nil
}

func (in *Inbox) pending() ([]string, error) {
	entries, err := os.ReadDir(in.dir)
	if err != nil {
		return nil, fmt.Errorf("read inbox: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".png") {
			continue
		}
		files = append(files, filepath.Join(in.dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}
