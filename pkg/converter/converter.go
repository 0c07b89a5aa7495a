package converter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sipeed/sketchcanvas/pkg/bus"
	"github.com/sipeed/sketchcanvas/pkg/canvas"
	"github.com/sipeed/sketchcanvas/pkg/logger"
	"github.com/sipeed/sketchcanvas/pkg/media"
	"github.com/sipeed/sketchcanvas/pkg/metrics"
	"github.com/sipeed/sketchcanvas/pkg/prompt"
	"github.com/sipeed/sketchcanvas/pkg/providers"
	"github.com/sipeed/sketchcanvas/pkg/vault"
)

var ErrNoImage = errors.New("no image given")

// Job describes one sketch to convert. The image comes from ImageData
// (base64, a PNG data URL prefix is allowed) or, when that is empty, from
// ImagePath. ExamplePath and ExampleCanvas switch to a few-shot request.
type Job struct {
	ID            string
	Name          string
	Mode          prompt.Mode
	ImageData     string
	ImagePath     string
	ExamplePath   string
	ExampleCanvas string
}

type Result struct {
	JobID    string
	Path     string
	Canvas   *canvas.Canvas
	Problems []string
}

// EmitFunc receives progress updates. It may be nil.
type EmitFunc func(bus.StatusUpdate)

type Converter struct {
	provider  providers.LLMProvider
	store     *vault.Store
	tracker   *metrics.Tracker
	model     string
	maxTokens int64
}

// New creates a converter. tracker may be nil; an empty model uses the
// provider default.
func New(provider providers.LLMProvider, store *vault.Store, tracker *metrics.Tracker, model string, maxTokens int64) *Converter {
	if model == "" {
		model = provider.GetDefaultModel()
	}
	return &Converter{
		provider:  provider,
		store:     store,
		tracker:   tracker,
		model:     model,
		maxTokens: maxTokens,
	}
}

// Convert sends the sketch to the model, parses the canvas out of the answer
// and saves it into the vault. Every failure is also emitted as an error
// update before being returned.
func (c *Converter) Convert(ctx context.Context, job Job, emit EmitFunc) (*Result, error) {
	if emit == nil {
		emit = func(bus.StatusUpdate) {}
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Mode == "" {
		job.Mode = prompt.ModeDefault
	}

	res, err := c.convert(ctx, job, emit)
	if err != nil {
		logger.ErrorCF("converter", "Conversion failed", map[string]interface{}{
			"job":   job.ID,
			"error": err.Error(),
		})
		emit(bus.Failure(err))
		return nil, err
	}
	emit(bus.Success("Canvas saved successfully"))
	return res, nil
}

func (c *Converter) convert(ctx context.Context, job Job, emit EmitFunc) (*Result, error) {
	emit(bus.Running("Processing image..."))

	messages, err := buildMessages(job)
	if err != nil {
		return nil, err
	}

	logger.InfoCF("converter", "Converting sketch", map[string]interface{}{
		"job":      job.ID,
		"name":     job.Name,
		"mode":     string(job.Mode),
		"few_shot": len(messages) > 1,
	})

	start := time.Now()
	completion, err := c.provider.Complete(ctx, providers.Request{
		System:    prompt.SystemPrompt(job.Mode),
		Messages:  messages,
		Model:     c.model,
		MaxTokens: c.maxTokens,
	})
	if err != nil {
		return nil, err
	}

	cv, parseErr := canvas.FromResponse(completion.Response)
	c.record(job, completion, start, parseErr)
	if parseErr != nil {
		return nil, parseErr
	}

	problems := cv.Validate()
	if len(problems) > 0 {
		logger.WarnCF("converter", "Canvas has dangling edges", map[string]interface{}{
			"job":      job.ID,
			"problems": problems,
		})
	}

	emit(bus.Running("Saving canvas..."))
	path, err := c.store.Save(job.Name, cv)
	if err != nil {
		return nil, fmt.Errorf("saving canvas: %w", err)
	}

	logger.InfoCF("converter", "Canvas saved", map[string]interface{}{
		"job":   job.ID,
		"path":  path,
		"nodes": len(cv.Nodes),
		"edges": len(cv.Edges),
	})

	return &Result{JobID: job.ID, Path: path, Canvas: cv, Problems: problems}, nil
}

func buildMessages(job Job) (prompt.MessageList, error) {
	image := strings.TrimSpace(media.StripDataURL(job.ImageData))
	if image == "" {
		if job.ImagePath == "" {
			return nil, ErrNoImage
		}
		encoded, err := media.EncodeImage(job.ImagePath)
		if err != nil {
			return nil, err
		}
		image = encoded
	}

	if job.ExamplePath == "" {
		return prompt.BuildEncodedMessageList(image, prompt.DefaultUserPrompt), nil
	}
	example, err := media.EncodeImage(job.ExamplePath)
	if err != nil {
		return nil, fmt.Errorf("example sketch: %w", err)
	}
	return prompt.BuildEncodedFewShotMessageList(image, example, job.ExampleCanvas), nil
}

func (c *Converter) record(job Job, completion *providers.Completion, start time.Time, parseErr error) {
	status := string(bus.StatusSuccess)
	if parseErr != nil {
		status = string(bus.StatusError)
	}
	model := completion.Model
	if model == "" {
		model = c.model
	}
	err := c.tracker.Record(metrics.UsageEvent{
		JobID:        job.ID,
		Canvas:       job.Name,
		Mode:         string(job.Mode),
		Model:        model,
		InputTokens:  completion.InputTokens,
		OutputTokens: completion.OutputTokens,
		Status:       status,
		DurationMS:   time.Since(start).Milliseconds(),
	})
	if err != nil {
		logger.WarnCF("converter", "Failed to record usage", map[string]interface{}{"error": err.Error()})
	}
}
