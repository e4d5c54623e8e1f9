package clients

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
	"github.com/spacesedan/reviewpulse/config"
	"github.com/spacesedan/reviewpulse/internal/models"
)

// HugotClassifier runs a text classification model in process. The model is
// downloaded into ModelDir on first use.
type HugotClassifier struct {
	session  *hugot.Session
	pipeline *pipelines.TextClassificationPipeline
	mu       sync.Mutex
}

func NewHugotClassifier(cfg config.HugotConfig) (*HugotClassifier, error) {
	modelPath, err := ensureModel(cfg)
	if err != nil {
		return nil, err
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("[HugotClassifier] failed to initialize session: %w", err)
	}

	pipeline, err := hugot.NewPipeline(session, hugot.TextClassificationConfig{
		ModelPath:    modelPath,
		Name:         "reviewSentimentPipeline",
		OnnxFilename: filepath.Base(cfg.OnnxFile),
		Options: []hugot.TextClassificationOption{
			pipelines.WithSoftmax(),
		},
	})
	if err != nil {
		_ = session.Destroy()
		return nil, fmt.Errorf("[HugotClassifier] failed to initialize pipeline: %w", err)
	}

	slog.Info("[HugotClassifier] Pipeline ready", slog.String("model", cfg.ModelName))
	return &HugotClassifier{session: session, pipeline: pipeline}, nil
}

func ensureModel(cfg config.HugotConfig) (string, error) {
	if err := os.MkdirAll(cfg.ModelDir, os.ModePerm); err != nil {
		return "", fmt.Errorf("[HugotClassifier] failed to create model directory: %w", err)
	}

	modelPath := filepath.Join(cfg.ModelDir, strings.ReplaceAll(cfg.ModelName, "/", "_"))
	if _, err := os.Stat(filepath.Join(modelPath, cfg.OnnxFile)); err == nil {
		slog.Info("[HugotClassifier] Using existing model", slog.String("path", modelPath))
		return modelPath, nil
	}

	slog.Info("[HugotClassifier] Model not found, downloading...", slog.String("model", cfg.ModelName))
	opts := hugot.NewDownloadOptions()
	opts.OnnxFilePath = cfg.OnnxFile
	downloaded, err := hugot.DownloadModel(cfg.ModelName, cfg.ModelDir, opts)
	if err != nil {
		return "", fmt.Errorf("[HugotClassifier] failed to download model: %w", err)
	}
	slog.Info("[HugotClassifier] Model downloaded successfully", slog.String("path", downloaded))
	return downloaded, nil
}

// ClassifyGeneral returns the top label of the model for text.
func (h *HugotClassifier) ClassifyGeneral(ctx context.Context, text string) (models.Prediction, error) {
	if err := ctx.Err(); err != nil {
		return models.Prediction{}, err
	}

	// pipelines are not safe for concurrent runs
	h.mu.Lock()
	output, err := h.pipeline.RunPipeline([]string{text})
	h.mu.Unlock()
	if err != nil {
		return models.Prediction{}, fmt.Errorf("hugot pipeline failed: %w", err)
	}

	return topClassification(output)
}

func topClassification(output *pipelines.TextClassificationOutput) (models.Prediction, error) {
	if output == nil || len(output.ClassificationOutputs) == 0 || len(output.ClassificationOutputs[0]) == 0 {
		return models.Prediction{}, errors.New("hugot pipeline returned no classification")
	}

	best := output.ClassificationOutputs[0][0]
	for _, c := range output.ClassificationOutputs[0][1:] {
		if c.Score > best.Score {
			best = c
		}
	}
	return models.Prediction{Label: best.Label, Score: float64(best.Score)}, nil
}

func (h *HugotClassifier) Close() {
	if err := h.session.Destroy(); err != nil {
		slog.Warn("[HugotClassifier] Failed to destroy session", slog.String("error", err.Error()))
	}
}
