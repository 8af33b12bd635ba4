package scene

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/sceneling/sceneling/internal/llm"
	"github.com/sceneling/sceneling/internal/logging"
	"github.com/sceneling/sceneling/internal/observability"
	"github.com/sceneling/sceneling/internal/protocol"
	"github.com/sceneling/sceneling/internal/reliability"
)

// FailureMessage is shown to users when an analysis cannot be produced.
const FailureMessage = "图片分析失败，请重试"

const DefaultCEFRLevel = "B1"

var ErrNotImage = errors.New("content type is not an image")

var cefrLevels = map[string]bool{"A1": true, "A2": true, "B1": true, "B2": true, "C1": true, "C2": true}

// NormalizeCEFR upper-cases a CEFR level and falls back to B1 for unknown values.
func NormalizeCEFR(level string) string {
	level = strings.ToUpper(strings.TrimSpace(level))
	if !cefrLevels[level] {
		return DefaultCEFRLevel
	}
	return level
}

// Image is an uploaded photo.
type Image struct {
	Data        []byte
	ContentType string
}

func (img Image) Validate() error {
	if !strings.HasPrefix(strings.ToLower(img.ContentType), "image/") {
		return ErrNotImage
	}
	if len(img.Data) == 0 {
		return fmt.Errorf("empty image: %w", ErrNotImage)
	}
	return nil
}

func (img Image) dataURL() string {
	return "data:" + img.ContentType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

// Emitter delivers one event to the client and flushes it.
type Emitter interface {
	Send(event any) error
}

type Config struct {
	VisionModel string
	TextModel   string
}

// Analyzer runs scene analysis against a vision model for the photo and a
// text model for follow-up expressions.
type Analyzer struct {
	model   llm.ChatModel
	cfg     Config
	logger  *log.Logger
	metrics *observability.Metrics
}

func NewAnalyzer(model llm.ChatModel, cfg Config, logger *log.Logger, metrics *observability.Metrics) *Analyzer {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Analyzer{model: model, cfg: cfg, logger: logger.With("component", "scene"), metrics: metrics}
}

// Analyze produces the complete analysis with a single vision call.
func (a *Analyzer) Analyze(ctx context.Context, img Image, cefr string) (*Analysis, error) {
	var out Analysis
	if err := a.vision(ctx, llm.PurposeSceneFull, img, fmt.Sprintf(analyzePrompt, NormalizeCEFR(cefr)), &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.SceneTag) == "" {
		return nil, fmt.Errorf("analysis without scene_tag: %w", reliability.ErrMalformedResponse)
	}
	return &out, nil
}

// AnalyzeBasic produces scene tag, objects, description and category.
func (a *Analyzer) AnalyzeBasic(ctx context.Context, img Image, cefr string) (*Basic, error) {
	start := time.Now()
	var out Basic
	err := a.vision(ctx, llm.PurposeSceneBasic, img, fmt.Sprintf(basicPrompt, NormalizeCEFR(cefr)), &out)
	a.metrics.ObserveStage("scene_basic", time.Since(start))
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.SceneTag) == "" {
		return nil, fmt.Errorf("basic analysis without scene_tag: %w", reliability.ErrMalformedResponse)
	}
	return &out, nil
}

// GenerateExpressions asks the text model for role-based example sentences.
func (a *Analyzer) GenerateExpressions(ctx context.Context, basic *Basic, cefr string) (*Expressions, error) {
	start := time.Now()
	defer func() { a.metrics.ObserveStage("scene_expressions", time.Since(start)) }()

	prompt := fmt.Sprintf(expressionsPrompt,
		basic.SceneTag, basic.SceneTagCN, basic.Category, basic.Description.EN, NormalizeCEFR(cefr))
	text, err := a.model.Complete(ctx, llm.Request{
		Purpose:  llm.PurposeSceneExpressions,
		Model:    a.cfg.TextModel,
		Messages: []llm.Message{{Role: llm.RoleUser, Content: prompt}},
	})
	if err != nil {
		a.metrics.ObserveProviderError("scene_expressions", reliability.Code(err))
		return nil, fmt.Errorf("generate expressions: %w", err)
	}
	var out Expressions
	if err := llm.DecodeJSONObject(text, &out); err != nil {
		a.metrics.ObserveProviderError("scene_expressions", reliability.Code(err))
		return nil, err
	}
	if len(out.Roles) == 0 {
		return nil, fmt.Errorf("expressions without roles: %w", reliability.ErrEmptyResult)
	}
	return &out, nil
}

// Stream runs the two-phase analysis: basic, then expressions, then done.
// A failed first phase emits a single error event. A failed second phase is
// logged and the stream still ends with done.
func (a *Analyzer) Stream(ctx context.Context, img Image, cefr string, emit Emitter) error {
	ctx, span := observability.Tracer().Start(ctx, "scene.stream")
	defer span.End()
	span.SetAttributes(attribute.Int("image.bytes", len(img.Data)), attribute.String("cefr", NormalizeCEFR(cefr)))

	send := func(ev any) error {
		if err := emit.Send(ev); err != nil {
			return err
		}
		if t, ok := protocol.TypeOf(ev); ok {
			a.metrics.ObserveSSEEvent("scene", string(t))
		}
		return nil
	}

	basic, err := a.AnalyzeBasic(ctx, img, cefr)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, reliability.Code(err))
		a.logger.Warn("basic analysis failed", "code", reliability.Code(err), "err", err)
		return send(protocol.NewSceneError(FailureMessage))
	}
	if err := send(protocol.NewBasic(basic)); err != nil {
		return err
	}

	expressions, err := a.GenerateExpressions(ctx, basic, cefr)
	switch {
	case err == nil:
		if err := send(protocol.NewExpressions(ExpressionsPayload{Expressions: *expressions})); err != nil {
			return err
		}
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		a.logger.Warn("expression generation failed", "scene_tag", basic.SceneTag, "code", reliability.Code(err), "err", err)
	}

	return send(protocol.NewDone())
}

func (a *Analyzer) vision(ctx context.Context, purpose llm.Purpose, img Image, prompt string, out any) error {
	if err := img.Validate(); err != nil {
		return err
	}
	text, err := a.model.Complete(ctx, llm.Request{
		Purpose: purpose,
		Model:   a.cfg.VisionModel,
		Messages: []llm.Message{{
			Role:    llm.RoleUser,
			Content: prompt,
			Images:  []string{img.dataURL()},
		}},
	})
	if err != nil {
		a.metrics.ObserveProviderError(string(purpose), reliability.Code(err))
		return fmt.Errorf("vision call: %w", err)
	}
	if err := llm.DecodeJSONObject(text, out); err != nil {
		a.metrics.ObserveProviderError(string(purpose), reliability.Code(err))
		return err
	}
	return nil
}
