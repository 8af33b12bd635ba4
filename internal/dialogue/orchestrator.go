// Package dialogue runs chat turns and emits their results as ordered events.
package dialogue

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/sceneling/sceneling/internal/llm"
	"github.com/sceneling/sceneling/internal/logging"
	"github.com/sceneling/sceneling/internal/observability"
	"github.com/sceneling/sceneling/internal/protocol"
	"github.com/sceneling/sceneling/internal/reliability"
	"github.com/sceneling/sceneling/internal/transcript"
)

// State is a step of a streamed turn.
type State string

const (
	StateGenerating    State = "generating"
	StateFinalizing    State = "finalizing"
	StateEmittingAudio State = "emitting_audio"
	StateDone          State = "done"
	StateErrored       State = "errored"
	// StateCanceled ends a turn whose request went away; nothing more is emitted.
	StateCanceled State = "canceled"
)

const (
	defaultVoice       = "en-US-female"
	transcriptSaveTime = 2 * time.Second

	remoteFailureReply  = "Sorry, I couldn't process your message. (抱歉，我无法处理您的消息。)"
	genericFailureReply = "Sorry, something went wrong. (抱歉，出了点问题。)"
)

// Emitter delivers one event to the client and flushes it.
type Emitter interface {
	Send(event any) error
}

// Speaker turns text into a playable audio URL. ok=false means no audio.
type Speaker interface {
	Speak(ctx context.Context, text, voice string) (string, bool)
}

// Turn is one user message plus the context it is answered in.
type Turn struct {
	Message        string
	History        []HistoryMessage
	Scene          *Scene
	ConversationID string
}

type Config struct {
	// Model is the chat model name passed to the provider.
	Model string
	// Voice is the caller-facing voice for reply audio.
	Voice string
}

type Orchestrator struct {
	model       llm.ChatModel
	speaker     Speaker
	transcripts transcript.Store
	cfg         Config
	logger      *log.Logger
	metrics     *observability.Metrics
	saves       sync.WaitGroup
}

func NewOrchestrator(model llm.ChatModel, speaker Speaker, transcripts transcript.Store, cfg Config, logger *log.Logger, metrics *observability.Metrics) *Orchestrator {
	if strings.TrimSpace(cfg.Voice) == "" {
		cfg.Voice = defaultVoice
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Orchestrator{
		model:       model,
		speaker:     speaker,
		transcripts: transcripts,
		cfg:         cfg,
		logger:      logger.With("component", "dialogue"),
		metrics:     metrics,
	}
}

// Stream runs one turn and emits text_full, audio and done, or a single
// error event. It returns the terminal state and any transport error.
func (o *Orchestrator) Stream(ctx context.Context, turn Turn, stream string, emit Emitter) (State, error) {
	turnID := uuid.NewString()
	start := time.Now()
	ctx, span := observability.Tracer().Start(ctx, "dialogue.turn")
	defer span.End()
	span.SetAttributes(
		attribute.String("turn.id", turnID),
		attribute.String("turn.stream", stream),
		attribute.Bool("turn.scene", turn.Scene != nil),
		attribute.Int("turn.history", len(turn.History)),
	)
	logger := o.logger.With("turn_id", turnID, "stream", stream)

	send := func(ev any) error {
		if err := emit.Send(ev); err != nil {
			return err
		}
		if t, ok := protocol.TypeOf(ev); ok {
			o.metrics.ObserveSSEEvent(stream, string(t))
		}
		return nil
	}

	state := StateGenerating
	enter := func(next State) {
		state = next
		span.AddEvent(string(next))
	}

	reply, err := o.complete(ctx, turn)
	if err != nil {
		enter(StateErrored)
		span.RecordError(err)
		span.SetStatus(codes.Error, reliability.Code(err))
		logger.Warn("chat completion failed", "code", reliability.Code(err), "err", err)
		return state, send(protocol.NewChatError(errorDetail(err)))
	}

	enter(StateFinalizing)
	if reply != "" {
		if err := send(protocol.NewTextFull(reply)); err != nil {
			return StateCanceled, err
		}

		if segment := ExtractSpeakable(reply); speakable(segment) && o.speaker != nil {
			enter(StateEmittingAudio)
			audioStart := time.Now()
			url, ok := o.speaker.Speak(ctx, segment, o.cfg.Voice)
			span.SetAttributes(attribute.Bool("turn.audio", ok))
			if ctx.Err() != nil {
				logger.Debug("turn canceled during synthesis", "elapsed", time.Since(audioStart))
				return StateCanceled, ctx.Err()
			}
			if ok {
				if err := send(protocol.NewAudio(url, segment)); err != nil {
					return StateCanceled, err
				}
			} else {
				logger.Info("reply audio skipped", "chars", len(segment))
			}
		}
	}

	if err := send(protocol.NewDone()); err != nil {
		return StateCanceled, err
	}
	enter(StateDone)
	o.metrics.ObserveStage("turn_total", time.Since(start))
	o.saveTurnBestEffort(turn, turnID, reply)
	logger.Debug("turn complete", "state", state, "elapsed", time.Since(start))
	return state, nil
}

// Reply runs one turn without streaming. Model failures resolve to a
// bilingual apology instead of an error.
func (o *Orchestrator) Reply(ctx context.Context, turn Turn) string {
	turnID := uuid.NewString()
	reply, err := o.complete(ctx, turn)
	if err != nil {
		o.logger.Warn("chat completion failed", "turn_id", turnID, "code", reliability.Code(err), "err", err)
		var remote *reliability.RemoteError
		if errors.As(err, &remote) {
			return remoteFailureReply
		}
		return genericFailureReply
	}
	o.saveTurnBestEffort(turn, turnID, reply)
	return reply
}

// Wait blocks until pending transcript saves finish.
func (o *Orchestrator) Wait() {
	o.saves.Wait()
}

func (o *Orchestrator) complete(ctx context.Context, turn Turn) (string, error) {
	start := time.Now()
	reply, err := o.model.Complete(ctx, llm.Request{
		Purpose:  llm.PurposeChat,
		Model:    o.cfg.Model,
		Messages: BuildMessages(turn.Scene, turn.History, turn.Message),
	})
	o.metrics.ObserveChat(time.Since(start))
	if err != nil {
		o.metrics.ObserveProviderError("chat", reliability.Code(err))
		return "", err
	}
	return reply, nil
}

func errorDetail(err error) string {
	var remote *reliability.RemoteError
	if errors.As(err, &remote) {
		return "API error: " + remote.Message
	}
	return err.Error()
}

func (o *Orchestrator) saveTurnBestEffort(turn Turn, turnID, reply string) {
	if o.transcripts == nil || strings.TrimSpace(turn.ConversationID) == "" {
		return
	}
	sceneTag := ""
	if turn.Scene != nil {
		sceneTag = turn.Scene.Tag
	}
	now := time.Now().UTC()
	records := []transcript.TurnRecord{{
		ConversationID: turn.ConversationID,
		TurnID:         turnID,
		Role:           transcript.RoleUser,
		Content:        turn.Message,
		SceneTag:       sceneTag,
		CreatedAt:      now,
	}}
	if reply != "" {
		records = append(records, transcript.TurnRecord{
			ConversationID: turn.ConversationID,
			TurnID:         turnID,
			Role:           transcript.RoleAssistant,
			Content:        reply,
			SceneTag:       sceneTag,
			CreatedAt:      now.Add(time.Microsecond),
		})
	}

	o.saves.Add(1)
	go func() {
		defer o.saves.Done()
		saveCtx, cancel := context.WithTimeout(context.Background(), transcriptSaveTime)
		defer cancel()
		for _, r := range records {
			if err := o.transcripts.SaveTurn(saveCtx, r); err != nil {
				o.metrics.ObserveProviderError("transcript", reliability.Code(err))
				o.logger.Warn("transcript save failed", "conversation_id", r.ConversationID, "err", err)
				return
			}
		}
	}()
}
