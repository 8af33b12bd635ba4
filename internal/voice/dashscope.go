package voice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/sceneling/sceneling/internal/logging"
)

type DashScopeConfig struct {
	APIKey string
	WSURL  string
	Model  string
}

// DashScopeChannel speaks the qwen-tts-realtime websocket protocol.
type DashScopeChannel struct {
	cfg    DashScopeConfig
	dialer *websocket.Dialer
	logger *log.Logger
}

func NewDashScopeChannel(cfg DashScopeConfig, logger *log.Logger) *DashScopeChannel {
	if strings.TrimSpace(cfg.WSURL) == "" {
		cfg.WSURL = "wss://dashscope.aliyuncs.com/api-ws/v1/realtime"
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = "qwen-tts-realtime"
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &DashScopeChannel{
		cfg: cfg,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: 15 * time.Second,
		},
		logger: logger.With("component", "dashscope_tts"),
	}
}

func (c *DashScopeChannel) Connect(ctx context.Context, handler SessionHandler) (RealtimeSession, error) {
	u, err := url.Parse(c.cfg.WSURL)
	if err != nil {
		return nil, fmt.Errorf("parse tts websocket url: %w", err)
	}
	q := u.Query()
	q.Set("model", c.cfg.Model)
	u.RawQuery = q.Encode()

	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+c.cfg.APIKey)

	conn, _, err := c.dialer.DialContext(ctx, u.String(), headers)
	if err != nil {
		return nil, fmt.Errorf("dial tts websocket: %w", err)
	}

	s := &dashScopeSession{conn: conn, handler: handler, logger: c.logger}
	go s.readLoop()
	return s, nil
}

type dashScopeSession struct {
	conn      *websocket.Conn
	handler   SessionHandler
	logger    *log.Logger
	writeMu   sync.Mutex
	closeOnce sync.Once
}

func (s *dashScopeSession) Configure(cfg SessionConfig) error {
	return s.send("session.update", map[string]any{
		"session": map[string]any{
			"voice":           cfg.Voice,
			"response_format": cfg.ResponseFormat,
			"sample_rate":     cfg.SampleRate,
			"mode":            cfg.Mode,
		},
	})
}

func (s *dashScopeSession) AppendText(text string) error {
	return s.send("input_text_buffer.append", map[string]any{"text": text})
}

func (s *dashScopeSession) Commit() error {
	return s.send("input_text_buffer.commit", nil)
}

func (s *dashScopeSession) Finish() error {
	return s.send("session.finish", nil)
}

func (s *dashScopeSession) Close() error {
	var retErr error
	s.closeOnce.Do(func() {
		s.writeMu.Lock()
		_ = s.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		s.writeMu.Unlock()
		retErr = s.conn.Close()
	})
	return retErr
}

func (s *dashScopeSession) send(eventType string, fields map[string]any) error {
	payload := map[string]any{
		"event_id": "event_" + uuid.NewString(),
		"type":     eventType,
	}
	for k, v := range fields {
		payload[k] = v
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := s.conn.WriteJSON(payload); err != nil {
		return fmt.Errorf("send %s: %w", eventType, err)
	}
	return nil
}

type serverEvent struct {
	Type  string `json:"type"`
	Delta string `json:"delta"`
	Error *struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (s *dashScopeSession) readLoop() {
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			var ce *websocket.CloseError
			if errors.As(err, &ce) {
				s.handler.OnClosed(ce.Code, ce.Text)
			} else {
				s.handler.OnClosed(websocket.CloseAbnormalClosure, err.Error())
			}
			return
		}
		var ev serverEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			s.logger.Debug("skip malformed server event", "err", err)
			continue
		}
		switch ev.Type {
		case "response.audio.delta":
			s.handler.OnAudioDelta(ev.Delta)
		case "session.finished":
			s.handler.OnFinished()
		case "error":
			msg := "realtime session error"
			if ev.Error != nil && ev.Error.Message != "" {
				msg = strings.TrimSpace(ev.Error.Code + " " + ev.Error.Message)
			}
			s.handler.OnClosed(websocket.CloseInternalServerErr, msg)
		default:
			// session.created, session.updated, response.created, response.done and friends.
		}
	}
}
