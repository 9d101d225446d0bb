package speech

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

const (
	defaultLang      = "en-US"
	handshakeTimeout = 10 * time.Second
	writeWait        = 5 * time.Second
)

type frame struct {
	Type    string `mapstructure:"type"`
	Text    string `mapstructure:"transcript"`
	Final   bool   `mapstructure:"is_final"`
	Code    string `mapstructure:"error"`
	Message string `mapstructure:"message"`
}

type control struct {
	Type           string `json:"type"`
	Lang           string `json:"lang,omitempty"`
	Continuous     bool   `json:"continuous,omitempty"`
	InterimResults bool   `json:"interim_results,omitempty"`
}

// WebSocket is a client for a streaming recognition service. Audio capture
// happens on the service side; the client only consumes transcript frames.
type WebSocket struct {
	URL    string
	Token  string
	Lang   string
	Dialer *websocket.Dialer

	logger *zap.Logger
}

func NewWebSocket(rawURL, token string, logger *zap.Logger) *WebSocket {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebSocket{
		URL:    rawURL,
		Token:  token,
		Lang:   defaultLang,
		Dialer: &websocket.Dialer{HandshakeTimeout: handshakeTimeout},
		logger: logger,
	}
}

func (w *WebSocket) Listen(ctx context.Context) (Stream, error) {
	u, err := url.Parse(w.URL)
	if err != nil {
		return nil, fmt.Errorf("parse speech url: %w", err)
	}

	header := http.Header{}
	if w.Token != "" {
		header.Set("Authorization", fmt.Sprintf("Bearer %s", w.Token))
	}

	conn, resp, err := w.Dialer.DialContext(ctx, u.String(), header)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusForbidden {
			return nil, &RecognitionError{Code: CodeNotAllowed, Message: resp.Status}
		}
		return nil, fmt.Errorf("dial speech service: %w", err)
	}

	start := control{Type: "start", Lang: w.Lang, Continuous: true, InterimResults: true}
	if err := conn.WriteJSON(start); err != nil {
		conn.Close()
		return nil, fmt.Errorf("start recognition: %w", err)
	}

	s := newStream(func() {
		deadline := time.Now().Add(writeWait)
		_ = conn.SetWriteDeadline(deadline)
		_ = conn.WriteJSON(control{Type: "stop"})
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		conn.Close()
	})

	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-s.done:
		}
	}()

	go w.readPump(conn, s)

	return s, nil
}

func (w *WebSocket) readPump(conn *websocket.Conn, s *stream) {
	defer s.finish()

	for {
		var raw map[string]any
		if err := conn.ReadJSON(&raw); err != nil {
			select {
			case <-s.done:
				return
			default:
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return
			}
			s.fail(fmt.Errorf("read speech frame: %w", err))
			return
		}

		var f frame
		if err := mapstructure.Decode(raw, &f); err != nil {
			w.logger.Warn("skipping undecodable speech frame", zap.Error(err))
			continue
		}

		switch f.Type {
		case "result":
			if !s.send(Segment{Text: f.Text, Final: f.Final}) {
				return
			}
		case "error":
			s.fail(&RecognitionError{Code: f.Code, Message: f.Message})
		case "end":
			return
		default:
			w.logger.Debug("ignoring speech frame", zap.String("type", f.Type))
		}
	}
}

var (
	_ Recognizer = (*WebSocket)(nil)
	_ Recognizer = (*Lines)(nil)
)
