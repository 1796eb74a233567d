package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lystzs/family-asset-manager/pkg/logger"
)

// Order stream timing
const (
	StreamPingInterval     = 30 * time.Second
	StreamHandshakeTimeout = 10 * time.Second
)

// Order stream event types pushed by the backend
const (
	EventExecution = "EXECUTION" // 체결 통보 → 잔고/미체결 재조회 필요
	EventPrice     = "PRICE"
)

// OrderEvent is one push frame from /ws/orders/{accountId}.
// Control frames carry only Error or Warning.
type OrderEvent struct {
	Type    string `json:"type,omitempty"`
	Data    string `json:"data,omitempty"`
	Code    string `json:"code,omitempty"`
	Price   string `json:"price,omitempty"`
	Change  string `json:"change,omitempty"`
	Rate    string `json:"rate,omitempty"`
	Error   string `json:"error,omitempty"`
	Warning string `json:"warning,omitempty"`
}

// IsControl reports an error/warning frame
func (e OrderEvent) IsControl() bool {
	return e.Error != "" || e.Warning != ""
}

// OrderStream is a live order-status subscription. It does not reconnect:
// when Events closes, check Err and dial again if needed.
type OrderStream struct {
	conn   *websocket.Conn
	logger *logger.Logger

	writeMu sync.Mutex
	events  chan OrderEvent
	stopCh  chan struct{}
	wg      sync.WaitGroup

	closeOnce sync.Once
	errMu     sync.Mutex
	err       error
}

// StreamURL converts the API base into the order stream URL.
// http://host/v1 → ws://host/ws/orders/{id}
func StreamURL(baseURL string, accountID int64) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}

	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = fmt.Sprintf("/ws/orders/%d", accountID)
	u.RawQuery = ""
	return u.String(), nil
}

// DialOrderStream opens /ws/orders/{accountId} and starts read/ping loops
func (c *Client) DialOrderStream(ctx context.Context, accountID int64) (*OrderStream, error) {
	wsURL, err := StreamURL(c.baseURL, accountID)
	if err != nil {
		return nil, err
	}

	dialer := websocket.Dialer{HandshakeTimeout: StreamHandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket connect: %w", err)
	}

	s := &OrderStream{
		conn:   conn,
		logger: c.logger.WithAccount(accountID),
		events: make(chan OrderEvent, 16),
		stopCh: make(chan struct{}),
	}

	s.wg.Add(2)
	go s.readLoop()
	go s.pingLoop(StreamPingInterval)

	s.logger.Info("Order stream connected")
	return s, nil
}

// Events delivers pushed frames until the stream ends
func (s *OrderStream) Events() <-chan OrderEvent {
	return s.events
}

// Err returns the error that ended the stream (nil after a normal Close)
func (s *OrderStream) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

// Ping sends the text keepalive; the backend answers "pong"
func (s *OrderStream) Ping() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, []byte("ping"))
}

// Close ends the stream and waits for its goroutines
func (s *OrderStream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.stopCh)

		s.writeMu.Lock()
		_ = s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		s.writeMu.Unlock()

		err = s.conn.Close()
		s.wg.Wait()
		s.logger.Info("Order stream closed")
	})
	return err
}

func (s *OrderStream) fail(err error) {
	s.errMu.Lock()
	if s.err == nil {
		s.err = err
	}
	s.errMu.Unlock()
}

func (s *OrderStream) readLoop() {
	defer s.wg.Done()
	defer close(s.events)

	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.stopCh:
				return
			default:
			}
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.fail(fmt.Errorf("read error: %w", err))
				s.logger.WithError(err).Warn("Order stream read failed")
			}
			return
		}

		if string(message) == "pong" {
			continue
		}

		var event OrderEvent
		if err := json.Unmarshal(message, &event); err != nil {
			s.logger.WithField("frame", string(message)).Debug("Ignoring non-JSON frame")
			continue
		}

		select {
		case s.events <- event:
		case <-s.stopCh:
			return
		}
	}
}

func (s *OrderStream) pingLoop(interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			if err := s.Ping(); err != nil {
				s.fail(fmt.Errorf("ping error: %w", err))
				return
			}
		}
	}
}
