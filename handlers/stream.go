package handlers

import (
	"net/http"
	"time"

	"factcheck/logger"
	"factcheck/metrics"
	"factcheck/models"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait       = 10 * time.Second
	maxRequestBytes = 1 << 20
)

const rateLimitedMessage = "Rate limit exceeded"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Stream runs submissions over a websocket. For each {"text"} or {"url"}
// message the client receives a SessionEvent per state the session passes
// through; the session is then reset for the next message. Rejected or
// rate limited input yields a single idle event carrying the reason.
func (h *AnalyzerHandler) Stream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.WithError(err).WithField("component", "http").Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	logger := log.WithFields(log.Fields{"component": "http", "ip": c.ClientIP(), "stream": "analyze"})
	conn.SetReadLimit(maxRequestBytes)

	ctx := c.Request.Context()
	session := models.NewSession()

	for {
		var req models.AnalysisRequest
		if err := conn.ReadJSON(&req); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.WithError(err).Debug("stream ended")
			}
			return
		}

		if h.limiter != nil && !h.limiter.Allow(ctx, c.ClientIP()) {
			logger.Warn("rate limit exceeded")
			metrics.RateLimitedTotal.Inc()
			if !sendIdle(conn, session, rateLimitedMessage) {
				return
			}
			continue
		}

		payload, err := h.normalizeRequest(ctx, req)
		if err != nil {
			if !sendIdle(conn, session, rejectionMessage(err)) {
				return
			}
			continue
		}

		if err := session.Begin(payload); err != nil {
			logger.WithError(err).Error("session did not start")
			return
		}
		if !send(conn, session.Event()) {
			return
		}

		report, err := h.service.Analyze(ctx, payload)
		if err != nil {
			err = session.Fail(err.Error())
		} else {
			err = session.Complete(report)
		}
		if err != nil {
			logger.WithError(err).Error("session did not finish")
			return
		}

		if !send(conn, session.Event()) {
			return
		}
		session.Reset()
	}
}

// StreamLogs forwards every log line to the client until it disconnects.
func StreamLogs(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.WithError(err).WithField("component", "http").Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	logsChan := logger.Instance.Subscribe()
	defer logger.Instance.Unsubscribe(logsChan)

	done := make(chan struct{})
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				close(done)
				return
			}
		}
	}()

	for {
		select {
		case msg, ok := <-logsChan:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func send(conn *websocket.Conn, ev models.SessionEvent) bool {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(ev); err != nil {
		log.WithError(err).WithField("component", "http").Warn("stream client went away")
		return false
	}
	return true
}

func sendIdle(conn *websocket.Conn, session *models.Session, message string) bool {
	ev := session.Event()
	ev.Message = message
	return send(conn, ev)
}
