package http

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
	wsMaxMessage = 64 << 10
)

// handleWebSocket 每个文本帧是一条记录，每个回复是一个预测结果
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	requestID := GetRequestID(r.Context())
	h.logger.Debug("websocket connected", zap.String("request_id", requestID))

	conn.SetReadLimit(wsMaxMessage)
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	// 心跳与回复共用一个写协程，gorilla连接不支持并发写
	replies := make(chan any, 16)
	done := make(chan struct{})
	go h.writePump(conn, replies, done)
	defer func() {
		close(replies)
		<-done
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read failed", zap.String("request_id", requestID), zap.Error(err))
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(wsPongWait))

		record, err := decodeRecord(payload)
		if err != nil {
			replies <- errorBody{Error: "invalid request: " + err.Error()}
			continue
		}
		replies <- h.predict(record)
	}
}

func (h *Handler) writePump(conn *websocket.Conn, replies <-chan any, done chan<- struct{}) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		close(done)
	}()

	for {
		select {
		case reply, ok := <-replies:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteJSON(reply); err != nil {
				h.logger.Debug("websocket write failed", zap.Error(err))
				// 关闭连接使读循环退出，并消费剩余回复
				conn.Close()
				for range replies {
				}
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				conn.Close()
				for range replies {
				}
				return
			}
		}
	}
}
