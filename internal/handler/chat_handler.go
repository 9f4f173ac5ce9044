package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"chat-relay-go/internal/service"
	"chat-relay-go/internal/session"
	"chat-relay-go/pkg/log"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// 默认只接受同源的 WebSocket 升级请求。
var upgrader = websocket.Upgrader{}

// MaxFrameBytes 是单条 WebSocket 消息允许的最大字节数，超出后连接被关闭。
const MaxFrameBytes = 64 << 10

// ChatHandler 负责聊天页面、predict、clear 以及 WebSocket 连接。
type ChatHandler struct {
	chatService service.ChatService
}

// NewChatHandler 创建一个新的 ChatHandler。
func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// PredictRequest 是 /predict 的请求体。
type PredictRequest struct {
	Text string `json:"text" binding:"required"`
}

var errMissingSession = errors.New("session id missing from request context")

func sessionID(c *gin.Context) (string, bool) {
	sid, ok := session.FromContext(c)
	if !ok {
		log.Error("session middleware not applied", errMissingSession)
		writeError(c, errMissingSession)
	}
	return sid, ok
}

// Home 渲染当前会话的聊天记录页面。
func (h *ChatHandler) Home(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	turns, err := h.chatService.History(c.Request.Context(), sid)
	if err != nil {
		writeError(c, err)
		return
	}
	c.HTML(http.StatusOK, "index.html", gin.H{"Turns": turns})
}

// History 以 JSON 形式返回当前会话的聊天记录。
func (h *ChatHandler) History(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	turns, err := h.chatService.History(c.Request.Context(), sid)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    turns,
	})
}

// Predict 处理一次问答：{"text": "..."} -> {"result": "..."}。
func (h *ChatHandler) Predict(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}

	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, service.NewValidationError("text is required"))
		return
	}

	result, err := h.chatService.Predict(c.Request.Context(), sid, req.Text)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

// Clear 删除当前会话的全部聊天记录，重复调用返回相同结果。
func (h *ChatHandler) Clear(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	if _, err := h.chatService.Clear(c.Request.Context(), sid); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

type wsReply struct {
	Result  string `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// WebSocket 在一个连接上处理多次 predict。每条消息可以是 {"text": "..."} 或纯文本，
// 每次回复是一帧完整的 JSON。
func (h *ChatHandler) WebSocket(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}

	// 首次访问时会话 cookie 需要随升级响应一起下发
	respHeader := http.Header{}
	for _, v := range c.Writer.Header().Values("Set-Cookie") {
		respHeader.Add("Set-Cookie", v)
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, respHeader)
	if err != nil {
		log.Error("WebSocket 升级失败", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(MaxFrameBytes)

	log.Infow("WebSocket 连接已建立", "sessionID", sid)
	ctx := c.Request.Context()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if errors.Is(err, websocket.ErrReadLimit) {
				log.Warnw("WebSocket 消息超出大小限制，关闭连接", "sessionID", sid, "limit", MaxFrameBytes)
			} else if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warnf("从 WebSocket 读取消息失败: %v", err)
			}
			return
		}

		text := string(message)
		if len(message) > 0 && message[0] == '{' {
			var req PredictRequest
			if err := json.Unmarshal(message, &req); err == nil {
				text = req.Text
			}
		}

		var reply wsReply
		result, err := h.chatService.Predict(ctx, sid, text)
		if err != nil {
			_, kind := errorKind(err)
			reply = wsReply{Error: kind, Message: publicMessage(err)}
		} else {
			reply = wsReply{Result: result}
		}
		if err := conn.WriteJSON(reply); err != nil {
			log.Warnf("写入 WebSocket 消息失败: %v", err)
			return
		}
	}
}
