package realtime

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const conversationPrefix = "conv:"

func conversationOf(room string) (string, bool) {
	if !strings.HasPrefix(room, conversationPrefix) {
		return "", false
	}
	return strings.TrimPrefix(room, conversationPrefix), true
}

func (g *Gateway) dispatch(c *Client, f inbound) {
	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	switch f.Event {
	case EventJoin:
		g.onJoin(ctx, c, f)
	case EventLeave:
		g.onLeave(ctx, c, f)
	case EventTyping:
		g.onTyping(ctx, c, f)
	case EventRead:
		g.onRead(ctx, c, f)
	case EventMessage:
		g.onMessage(ctx, c, f)
	default:
		c.log.Debug("Unhandled event", zap.String("event", f.Event))
	}
}

func decode(c *Client, f inbound, v any) bool {
	if len(f.Data) == 0 {
		return false
	}
	if err := json.Unmarshal(f.Data, v); err != nil {
		c.log.Debug("Invalid event payload", zap.String("event", f.Event), zap.Error(err))
		return false
	}
	return true
}

func (g *Gateway) onJoin(ctx context.Context, c *Client, f inbound) {
	var req roomRequest
	if !decode(c, f, &req) || req.ConversationID == "" {
		return
	}

	convID := string(req.ConversationID)
	g.hub.join(c, ConversationRoom(convID))
	g.announce(ctx, c, convID, true)
}

func (g *Gateway) onLeave(ctx context.Context, c *Client, f inbound) {
	var req roomRequest
	if !decode(c, f, &req) || req.ConversationID == "" {
		return
	}

	convID := string(req.ConversationID)
	if g.hub.leave(c, ConversationRoom(convID)) {
		g.announce(ctx, c, convID, false)
	}
}

// announce tells the other members of a conversation that c came or went.
func (g *Gateway) announce(ctx context.Context, c *Client, convID string, online bool) {
	err := g.emit(ctx, ConversationRoom(convID), c.id, EventPresence, presence{
		ConversationID: convID,
		UserID:         c.principal.ID,
		Online:         online,
	})
	if err != nil {
		c.log.Warn("Failed to relay presence", zap.String("conversation_id", convID), zap.Error(err))
	}
}

func (g *Gateway) onTyping(ctx context.Context, c *Client, f inbound) {
	var req typingRequest
	if !decode(c, f, &req) || req.ConversationID == "" {
		return
	}

	convID := string(req.ConversationID)
	err := g.emit(ctx, ConversationRoom(convID), c.id, EventTyping, typing{
		ConversationID: convID,
		UserID:         c.principal.ID,
		IsTyping:       truthy(req.IsTyping),
	})
	if err != nil {
		c.log.Warn("Failed to relay typing", zap.String("conversation_id", convID), zap.Error(err))
	}
}

func (g *Gateway) onRead(ctx context.Context, c *Client, f inbound) {
	var req readRequest
	if !decode(c, f, &req) || req.ConversationID == "" {
		return
	}

	at := g.now().UTC()
	if req.At != "" {
		parsed, err := time.Parse(time.RFC3339Nano, req.At)
		if err != nil {
			c.log.Debug("Dropping read receipt with bad timestamp", zap.String("at", req.At))
			return
		}
		at = parsed.UTC()
	}

	convID := string(req.ConversationID)
	err := g.emit(ctx, ConversationRoom(convID), c.id, EventRead, readReceipt{
		ConversationID: convID,
		UserID:         c.principal.ID,
		At:             at,
	})
	if err != nil {
		c.log.Warn("Failed to relay read receipt", zap.String("conversation_id", convID), zap.Error(err))
	}
}

func (g *Gateway) onMessage(ctx context.Context, c *Client, f inbound) {
	var req messageRequest
	if !decode(c, f, &req) || req.ConversationID == "" {
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" && len(req.Attachments) == 0 {
		return
	}

	attachments := req.Attachments
	if attachments == nil {
		attachments = []json.RawMessage{}
	}

	msg := Message{
		ID:             uuid.New(),
		ConversationID: string(req.ConversationID),
		Sender:         c.principal.ID,
		Text:           text,
		Attachments:    attachments,
		CreatedAt:      g.now().UTC(),
	}

	if err := g.emit(ctx, ConversationRoom(msg.ConversationID), "", EventMessage, msg); err != nil {
		c.log.Error("Failed to relay message",
			zap.String("conversation_id", msg.ConversationID),
			zap.Error(err),
		)
		g.ack(c, f.AckID, ackError{Error: "send_failed"})
		g.reply(c, EventError, errorPayload{Message: "Failed to send message"})
		return
	}

	g.ack(c, f.AckID, msg)
}

func (g *Gateway) ack(c *Client, ackID string, data any) {
	if ackID == "" {
		return
	}
	payload, err := encodeAck(ackID, data)
	if err != nil {
		c.log.Error("Failed to encode ack", zap.Error(err))
		return
	}
	c.enqueue(payload)
}

func (g *Gateway) reply(c *Client, event string, data any) {
	payload, err := encode(event, data)
	if err != nil {
		c.log.Error("Failed to encode reply", zap.Error(err))
		return
	}
	c.enqueue(payload)
}
