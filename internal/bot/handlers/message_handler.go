package handlers

import (
	"context"
	"strings"
	"time"
	"unicode"
	"unicode/utf16"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/relaybot/internal/ai"
	"github.com/edgard/relaybot/internal/database"
	"github.com/edgard/relaybot/internal/text"
)

const groupModeAll = "all"

type messageHandler struct {
	deps HandlerDeps
}

// NewMessageHandler creates the default handler for plain text messages.
// It relays the message with the chat history to the AI service and replies
// to the incoming message.
func NewMessageHandler(deps HandlerDeps) bot.HandlerFunc {
	return messageHandler{deps}.Handle
}

func (h messageHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	deps := h.deps
	log := deps.Logger.With("handler", "message")

	msg := update.Message
	if msg == nil || msg.From == nil || msg.Text == "" {
		log.DebugContext(ctx, "Ignoring update without text message or sender", "update_id", update.ID)
		return
	}
	if msg.From.IsBot {
		log.DebugContext(ctx, "Ignoring message from bot", "user_id", msg.From.ID)
		return
	}
	if cmd, _, ok := text.CommandFromMessage(msg.Text); ok {
		log.DebugContext(ctx, "Ignoring unknown command", "command", cmd, "chat_id", msg.Chat.ID)
		return
	}

	chatID := msg.Chat.ID
	group := isGroup(msg.Chat.Type)
	if group && deps.Config.Telegram.GroupReplyMode != groupModeAll && !h.addressed(msg) {
		log.DebugContext(ctx, "Bot not mentioned or replied to, skipping group message", "chat_id", chatID)
		return
	}

	if !text.IsValidMessage(msg.Text) {
		log.InfoContext(ctx, "Invalid message received", "user", text.FormatUserInfo(msg.From), "chat_id", chatID)
		sendWithFallback(ctx, b, log, chatID, deps.Config.Messages.InvalidMessage, "", deps.Config.Messages.MessageError)
		return
	}

	if deps.Metrics != nil {
		deps.Metrics.RecordMessage()
	}
	log.InfoContext(ctx, "Message received", "user", text.FormatUserInfo(msg.From), "chat_id", chatID, "text", text.SanitizeForLog(msg.Text))

	stopTyping := keepTyping(ctx, b, log, chatID)

	prompt := h.stripMention(msg.Text)
	req := ai.Request{
		ChatID:   chatID,
		UserID:   msg.From.ID,
		ChatType: string(msg.Chat.Type),
		Text:     prompt,
		History:  h.history(ctx, chatID),
	}

	aiCtx, cancel := context.WithTimeout(ctx, aiProcessingTimeout)
	reply, err := deps.AI.GenerateResponse(aiCtx, req)
	cancel()
	stopTyping()
	if err != nil {
		if ctx.Err() != nil {
			log.WarnContext(ctx, "Message handling cancelled", "chat_id", chatID)
			return
		}
		log.ErrorContext(ctx, "Failed to generate response", "error", err, "chat_id", chatID)
		if sendErr := sendText(ctx, b, chatID, deps.Config.Messages.MessageError, ""); sendErr != nil {
			log.ErrorContext(ctx, "Failed to send error message", "error", sendErr, "chat_id", chatID)
		}
		return
	}

	sendCtx, sendCancel := context.WithTimeout(ctx, sendMessageTimeout)
	sent, err := b.SendMessage(sendCtx, &bot.SendMessageParams{
		ChatID:          chatID,
		Text:            reply.Text,
		ReplyParameters: &models.ReplyParameters{MessageID: msg.ID, AllowSendingWithoutReply: true},
	})
	sendCancel()
	if err != nil {
		log.ErrorContext(ctx, "Failed to send reply", "error", err, "chat_id", chatID)
		if sendErr := sendText(ctx, b, chatID, deps.Config.Messages.MessageError, ""); sendErr != nil {
			log.ErrorContext(ctx, "Failed to send error message", "error", sendErr, "chat_id", chatID)
		}
		return
	}

	log.InfoContext(ctx, "Sent reply", "chat_id", chatID, "message_id", sent.ID, "source", reply.Source)

	if reply.Fallback {
		return
	}
	SaveMessageWithRetry(ctx, deps, &database.Message{
		ChatID:    chatID,
		UserID:    msg.From.ID,
		Role:      database.RoleUser,
		Content:   prompt,
		Timestamp: messageTime(msg),
	}, "user turn")
	SaveMessageWithRetry(ctx, deps, &database.Message{
		ChatID:    chatID,
		Role:      database.RoleAssistant,
		Content:   reply.Text,
		Timestamp: time.Now().UTC(),
	}, "assistant turn")
}

// history loads earlier turns of the chat, oldest first. Failures are logged
// and yield no history.
func (h messageHandler) history(ctx context.Context, chatID int64) []ai.Turn {
	limit := h.deps.Config.AI.MaxHistoryMessages
	if limit <= 0 {
		return nil
	}

	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	msgs, err := h.deps.Store.GetRecentMessages(dbCtx, chatID, limit)
	if err != nil {
		h.deps.Logger.WarnContext(ctx, "Failed to load chat history", "error", err, "chat_id", chatID)
		return nil
	}

	turns := make([]ai.Turn, 0, len(msgs))
	for _, m := range msgs {
		role := ai.RoleUser
		if m.Role == database.RoleAssistant {
			role = ai.RoleAssistant
		}
		turns = append(turns, ai.Turn{Role: role, Content: m.Content})
	}
	return turns
}

// addressed reports whether a group message mentions the bot or replies to it.
func (h messageHandler) addressed(msg *models.Message) bool {
	info := h.deps.Config.Telegram.BotInfo

	if msg.ReplyToMessage != nil && msg.ReplyToMessage.From != nil && info.ID != 0 && msg.ReplyToMessage.From.ID == info.ID {
		return true
	}
	if info.Username == "" {
		return false
	}

	mention := "@" + strings.ToLower(info.Username)
	for _, e := range msg.Entities {
		if e.Type != models.MessageEntityTypeMention {
			continue
		}
		if entityText(msg.Text, e.Offset, e.Length) == mention {
			return true
		}
	}

	for _, w := range strings.Fields(strings.ToLower(msg.Text)) {
		if strings.TrimFunc(w, isMentionTrim) == mention {
			return true
		}
	}
	return false
}

// stripMention removes "@botname" from the prompt so providers see only the question.
func (h messageHandler) stripMention(s string) string {
	username := h.deps.Config.Telegram.BotInfo.Username
	if username == "" {
		return s
	}
	mention := "@" + strings.ToLower(username)
	fields := strings.Fields(s)
	kept := fields[:0]
	for _, w := range fields {
		if strings.ToLower(strings.TrimFunc(w, isMentionTrim)) == mention {
			continue
		}
		kept = append(kept, w)
	}
	out := strings.Join(kept, " ")
	if strings.TrimSpace(out) == "" {
		return s
	}
	return out
}

func isMentionTrim(r rune) bool {
	return r != '@' && r != '_' && (unicode.IsPunct(r) || unicode.IsSpace(r))
}

// entityText extracts an entity from s. Telegram offsets count UTF-16 code units.
func entityText(s string, offset, length int) string {
	units := utf16.Encode([]rune(s))
	if offset < 0 || length <= 0 || offset+length > len(units) {
		return ""
	}
	return strings.ToLower(string(utf16.Decode(units[offset : offset+length])))
}

func messageTime(msg *models.Message) time.Time {
	if msg.Date == 0 {
		return time.Now().UTC()
	}
	return time.Unix(int64(msg.Date), 0).UTC()
}

func isGroup(t models.ChatType) bool {
	return t == models.ChatTypeGroup || t == models.ChatTypeSupergroup
}
