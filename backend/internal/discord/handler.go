// Package discord wires the parser and the legal assistant into a Discord
// bot: `!parse` runs a document through the pipeline, `!docs` lists the
// imported documents, mentions and DMs go to the assistant.
package discord

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"lexgraph/backend/internal/assistant"
	"lexgraph/backend/internal/graph"
	"lexgraph/backend/internal/parser"
	apperrors "lexgraph/backend/pkg/errors"
)

// DiscordMaxMessageLength is Discord's hard limit per message.
const DiscordMaxMessageLength = 2000

const (
	parseCommand = "!parse"
	docsCommand  = "!docs"
)

// Handler handles Discord message processing
type Handler struct {
	assistant *assistant.Assistant
	graphRepo *graph.Repository
	logger    *zap.Logger
}

// NewHandler creates a new Discord message handler
func NewHandler(asst *assistant.Assistant, graphRepo *graph.Repository, logger *zap.Logger) *Handler {
	return &Handler{
		assistant: asst,
		graphRepo: graphRepo,
		logger:    logger,
	}
}

// HandleMessage processes a Discord message
func (h *Handler) HandleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	// Ignore messages from the bot itself
	if m.Author.ID == s.State.User.ID {
		return
	}

	content := strings.TrimSpace(m.Content)

	// Commands work anywhere, no mention needed
	if strings.HasPrefix(content, parseCommand) {
		h.handleParse(s, m, strings.TrimSpace(strings.TrimPrefix(content, parseCommand)))
		return
	}
	if content == docsCommand {
		h.handleDocs(s, m)
		return
	}

	// Otherwise only respond to DMs or mentions
	isDM := m.GuildID == ""
	isMentioned := false
	for _, mention := range m.Mentions {
		if mention.ID == s.State.User.ID {
			isMentioned = true
			break
		}
	}
	if strings.HasPrefix(content, "<@"+s.State.User.ID+">") || strings.HasPrefix(content, "<!@"+s.State.User.ID+">") {
		isMentioned = true
		content = strings.TrimPrefix(content, "<@"+s.State.User.ID+">")
		content = strings.TrimPrefix(content, "<!@"+s.State.User.ID+">")
		content = strings.TrimSpace(content)
	}
	if !isDM && !isMentioned {
		return
	}
	if content == "" {
		return
	}

	h.logger.Info("Processing Discord question",
		zap.String("user_id", m.Author.ID),
		zap.String("channel_id", m.ChannelID),
		zap.Bool("is_dm", isDM),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	answer, err := h.assistant.Ask(ctx, content)
	if err != nil {
		errType := "unknown"
		if apperrors.IsErrorType(err, apperrors.ErrorTypeAssistant) {
			errType = string(apperrors.ErrorTypeAssistant)
		}
		h.logger.Error("Failed to answer question",
			zap.Error(err),
			zap.String("error_type", errType),
			zap.String("user_id", m.Author.ID),
		)
		_, _ = s.ChannelMessageSend(m.ChannelID, "Sorry, I encountered an error processing your question.")
		return
	}

	h.sendLongMessage(s, m.ChannelID, answer)
}

// handleParse runs the document text through the parser and replies with a
// structure summary.
func (h *Handler) handleParse(s *discordgo.Session, m *discordgo.MessageCreate, text string) {
	if text == "" {
		_, _ = s.ChannelMessageSend(m.ChannelID, "Usage: `!parse <document text>`")
		return
	}

	doc := parser.Parse(text)

	var b strings.Builder
	fmt.Fprintf(&b, "**%s** %s\n", doc.Metadata.LoaiVanBan, doc.Metadata.SoHieu)
	if doc.Metadata.NgayBanHanh != "" {
		fmt.Fprintf(&b, "Ngày ban hành: %s\n", doc.Metadata.NgayBanHanh)
	}
	fmt.Fprintf(&b, "Hành động: %s\n", doc.Metadata.HanhDongLapPhap)
	fmt.Fprintf(&b, "Thành phần: %d (%d gốc)\n", parser.CountComponents(doc.Structure), len(doc.Structure))
	fmt.Fprintf(&b, "Tham chiếu: %d\n", len(doc.CrossReferences))
	for _, root := range doc.Structure {
		fmt.Fprintf(&b, "- %s %s %s\n", root.Type, root.Ordinal, root.Title)
	}

	h.logger.Info("Parsed document from Discord",
		zap.String("user_id", m.Author.ID),
		zap.String("doc_type", doc.Metadata.LoaiVanBan),
		zap.Int("components", parser.CountComponents(doc.Structure)),
	)

	h.sendLongMessage(s, m.ChannelID, b.String())
}

// handleDocs lists the documents currently in the graph.
func (h *Handler) handleDocs(s *discordgo.Session, m *discordgo.MessageCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	docs, err := h.graphRepo.ListDocuments(ctx)
	if err != nil {
		h.logger.Error("Failed to list documents", zap.Error(err))
		_, _ = s.ChannelMessageSend(m.ChannelID, "Sorry, I could not read the document list.")
		return
	}
	if len(docs) == 0 {
		_, _ = s.ChannelMessageSend(m.ChannelID, "Chưa có văn bản nào được nhập.")
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**%d văn bản**\n", len(docs))
	for _, d := range docs {
		fmt.Fprintf(&b, "- `%s` %s %s (%d thành phần)\n", d.WorkID, d.LoaiVanBan, d.SoHieu, d.ComponentCount)
	}
	h.sendLongMessage(s, m.ChannelID, b.String())
}

// sendLongMessage splits a message into chunks if it exceeds Discord's character limit
func (h *Handler) sendLongMessage(s *discordgo.Session, channelID, content string) {
	if len(content) <= DiscordMaxMessageLength {
		if _, err := s.ChannelMessageSend(channelID, content); err != nil {
			h.logger.Error("Failed to send message",
				zap.Error(err),
				zap.String("channel_id", channelID),
			)
		}
		return
	}

	chunks := splitMessage(content, DiscordMaxMessageLength)
	for i, chunk := range chunks {
		if _, err := s.ChannelMessageSend(channelID, chunk); err != nil {
			h.logger.Error("Failed to send message chunk",
				zap.Error(err),
				zap.String("channel_id", channelID),
				zap.Int("chunk", i+1),
				zap.Int("total_chunks", len(chunks)),
			)
			break
		}
		// Brief pause between chunks to avoid rate limiting
		if i < len(chunks)-1 {
			time.Sleep(100 * time.Millisecond)
		}
	}
}

// splitMessage splits content into chunks of at most maxLength, preferring
// line boundaries.
func splitMessage(content string, maxLength int) []string {
	if len(content) <= maxLength {
		return []string{content}
	}

	var chunks []string
	current := ""
	for _, line := range strings.Split(content, "\n") {
		// Hard-split lines that alone exceed the limit, never inside a rune
		for len(line) > maxLength {
			if current != "" {
				chunks = append(chunks, current)
				current = ""
			}
			cut := maxLength
			for cut > 0 && !utf8.RuneStart(line[cut]) {
				cut--
			}
			if cut == 0 {
				cut = maxLength
			}
			chunks = append(chunks, line[:cut])
			line = line[cut:]
		}
		if current == "" {
			current = line
		} else if len(current)+1+len(line) <= maxLength {
			current += "\n" + line
		} else {
			chunks = append(chunks, current)
			current = line
		}
	}
	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks
}
