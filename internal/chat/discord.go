package chat

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// DiscordSender is the subset of *discordgo.Session used to post messages.
type DiscordSender interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Embed colors by outcome key.
var outcomeColors = map[string]int{
	"critical-success": 0xf1c40f,
	"success":          0x2ecc71,
	"failure":          0xe74c3c,
	"critical-failure": 0x8e44ad,
}

const defaultColor = 0x3498db

// DiscordSink posts cards as embeds to one channel.
type DiscordSink struct {
	sender       DiscordSender
	channelID    string
	showFormulas bool
}

// NewDiscordSink creates a DiscordSink.
//
// Precondition: sender must be non-nil; channelID non-empty.
func NewDiscordSink(sender DiscordSender, channelID string, showFormulas bool) *DiscordSink {
	return &DiscordSink{sender: sender, channelID: channelID, showFormulas: showFormulas}
}

// Send posts msg as an embed.
func (s *DiscordSink) Send(_ context.Context, msg Message) error {
	_, err := s.sender.ChannelMessageSendComplex(s.channelID, &discordgo.MessageSend{
		Embed: BuildEmbed(msg, s.showFormulas),
	})
	if err != nil {
		return fmt.Errorf("failed to send chat message: %w", err)
	}
	return nil
}

// BuildEmbed converts msg into a Discord embed.
func BuildEmbed(msg Message, showFormulas bool) *discordgo.MessageEmbed {
	color, ok := outcomeColors[msg.Card.OutcomeKey]
	if !ok {
		color = defaultColor
	}
	embed := &discordgo.MessageEmbed{
		Title:       msg.Card.Title,
		Description: msg.Card.Description,
		Color:       color,
	}
	if msg.Speaker != "" || msg.Flavor != "" {
		embed.Author = &discordgo.MessageEmbedAuthor{Name: joinNonEmpty(msg.Speaker, msg.Flavor)}
	}
	if msg.Card.Outcome != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Resultado", Value: msg.Card.Outcome, Inline: true})
	}
	if msg.Card.Total != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Total", Value: msg.Card.Total, Inline: true})
	}
	for _, f := range msg.Card.Fields {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: f.Label, Value: f.Value, Inline: true})
	}
	if showFormulas && msg.Roll != nil && msg.Roll.Formula != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: msg.Roll.String()}
	} else if showFormulas && msg.Card.Formula != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: msg.Card.Formula}
	}
	return embed
}

// DiscordNotifier posts notices as plain channel messages.
type DiscordNotifier struct {
	sender    DiscordSender
	channelID string
	fallback  Notifier
}

// NewDiscordNotifier creates a DiscordNotifier. Delivery failures are
// reported to fallback.
//
// Precondition: sender and fallback must be non-nil.
func NewDiscordNotifier(sender DiscordSender, channelID string, fallback Notifier) *DiscordNotifier {
	return &DiscordNotifier{sender: sender, channelID: channelID, fallback: fallback}
}

// Notify posts text prefixed with a level marker.
func (n *DiscordNotifier) Notify(ctx context.Context, level Level, text string) {
	prefix := map[Level]string{Info: "ℹ️", Warn: "⚠️", Error: "❌"}[level]
	_, err := n.sender.ChannelMessageSendComplex(n.channelID, &discordgo.MessageSend{
		Content: joinNonEmpty(prefix, text),
	})
	if err != nil {
		n.fallback.Notify(ctx, Error, fmt.Sprintf("discord notify failed: %v", err))
		n.fallback.Notify(ctx, level, text)
	}
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}
