package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/vncsmyrnk/attendance/internal/core/domain"
	"github.com/vncsmyrnk/attendance/internal/core/ports"
)

const (
	announcementColor = 0x3498db
	summaryColor      = 0x2ecc71

	emptyPartition = "none"
	missingReason  = "no reason given"
	maxReasonRunes = 200

	// Discord rejects embeds whose field values exceed 1024 characters.
	maxFieldRunes = 1024
	// overflowReserve keeps room for the trailing "… and N more" line.
	overflowReserve = 24

	announcementContent = "@everyone"
	announcementTitle   = "📅 Poll: will you attend the next meeting?"
	summaryTitle        = "📋 Poll responses"
	attendingFieldName  = "✅ Attending"
	decliningFieldName  = "❌ Not attending"

	reasonPromptText    = "Hi! You marked that you will not attend the meeting. Please reply briefly with the reason:"
	reasonSavedText     = "Thanks! Your reason has been saved."
	reasonTimeoutText   = "I did not receive a reply within %s, so your absence was not recorded. React again to retry."
	conflictingVoteText = "⚠️ You cannot select both answers. To change your decision, remove your previous reaction first."
)

func renderAnnouncement(poll domain.Poll) ports.OutboundMessage {
	var b strings.Builder
	fmt.Fprintf(&b, "**Time:** %s\n", poll.Meeting.Time)
	fmt.Fprintf(&b, "**Date:** %s\n", poll.Date)
	fmt.Fprintf(&b, "**Building:** %s\n", poll.Meeting.Building)
	fmt.Fprintf(&b, "**Room:** %s\n\n", poll.Meeting.Room)
	fmt.Fprintf(&b, "React to confirm:\n%s Yes\n%s No", domain.EmojiAttend, domain.EmojiDecline)

	return ports.OutboundMessage{
		Content: announcementContent,
		Embed: &ports.Embed{
			Title:       announcementTitle,
			Description: b.String(),
			Color:       announcementColor,
			Timestamp:   poll.CreatedAt,
		},
	}
}

func renderSummary(view domain.SummaryView) ports.OutboundMessage {
	return ports.OutboundMessage{
		Embed: &ports.Embed{
			Title: summaryTitle,
			Color: summaryColor,
			Fields: []ports.EmbedField{
				{Name: attendingFieldName, Value: FormatPartition(view.Attending, domain.ChoiceAttending)},
				{Name: decliningFieldName, Value: FormatPartition(view.Declining, domain.ChoiceDeclining)},
			},
			Timestamp: view.GeneratedAt,
		},
	}
}

// FormatPartition renders one summary list as newline separated
// "symbol name" lines; declining lines carry " — reason". An empty list
// renders as "none".
func FormatPartition(entries []domain.SummaryEntry, choice domain.Choice) string {
	if len(entries) == 0 {
		return emptyPartition
	}

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		line := choice.Emoji() + " " + e.DisplayName
		if choice == domain.ChoiceDeclining {
			reason := missingReason
			if e.Reason != nil && *e.Reason != "" {
				reason = truncateRunes(*e.Reason, maxReasonRunes)
			}
			line += " — " + reason
		}
		lines = append(lines, line)
	}
	return joinCapped(lines)
}

// joinCapped joins lines until the field limit and summarises the rest as
// "… and N more".
func joinCapped(lines []string) string {
	var b strings.Builder
	used := 0
	for i, line := range lines {
		n := utf8.RuneCountInString(line)
		if i > 0 {
			n++
		}
		limit := maxFieldRunes
		if i < len(lines)-1 {
			limit -= overflowReserve
		}
		if i > 0 && used+n > limit {
			fmt.Fprintf(&b, "\n… and %d more", len(lines)-i)
			break
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		used += n
	}
	return b.String()
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-1]) + "…"
}
