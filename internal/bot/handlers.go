package bot

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/omarshaarawi/commander/internal/models"
	"github.com/omarshaarawi/commander/internal/service"
)

// Commands is what the bot can ask of the service.
type Commands interface {
	Matchups(ctx context.Context, profile string, week int, mode models.Mode) ([]models.MatchupView, error)
	Changes(ctx context.Context, limit int) ([]models.ProjectionChange, error)
	Records(ctx context.Context) ([]models.RecordBoard, error)
	RefreshAll(ctx context.Context) service.StepResult
}

const changesLimit = 10

type Handler struct {
	commands Commands
}

func NewHandler(commands Commands) *Handler {
	return &Handler{commands: commands}
}

func (h *Handler) HandleCommand(ctx context.Context, update tgbotapi.Update) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(update.Message.Chat.ID, "")
	command := strings.ToLower(update.Message.Command())
	args := strings.Fields(update.Message.CommandArguments())
	msg.ParseMode = "Markdown"

	switch command {
	case "start", "help":
		msg.Text = "Available commands:\n/matchups <profile> [default|all|max] [week] - Live matchups\n/changes - Recent projection changes\n/records - League records\n/refresh - Refresh everything now"
	case "matchups":
		h.handleMatchups(ctx, &msg, args)
	case "changes":
		h.handleChanges(ctx, &msg)
	case "records":
		h.handleRecords(ctx, &msg)
	case "refresh":
		h.handleRefresh(ctx, &msg)
	default:
		msg.Text = "Unknown command. Use /help to see available commands."
	}

	return msg
}

func (h *Handler) handleMatchups(ctx context.Context, msg *tgbotapi.MessageConfig, args []string) {
	if len(args) == 0 {
		msg.Text = "Please provide a profile. Usage: /matchups <profile> [mode] [week]"
		return
	}

	mode := models.ModeDefault
	week := 0
	for _, arg := range args[1:] {
		if n, err := strconv.Atoi(arg); err == nil {
			week = n
			continue
		}
		mode = models.ParseMode(arg)
	}

	views, err := h.commands.Matchups(ctx, args[0], week, mode)
	if err != nil {
		msg.Text = fmt.Sprintf("Error fetching matchups: %v", err)
		return
	}
	if len(views) == 0 {
		msg.Text = fmt.Sprintf("No leagues configured for *%s*.", args[0])
		return
	}
	msg.Text = formatMatchups(views)
}

func (h *Handler) handleChanges(ctx context.Context, msg *tgbotapi.MessageConfig) {
	changes, err := h.commands.Changes(ctx, changesLimit)
	if err != nil {
		msg.Text = fmt.Sprintf("Error fetching changes: %v", err)
		return
	}
	if len(changes) == 0 {
		msg.Text = "No projection changes yet."
		return
	}
	msg.Text = formatChanges(changes)
}

func (h *Handler) handleRecords(ctx context.Context, msg *tgbotapi.MessageConfig) {
	boards, err := h.commands.Records(ctx)
	if err != nil && len(boards) == 0 {
		msg.Text = fmt.Sprintf("Error building records: %v", err)
		return
	}
	if len(boards) == 0 {
		msg.Text = "No records yet."
		return
	}
	msg.Text = formatRecords(boards)
}

func (h *Handler) handleRefresh(ctx context.Context, msg *tgbotapi.MessageConfig) {
	result := h.commands.RefreshAll(ctx)

	steps := make([]string, 0, len(result))
	for step := range result {
		steps = append(steps, step)
	}
	sort.Strings(steps)

	var sb strings.Builder
	sb.WriteString("🔄 *Refresh*\n")
	for _, step := range steps {
		sb.WriteString(fmt.Sprintf("%s: %s\n", step, result[step]))
	}
	msg.Text = sb.String()
}
