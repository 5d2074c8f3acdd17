package wsbridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"steward/models"
	"steward/service"
)

// Handler dispatches decoded wire messages to services
type Handler struct {
	linkService service.LinkService
	userService service.UserService
	leveling    service.LevelingService
}

// NewHandler creates a new bridge message handler
func NewHandler(linkService service.LinkService, userService service.UserService, leveling service.LevelingService) *Handler {
	return &Handler{
		linkService: linkService,
		userService: userService,
		leveling:    leveling,
	}
}

// Handle processes one inbound envelope and returns the response to send,
// or nil when the envelope carried no correlationId.
func (h *Handler) Handle(ctx context.Context, msg *Envelope) *Response {
	var resp *Response

	switch msg.Type {
	case msgTypeLinkCode:
		resp = h.handleLinkCode(ctx, msg)
	case msgTypeGetUser:
		resp = h.handleGetUser(ctx, msg)
	case msgTypeGiveXP:
		resp = h.handleGiveXP(ctx, msg)
	default:
		log.WithField("type", msg.Type).Warn("Unknown bridge message type")
		resp = &Response{
			Type:    "error",
			Success: false,
			Error:   fmt.Sprintf("Unknown message type: %s", msg.Type),
		}
	}

	if msg.CorrelationID == "" {
		return nil
	}
	resp.CorrelationID = msg.CorrelationID
	return resp
}

// handleLinkCode consumes "<steamId> <code>" and merges the two users the
// code connects. Every failure mode surfaces the same generic error string;
// which record blocked an ambiguous claim is never leaked over the wire.
func (h *Handler) handleLinkCode(ctx context.Context, msg *Envelope) *Response {
	resp := &Response{Type: msg.Type + "_response"}

	fields := strings.Fields(msg.Content)
	if len(fields) != 2 {
		resp.Error = "Invalid or expired code"
		return resp
	}
	steamID, code := fields[0], fields[1]

	result, err := h.linkService.Claim(ctx, steamID, code)
	if err != nil {
		if !errors.Is(err, service.ErrInvalidCode) {
			log.WithError(err).WithField("steamID", steamID).Error("Link claim failed")
		}
		resp.Error = "Invalid or expired code"
		return resp
	}

	resp.Success = true
	resp.Content = fmt.Sprintf("Linked accounts: balance %d, level %d", result.MergedBalance, result.MergedLevel)
	return resp
}

// handleGetUser resolves "<steamId> <displayName>", creating the user on
// first contact, and returns the serialized user
func (h *Handler) handleGetUser(ctx context.Context, msg *Envelope) *Response {
	resp := &Response{Type: msg.Type + "_response"}

	fields := strings.SplitN(strings.TrimSpace(msg.Content), " ", 2)
	if len(fields) != 2 || fields[1] == "" {
		resp.Error = "Expected content: <steamId> <displayName>"
		return resp
	}
	steamID, displayName := fields[0], fields[1]

	user, err := h.userService.GetOrCreateSteamUser(ctx, steamID, displayName)
	if err != nil {
		log.WithError(err).WithField("steamID", steamID).Error("Failed to resolve steam user")
		resp.Error = "Failed to resolve user"
		return resp
	}

	payload, err := json.Marshal(marshalUser(user))
	if err != nil {
		resp.Error = "Failed to serialize user"
		return resp
	}

	resp.Success = true
	resp.Content = string(payload)
	return resp
}

// handleGiveXP grants "<userId> <xpAmount>" through the leveling engine
func (h *Handler) handleGiveXP(ctx context.Context, msg *Envelope) *Response {
	resp := &Response{Type: msg.Type + "_response"}

	fields := strings.Fields(msg.Content)
	if len(fields) != 2 {
		resp.Error = "Expected content: <userId> <xpAmount>"
		return resp
	}

	userID, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		resp.Error = "Invalid user id"
		return resp
	}
	amount, err := strconv.Atoi(fields[1])
	if err != nil || amount <= 0 {
		resp.Error = "Invalid xp amount"
		return resp
	}

	grant, err := h.leveling.GrantXP(ctx, userID, amount, nil)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			resp.Error = "User not found"
		} else {
			log.WithError(err).WithField("userID", userID).Error("Bridge XP grant failed")
			resp.Error = "Failed to grant XP"
		}
		return resp
	}

	resp.Success = true
	resp.Content = fmt.Sprintf("Granted %d XP: level %d, xp %d", grant.AppliedXP, grant.NewLevel, grant.NewXP)
	return resp
}

func marshalUser(user *models.User) userPayload {
	return userPayload{
		ID:       user.ID,
		Username: user.Username,
		Balance:  user.Balance,
		XP:       user.XP,
		Level:    user.Level,
	}
}
