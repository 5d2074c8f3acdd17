package bot

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"steward/bot/common"
	"steward/models"
)

// DMNotifier delivers link-flow notifications by direct message. It is
// constructed before the Discord session exists and bound to one via Bind;
// notifications raised before binding are dropped with a log line. Delivery
// is best effort; users who block DMs just miss the heads-up.
type DMNotifier struct {
	mu      sync.RWMutex
	session *discordgo.Session
}

func NewNotifier() *DMNotifier {
	return &DMNotifier{}
}

// Bind attaches the connected Discord session
func (n *DMNotifier) Bind(session *discordgo.Session) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.session = session
}

func (n *DMNotifier) getSession() *discordgo.Session {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.session
}

func (n *DMNotifier) NotifyCodeExpired(discordID string) {
	session := n.getSession()
	if session == nil {
		log.Warnf("Dropping expiry notification for %s: no Discord session bound", discordID)
		return
	}

	channel, err := session.UserChannelCreate(discordID)
	if err != nil {
		log.Errorf("Error opening DM channel for %s: %v", discordID, err)
		return
	}

	_, err = session.ChannelMessageSend(channel.ID, "⌛ Your link code expired before it was used. Run `/link` again to get a new one.")
	if err != nil {
		log.Errorf("Error sending expiry notification to %s: %v", discordID, err)
	}
}

func (n *DMNotifier) NotifyLinkSuccess(discordID string, result *models.MergeResult) {
	session := n.getSession()
	if session == nil {
		log.Warnf("Dropping link notification for %s: no Discord session bound", discordID)
		return
	}

	channel, err := session.UserChannelCreate(discordID)
	if err != nil {
		log.Errorf("Error opening DM channel for %s: %v", discordID, err)
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:       "🔗 Accounts Linked",
		Description: "Your Steam account is now linked. Progress from both accounts has been combined.",
		Color:       0x57F287,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Balance",
				Value:  fmt.Sprintf("%s$", common.FormatBalance(result.MergedBalance)),
				Inline: true,
			},
			{
				Name:   "Level",
				Value:  fmt.Sprintf("%d", result.MergedLevel),
				Inline: true,
			},
			{
				Name:   "Badges Carried Over",
				Value:  fmt.Sprintf("%d", result.BadgesTransferred),
				Inline: true,
			},
		},
	}

	_, err = session.ChannelMessageSendEmbed(channel.ID, embed)
	if err != nil {
		log.Errorf("Error sending link notification to %s: %v", discordID, err)
	}
}
