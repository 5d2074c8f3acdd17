package wsbridge

// Envelope is the inbound wire message from a game server
type Envelope struct {
	Type          string `json:"type"`
	Content       string `json:"content"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Response is the outbound wire message. It is only sent when the inbound
// envelope carried a correlationId.
type Response struct {
	Type          string `json:"type"`
	CorrelationID string `json:"correlationId"`
	Success       bool   `json:"success"`
	Content       string `json:"content,omitempty"`
	Error         string `json:"error,omitempty"`
}

// Inbound message types
const (
	msgTypeLinkCode = "linkCode_steam"
	msgTypeGetUser  = "getUser_steam"
	msgTypeGiveXP   = "giveXP"
)

// userPayload is the serialized user shape returned to game servers
type userPayload struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Balance  int64  `json:"balance"`
	XP       int    `json:"xp"`
	Level    int    `json:"level"`
}
