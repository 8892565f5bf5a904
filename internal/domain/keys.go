package domain

type CtxKey string

const (
	KeyIdentity  CtxKey = "Identity"
	KeyRequestID CtxKey = "RequestID"
)

// Identity is the authenticated caller, resolved once by the session
// middleware and passed explicitly to every usecase that needs it.
type Identity struct {
	UserID    string
	Name      string
	Email     string
	SessionID string
}

func (i Identity) Authenticated() bool {
	return i.UserID != ""
}

// IdentityFromSession builds an Identity out of a stored session.
func IdentityFromSession(s *Session) Identity {
	return Identity{
		UserID:    s.Payload.UserID,
		Name:      s.Payload.Name,
		Email:     s.Payload.Email,
		SessionID: s.ID,
	}
}
