package models

// MUser is the identity delivered by the session source. A nil *MUser means
// signed out.
type MUser struct {
	UID         string `json:"uid"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL,omitempty"`
	Email       string `json:"email,omitempty"`
	SessionID   string `json:"sessionId,omitempty"`
}
