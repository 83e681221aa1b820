package models

// Identity is an immutable snapshot of the authenticated subject as reported
// by the identity provider. Produced once per session change; never persisted
// by this client (the provider owns persistence and refresh).
type Identity struct {
	SubjectID   string `json:"uid"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	AvatarURL   string `json:"photoURL"`
}

// Contributor converts the identity into the addedBy stamp used on create.
func (i Identity) Contributor() Contributor {
	name := i.DisplayName
	if name == "" {
		name = "Anonymous"
	}
	return Contributor{Name: name, Email: i.Email, SubjectID: i.SubjectID}
}
