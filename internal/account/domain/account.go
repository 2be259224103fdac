package domain

import "time"

type ID string

type Account struct {
	ID                  ID
	Email               string
	PasswordHash        string
	DisplayName         string
	CreatedAt           time.Time
	LastAuthenticatedAt *time.Time
}

// PublicView is the part of an account that may leave the service.
type PublicView struct {
	ID          ID
	Email       string
	DisplayName string
}

func (a Account) Public() PublicView {
	return PublicView{
		ID:          a.ID,
		Email:       a.Email,
		DisplayName: a.DisplayName,
	}
}
