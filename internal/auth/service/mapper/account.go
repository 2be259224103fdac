package mapper

import (
	accountdomain "github.com/AlibekovAA/inference-auth/internal/account/domain"
	authdto "github.com/AlibekovAA/inference-auth/internal/auth/service/dto"
)

func AccountToDTO(account accountdomain.Account) authdto.Account {
	view := account.Public()
	return authdto.Account{
		ID:          string(view.ID),
		Email:       view.Email,
		DisplayName: view.DisplayName,
	}
}
