package httpapi

import (
	"strings"
	"time"

	"github.com/kvetinski/fintech-account/internal/domain"
)

type createAccountRequest struct {
	Name    string `json:"name"`
	PhoneNr string `json:"phoneNr"`
}

func (r createAccountRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return domain.ValidationFailed("name", "Name is required")
	}

	return nil
}

// updateAccountRequest fields are optional; blank values leave the stored
// value unchanged. Values are validated by the service once the account is
// known to exist.
type updateAccountRequest struct {
	Name    string `json:"name"`
	PhoneNr string `json:"phoneNr"`
}

type accountResponse struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	PhoneNr      string     `json:"phoneNr,omitempty"`
	IsActive     *bool      `json:"isActive,omitempty"`
	CreatedTime  time.Time  `json:"createdTime"`
	ModifiedTime time.Time  `json:"modifiedTime"`
	DeletedTime  *time.Time `json:"deletedTime,omitempty"`
}

func toAccountResponse(a domain.Account) accountResponse {
	resp := accountResponse{
		ID:           a.ID,
		Name:         a.Name,
		PhoneNr:      a.PhoneNumber,
		CreatedTime:  a.CreatedAt,
		ModifiedTime: a.ModifiedAt,
		DeletedTime:  a.DeletedAt,
	}
	if a.IsActive() {
		active := true
		resp.IsActive = &active
	}

	return resp
}
