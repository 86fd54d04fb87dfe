package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kvetinski/fintech-account/internal/domain"
)

const maxBodyBytes = 1 << 20

type AccountService interface {
	Create(ctx context.Context, name, phone string) (domain.Account, error)
	GetByID(ctx context.Context, id int64) (domain.Account, error)
	Update(ctx context.Context, id int64, name, phone string) (domain.Account, error)
	Delete(ctx context.Context, id int64) error
}

type AccountHandler struct {
	accounts AccountService
}

func NewAccountHandler(accounts AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondDomainError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		respondDomainError(w, r, err)
		return
	}

	acc, err := h.accounts.Create(r.Context(), req.Name, req.PhoneNr)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusCreated, toAccountResponse(acc))
}

func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := accountID(r)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	acc, err := h.accounts.GetByID(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, toAccountResponse(acc))
}

func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := accountID(r)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	var req updateAccountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondDomainError(w, r, err)
		return
	}

	acc, err := h.accounts.Update(r.Context(), id, req.Name, req.PhoneNr)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, toAccountResponse(acc))
}

func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := accountID(r)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	if err := h.accounts.Delete(r.Context(), id); err != nil {
		respondDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func accountID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ValidationFailed("id", "must be a positive integer")
	}

	return id, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.ValidationFailed("body", "malformed JSON")
	}

	return nil
}
