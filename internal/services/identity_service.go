package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"artemis/internal/repositories"
	"artemis/internal/utils"
)

// IdentityAdmin overwrites an account's credential by internal id.
type IdentityAdmin interface {
	UpdatePassword(ctx context.Context, userID uuid.UUID, newPassword string) error
}

type localIdentityAdmin struct {
	users repositories.AuthUserRepository
	auth  AuthService
}

// NewLocalIdentityAdmin stores bcrypt hashes in auth_users.
func NewLocalIdentityAdmin(users repositories.AuthUserRepository, auth AuthService) IdentityAdmin {
	return &localIdentityAdmin{users: users, auth: auth}
}

func (a *localIdentityAdmin) UpdatePassword(ctx context.Context, userID uuid.UUID, newPassword string) error {
	hash, err := a.auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return a.users.UpdatePasswordHash(ctx, userID, hash)
}

type gotrueIdentityAdmin struct {
	baseURL    string
	serviceKey string
	http       *http.Client
}

// NewGoTrueIdentityAdmin talks to a hosted GoTrue admin API with a service-role key.
func NewGoTrueIdentityAdmin(baseURL, serviceKey string) IdentityAdmin {
	return &gotrueIdentityAdmin{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		http:       &http.Client{Timeout: 15 * time.Second},
	}
}

func (a *gotrueIdentityAdmin) UpdatePassword(ctx context.Context, userID uuid.UUID, newPassword string) error {
	payload, err := json.Marshal(map[string]string{"password": newPassword})
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/auth/v1/admin/users/%s", a.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("apikey", a.serviceKey)
	req.Header.Set("Authorization", "Bearer "+a.serviceKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := utils.CheckStatus(a.http.Do(req))
	if err != nil {
		return fmt.Errorf("gotrue update user: %w", err)
	}
	return resp.Body.Close()
}
