package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/annapurna-pos/api/internal/enum"
)

// ErrAuthFailed covers every credential rejection from the staff service,
// including staff records whose type maps to no known role.
var ErrAuthFailed = errors.New("invalid username or password")

// StaffUser is the authenticated staff profile returned by the remote
// service. It never carries credential material.
type StaffUser struct {
	ID             int64
	Name           string
	Role           enum.Role
	RestaurantName string
}

// Client authenticates staff against the remote staff service. The service
// holds the credentials and returns the verdict; no password comparison
// happens on this side.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates an auth client against the staff service base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type verifyRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type verifyResponse struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	EmployeeTypeID int    `json:"employeeTypeId"`
	RestaurantName string `json:"restaurantName"`
}

// Authenticate submits the credentials for verification. Owners
// authenticate against the client endpoint, staff against the employee
// endpoint; staff roles derive from the employee type.
func (c *Client) Authenticate(ctx context.Context, username, password string, owner bool) (StaffUser, error) {
	endpoint := c.baseURL + "/Employee/Verify"
	if owner {
		endpoint = c.baseURL + "/Client/Verify"
	}

	body, err := json.Marshal(verifyRequest{Username: username, Password: password})
	if err != nil {
		return StaffUser{}, fmt.Errorf("marshal credentials: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return StaffUser{}, fmt.Errorf("build auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return StaffUser{}, fmt.Errorf("auth request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusNotFound, http.StatusForbidden:
		return StaffUser{}, ErrAuthFailed
	default:
		return StaffUser{}, fmt.Errorf("auth request: unexpected status %d", resp.StatusCode)
	}

	var vr verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		return StaffUser{}, fmt.Errorf("decode auth response: %w", err)
	}

	role, err := roleFor(owner, vr.EmployeeTypeID)
	if err != nil {
		return StaffUser{}, err
	}

	return StaffUser{
		ID:             vr.ID,
		Name:           vr.Name,
		Role:           role,
		RestaurantName: vr.RestaurantName,
	}, nil
}

// roleFor maps the staff service's employee type to a role. Unmapped types
// are denied outright rather than given a fallback role.
func roleFor(owner bool, employeeTypeID int) (enum.Role, error) {
	if owner {
		return enum.RoleOwner, nil
	}
	switch employeeTypeID {
	case 1:
		return enum.RoleAdmin, nil
	case 2:
		return enum.RoleEmployee, nil
	case 3:
		return enum.RoleKitchen, nil
	}
	return "", ErrAuthFailed
}
