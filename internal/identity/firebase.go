package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// Firebase implements Provider against the Identity Toolkit REST API.
type Firebase struct {
	endpoint string
	apiKey   string
	http     *http.Client
	logger   *slog.Logger
}

// NewFirebase creates a provider. endpoint is the API root, e.g. https://identitytoolkit.googleapis.com/v1.
func NewFirebase(endpoint, apiKey string, httpClient *http.Client, logger *slog.Logger) *Firebase {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Firebase{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		http:     httpClient,
		logger:   logger,
	}
}

type firebaseRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type firebaseResponse struct {
	LocalID string `json:"localId"`
	Email   string `json:"email"`
}

type firebaseErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Authenticate calls accounts:signInWithPassword.
func (f *Firebase) Authenticate(ctx context.Context, email, password string) (string, error) {
	return f.call(ctx, "accounts:signInWithPassword", email, password)
}

// Register calls accounts:signUp.
func (f *Firebase) Register(ctx context.Context, email, password string) (string, error) {
	return f.call(ctx, "accounts:signUp", email, password)
}

func (f *Firebase) call(ctx context.Context, method, email, password string) (string, error) {
	body, err := json.Marshal(firebaseRequest{Email: email, Password: password, ReturnSecureToken: true})
	if err != nil {
		return "", unspecified(err)
	}

	u := f.endpoint + "/" + method + "?key=" + url.QueryEscape(f.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return "", unspecified(err)
	}
	req.Header.Set("Content-Type", "application/json")

	f.logger.Debug("identity request", "provider", "firebase", "method", method)

	resp, err := f.http.Do(req)
	if err != nil {
		return "", unspecified(fmt.Errorf("execute request: %w", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", unspecified(fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		var eb firebaseErrorBody
		if err := json.Unmarshal(raw, &eb); err != nil {
			return "", unspecified(fmt.Errorf("status %d", resp.StatusCode))
		}
		return "", mapFirebaseError(eb.Error.Message)
	}

	var out firebaseResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", unspecified(fmt.Errorf("decode response: %w", err))
	}
	if out.LocalID == "" {
		return "", unspecified(errors.New("response carried no localId"))
	}
	return out.LocalID, nil
}

// mapFirebaseError translates an Identity Toolkit error message such as
// "WEAK_PASSWORD : Password should be at least 6 characters" into a named condition.
func mapFirebaseError(message string) error {
	code, _, _ := strings.Cut(message, " ")
	switch code {
	case "EMAIL_NOT_FOUND":
		return ErrUserNotFound
	case "INVALID_PASSWORD":
		return ErrWrongPassword
	case "INVALID_EMAIL", "MISSING_EMAIL":
		return ErrInvalidEmail
	case "INVALID_LOGIN_CREDENTIALS", "INVALID_IDP_RESPONSE", "USER_DISABLED", "CREDENTIAL_TOO_OLD_LOGIN_AGAIN":
		return ErrInvalidCredential
	case "EMAIL_EXISTS":
		return ErrEmailInUse
	case "WEAK_PASSWORD", "MISSING_PASSWORD":
		return ErrWeakPassword
	default:
		return unspecified(fmt.Errorf("provider error %q", message))
	}
}
