// Package firebase builds the Firebase Auth client used to verify ID tokens
// at federated login.
package firebase

import (
	"context"
	"errors"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// ErrNotConfigured means no credentials file was configured. Federated login
// is optional and the server runs without it.
var ErrNotConfigured = errors.New("firebase credentials path not provided")

// NewAuthClient reads a service-account file and returns an Auth client.
func NewAuthClient(ctx context.Context, credentialsPath string) (*auth.Client, error) {
	if credentialsPath == "" {
		return nil, ErrNotConfigured
	}
	if _, err := os.Stat(credentialsPath); err != nil {
		return nil, fmt.Errorf("firebase credentials %s: %w", credentialsPath, err)
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase auth: %w", err)
	}

	zap.L().Info("Firebase auth client initialized", zap.String("credentials", credentialsPath))
	return client, nil
}
