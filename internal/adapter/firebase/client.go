// Package firebase adapts the Firebase Realtime Database to the directory
// and log ports. Records live under the locataires, proprietes,
// remindersLogs and messages collections.
package firebase

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/db"
	"google.golang.org/api/option"
)

// NewClient connects to the Realtime Database. Credentials resolve to
// Application Default Credentials unless a service-account file is given.
func NewClient(ctx context.Context, databaseURL, credentialsFile string) (*db.Client, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{DatabaseURL: databaseURL}, opts...)
	if err != nil {
		return nil, fmt.Errorf("initializing firebase app: %w", err)
	}

	client, err := app.Database(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating database client: %w", err)
	}
	return client, nil
}
