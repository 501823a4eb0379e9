package google

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/storage/v1"
	"google.golang.org/api/vision/v1"
)

// Scopes requested by the adapters.
const (
	StorageScope = storage.DevstorageReadWriteScope
	VisionScope  = vision.CloudVisionScope
)

// TokenSource returns a token source for scopes. A non-empty credentialsFile
// names a service account key; otherwise Application Default Credentials
// are used.
func TokenSource(ctx context.Context, credentialsFile string, scopes ...string) (oauth2.TokenSource, error) {
	if credentialsFile == "" {
		ts, err := googleoauth.DefaultTokenSource(ctx, scopes...)
		if err != nil {
			return nil, fmt.Errorf("default credentials: %w", err)
		}
		return ts, nil
	}

	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	creds, err := googleoauth.CredentialsFromJSON(ctx, data, scopes...)
	if err != nil {
		return nil, fmt.Errorf("parse credentials %s: %w", credentialsFile, err)
	}
	return creds.TokenSource, nil
}

// ClientOptions builds the client options for an authenticated service.
func ClientOptions(ctx context.Context, credentialsFile string, scopes ...string) ([]option.ClientOption, error) {
	ts, err := TokenSource(ctx, credentialsFile, scopes...)
	if err != nil {
		return nil, err
	}
	return []option.ClientOption{option.WithTokenSource(ts)}, nil
}

// NewStorageService creates a Cloud Storage JSON API client.
func NewStorageService(ctx context.Context, opts ...option.ClientOption) (*storage.Service, error) {
	return storage.NewService(ctx, opts...)
}

// NewVisionService creates a Cloud Vision API client.
func NewVisionService(ctx context.Context, opts ...option.ClientOption) (*vision.Service, error) {
	return vision.NewService(ctx, opts...)
}
