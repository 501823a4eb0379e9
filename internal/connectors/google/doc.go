// Package google provides shared infrastructure for the Google Cloud adapters.
//
// The blob store (Cloud Storage) and the recognizer (Cloud Vision) use it to:
//   - resolve credentials from a service account file or the environment
//   - create authenticated API clients
//   - classify googleapi errors (404, 412, 429)
//
// # Usage
//
//	opts, err := google.ClientOptions(ctx, credentialsFile, google.StorageScope)
//	svc, err := google.NewStorageService(ctx, opts...)
//
// # OAuth2 Scopes
//
//   - https://www.googleapis.com/auth/devstorage.read_write
//   - https://www.googleapis.com/auth/cloud-vision
package google
