package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// Ensure AzureBlobStore implements Store at compile time.
var _ Store = (*AzureBlobStore)(nil)

const jsonContentType = "application/json; charset=utf-8"

// AzureBlobStore uploads documents as block blobs.
type AzureBlobStore struct {
	client *azblob.Client

	mu      sync.Mutex
	created map[string]bool
}

// NewAzureBlobStore connects with a storage account connection string.
func NewAzureBlobStore(connectionString string) (*AzureBlobStore, error) {
	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}
	return &AzureBlobStore{client: client, created: make(map[string]bool)}, nil
}

func (s *AzureBlobStore) Store(ctx context.Context, container, key string, document []byte) (string, error) {
	name, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	if err := s.ensureContainer(ctx, container); err != nil {
		return "", err
	}

	contentType := jsonContentType
	_, err = s.client.UploadBuffer(ctx, container, name, document, &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload blob %s/%s: %w", container, name, err)
	}

	return strings.TrimSuffix(s.client.URL(), "/") + "/" + container + "/" + name, nil
}

func (s *AzureBlobStore) ensureContainer(ctx context.Context, container string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.created[container] {
		return nil
	}
	_, err := s.client.CreateContainer(ctx, container, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return fmt.Errorf("failed to create container %s: %w", container, err)
	}
	s.created[container] = true
	return nil
}
