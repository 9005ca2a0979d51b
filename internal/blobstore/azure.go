package blobstore

import (
	"context"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/KugaChihiro/vr-queue/internal/logger"
)

type azureStore struct {
	client    *azblob.Client
	container string
	logger    logger.Logger
}

// NewAzure creates a Store backed by an Azure Storage container.
func NewAzure(connectionString, container string, log logger.Logger) (Store, error) {
	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("create blob client: %w", err)
	}
	return &azureStore{
		client:    client,
		container: container,
		logger:    log,
	}, nil
}

func (s *azureStore) Upload(ctx context.Context, name string, data []byte) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: %w", ErrUpload, ErrInvalidName)
	}
	if _, err := s.client.UploadBuffer(ctx, s.container, name, data, nil); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrUpload, name, err)
	}
	url := s.client.ServiceClient().NewContainerClient(s.container).NewBlobClient(name).URL()
	s.logger.Debug(ctx, "Blob uploaded: %s (%d bytes)", url, len(data))
	return url, nil
}

func (s *azureStore) Download(ctx context.Context, name string) ([]byte, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: %w", ErrDownload, ErrInvalidName)
	}
	resp, err := s.client.DownloadStream(ctx, s.container, name, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDownload, name, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrDownload, name, err)
	}
	return data, nil
}

func (s *azureStore) Delete(ctx context.Context, name string) error {
	if _, err := s.client.DeleteBlob(ctx, s.container, name, nil); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDelete, name, err)
	}
	s.logger.Debug(ctx, "Blob deleted: %s", name)
	return nil
}
