// Package storage backs the workflow's file collaborator with Supabase
// Storage. Objects live under shoots/{shoot_id}/{tier}/{filename}, one tier
// per workflow stage, so a file's position in the pipeline is readable from
// its path.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	storagego "github.com/supabase-community/storage-go"

	"shootflow-backend/internal/models"
	"shootflow-backend/internal/workflow"
)

type Client struct {
	client  *storagego.Client
	bucket  string
	baseURL string
}

func NewClient(supabaseURL, serviceRoleKey, bucket string) (*Client, error) {
	baseURL := strings.TrimRight(supabaseURL, "/")
	client := storagego.NewClient(baseURL+"/storage/v1", serviceRoleKey, nil)

	return &Client{
		client:  client,
		bucket:  bucket,
		baseURL: baseURL,
	}, nil
}

// stageTier maps a workflow stage onto its folder tier. Flagged files stay in
// the tier they were flagged from, so flagging never moves objects.
func stageTier(stage models.Stage) string {
	switch stage {
	case models.StageCompleted:
		return "completed"
	case models.StageVerified:
		return "final"
	default:
		return "todo"
	}
}

func objectPath(shootID uuid.UUID, stage models.Stage, filename string) string {
	return fmt.Sprintf("shoots/%s/%s/%s", shootID.String(), stageTier(stage), filename)
}

func (c *Client) Store(ctx context.Context, shootID uuid.UUID, stage models.Stage, filename string, data []byte, contentType string) (workflow.Handle, error) {
	path := objectPath(shootID, stage, filename)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	upsert := true
	_, err := c.client.UploadFile(c.bucket, path, bytes.NewReader(data), storagego.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}
	return workflow.Handle(path), nil
}

// Relocate moves an object into the target stage's tier. The move is keyed on
// the source path, so replaying it after a rollback is a no-op failure rather
// than a duplicate.
func (c *Client) Relocate(ctx context.Context, h workflow.Handle, target models.Stage) (workflow.Handle, error) {
	source := string(h)
	parts := strings.SplitN(source, "/", 4)
	if len(parts) != 4 || parts[0] != "shoots" {
		return "", fmt.Errorf("unrecognized storage path %q", source)
	}
	dest := fmt.Sprintf("shoots/%s/%s/%s", parts[1], stageTier(target), parts[3])
	if dest == source {
		return h, nil
	}
	if _, err := c.client.MoveFile(c.bucket, source, dest); err != nil {
		return "", fmt.Errorf("failed to move file: %w", err)
	}
	return workflow.Handle(dest), nil
}

func (c *Client) ResolveURL(h workflow.Handle) string {
	if h == "" {
		return ""
	}
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, c.bucket, string(h))
}

func (c *Client) Delete(ctx context.Context, h workflow.Handle) error {
	_, err := c.client.RemoveFile(c.bucket, []string{string(h)})
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// EnsureShootFolders creates the per-tier prefixes by writing a zero-byte
// keep marker in each. Supabase has no real folders; the markers make the
// tiers visible in the dashboard before any media lands.
func (c *Client) EnsureShootFolders(ctx context.Context, shootID uuid.UUID) error {
	upsert := true
	contentType := "text/plain"
	for _, tier := range []string{"todo", "completed", "final"} {
		path := fmt.Sprintf("shoots/%s/%s/.keep", shootID.String(), tier)
		_, err := c.client.UploadFile(c.bucket, path, bytes.NewReader(nil), storagego.FileOptions{
			ContentType: &contentType,
			Upsert:      &upsert,
		})
		if err != nil {
			return fmt.Errorf("failed to create %s folder: %w", tier, err)
		}
	}
	return nil
}

// DeleteShootFiles removes everything under a shoot's prefix. Used by
// archival, never by the request path.
func (c *Client) DeleteShootFiles(ctx context.Context, shootID uuid.UUID) error {
	prefix := fmt.Sprintf("shoots/%s/", shootID.String())
	files, err := c.client.ListFiles(c.bucket, prefix, storagego.FileSearchOptions{Limit: 1000})
	if err != nil {
		return fmt.Errorf("failed to list files: %w", err)
	}
	if len(files) == 0 {
		return nil
	}
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Name
	}
	if _, err := c.client.RemoveFile(c.bucket, paths); err != nil {
		return fmt.Errorf("failed to delete files: %w", err)
	}
	return nil
}
