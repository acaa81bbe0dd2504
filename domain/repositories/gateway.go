package repositories

import (
	"context"

	"github.com/satriahrh/dijiang/domain"
)

// Gateway is the uniform request/response boundary to the remote services.
// Non-success statuses and transport failures are returned as *domain.Error.
// Implementations never retry.
type Gateway interface {
	PostJSON(ctx context.Context, endpoint string, payload any) (*domain.ServiceResponse, error)
	PostMultipart(ctx context.Context, endpoint string, file Upload) (*domain.ServiceResponse, error)
}

// Upload is a binary file sent as a named multipart field
type Upload struct {
	FieldName   string
	Filename    string
	ContentType string
	Data        []byte
}
