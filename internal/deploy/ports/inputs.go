package ports

import (
	"context"

	"github.com/matthiasmetzen/helm/internal/deploy/domain"
)

// DeployUseCase is the driving port for running the deployment pipeline.
type DeployUseCase interface {
	Execute(ctx context.Context, cfg *domain.Config) error
}
