package location

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound    = errors.New("location not found")
	ErrDuplicate   = errors.New("location name already exists")
	ErrNameMissing = errors.New("name is required")
)

type Location struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=location
type Repository interface {
	ListLocations(ctx context.Context) ([]*Location, error)
	CreateLocation(ctx context.Context, name string) (*Location, error)
	GetLocation(ctx context.Context, id int64) (*Location, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]*Location, error) {
	locations, err := s.repo.ListLocations(ctx)
	if err != nil {
		return nil, err
	}

	if locations == nil {
		locations = []*Location{}
	}

	return locations, nil
}

func (s *Service) Create(ctx context.Context, name string) (*Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameMissing
	}

	return s.repo.CreateLocation(ctx, name)
}

// Name returns the location's name, or "" when the id is unknown.
func (s *Service) Name(ctx context.Context, id int64) (string, error) {
	loc, err := s.repo.GetLocation(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil
		}

		return "", err
	}

	return loc.Name, nil
}
