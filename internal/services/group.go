package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	livestockrepo "github.com/bovipred/bovipred-backend/internal/data/repos/livestock"
	types "github.com/bovipred/bovipred-backend/internal/domain"
	"github.com/bovipred/bovipred-backend/internal/domain/audit"
	"github.com/bovipred/bovipred-backend/internal/pkg/apperr"
	"github.com/bovipred/bovipred-backend/internal/platform/logger"
)

type GroupInput struct {
	Name        string `json:"nombre"`
	Description string `json:"descripcion"`
	Active      *bool  `json:"activo"`
}

// GroupStats summarizes a group's animals and breeding outcomes.
type GroupStats struct {
	Group          *types.Group `json:"grupo"`
	TotalAnimals   int          `json:"total_animales"`
	TotalEvents    int          `json:"total_registros"`
	ConfirmedCount int          `json:"total_preneces"`
	PregnancyRate  float64      `json:"tasa_prenez"`
}

type GroupService interface {
	Create(ctx context.Context, in GroupInput) (*types.Group, error)
	List(ctx context.Context, activeOnly bool) ([]*types.Group, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Group, error)
	Update(ctx context.Context, id uuid.UUID, in GroupInput) (*types.Group, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context, id uuid.UUID) (*GroupStats, error)
}

type groupService struct {
	db       *gorm.DB
	log      *logger.Logger
	groups   livestockrepo.GroupRepo
	animals  livestockrepo.AnimalRepo
	iatf     livestockrepo.IATFRecordRepo
	activity ActivityLogService
}

func NewGroupService(
	db *gorm.DB,
	log *logger.Logger,
	groups livestockrepo.GroupRepo,
	animals livestockrepo.AnimalRepo,
	iatf livestockrepo.IATFRecordRepo,
	activity ActivityLogService,
) GroupService {
	return &groupService{
		db:       db,
		log:      log.With("service", "GroupService"),
		groups:   groups,
		animals:  animals,
		iatf:     iatf,
		activity: activity,
	}
}

func (s *groupService) Create(ctx context.Context, in GroupInput) (*types.Group, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.ValidationField("nombre", "requerido")
	}

	existing, err := s.groups.GetByName(ctx, nil, name)
	if err != nil {
		return nil, apperr.FromDB(err)
	}
	if existing != nil {
		return nil, apperr.Conflict("ya existe un grupo con ese nombre")
	}

	group := &types.Group{
		ID:          uuid.New(),
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Active:      true,
	}
	if in.Active != nil {
		group.Active = *in.Active
	}
	if err := s.groups.Create(ctx, nil, group); err != nil {
		return nil, apperr.FromDB(err)
	}

	s.activity.Record(ctx, audit.ActionCreate, "Grupo", &group.ID, "Grupo creado: "+group.Name)
	return group, nil
}

func (s *groupService) List(ctx context.Context, activeOnly bool) ([]*types.Group, error) {
	rows, err := s.groups.List(ctx, nil, activeOnly)
	if err != nil {
		return nil, apperr.FromDB(err)
	}
	return rows, nil
}

func (s *groupService) Get(ctx context.Context, id uuid.UUID) (*types.Group, error) {
	group, err := s.groups.GetByID(ctx, nil, id)
	if err != nil {
		return nil, apperr.FromDB(err)
	}
	if group == nil {
		return nil, apperr.NotFound("grupo no encontrado")
	}
	return group, nil
}

func (s *groupService) Update(ctx context.Context, id uuid.UUID, in GroupInput) (*types.Group, error) {
	group, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	before := *group

	if name := strings.TrimSpace(in.Name); name != "" && name != group.Name {
		other, err := s.groups.GetByName(ctx, nil, name)
		if err != nil {
			return nil, apperr.FromDB(err)
		}
		if other != nil && other.ID != group.ID {
			return nil, apperr.Conflict("ya existe un grupo con ese nombre")
		}
		group.Name = name
	}
	if in.Description != "" {
		group.Description = strings.TrimSpace(in.Description)
	}
	if in.Active != nil {
		group.Active = *in.Active
	}

	if err := s.groups.Update(ctx, nil, group); err != nil {
		return nil, apperr.FromDB(err)
	}
	s.activity.RecordChange(ctx, audit.ActionUpdate, "Grupo", &group.ID, "Grupo actualizado: "+group.Name, before, group)
	return group, nil
}

func (s *groupService) Delete(ctx context.Context, id uuid.UUID) error {
	group, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	n, err := s.animals.CountByGroup(ctx, nil, id)
	if err != nil {
		return apperr.FromDB(err)
	}
	if n > 0 {
		return apperr.Conflict("el grupo tiene animales asignados")
	}

	if err := s.groups.Delete(ctx, nil, id); err != nil {
		return apperr.FromDB(err)
	}
	s.activity.Record(ctx, audit.ActionDelete, "Grupo", &group.ID, "Grupo eliminado: "+group.Name)
	return nil
}

func (s *groupService) Stats(ctx context.Context, id uuid.UUID) (*GroupStats, error) {
	group, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	animals, err := s.animals.ListActiveByGroup(ctx, nil, id)
	if err != nil {
		return nil, apperr.FromDB(err)
	}

	stats := &GroupStats{Group: group, TotalAnimals: len(animals)}
	for _, a := range animals {
		events, err := s.iatf.ListByAnimal(ctx, nil, a.ID)
		if err != nil {
			return nil, apperr.FromDB(err)
		}
		stats.TotalEvents += len(events)
		for _, e := range events {
			if e.PregnancyConfirmed != nil && *e.PregnancyConfirmed {
				stats.ConfirmedCount++
			}
		}
	}
	stats.PregnancyRate = rate(stats.ConfirmedCount, stats.TotalEvents)
	return stats, nil
}
