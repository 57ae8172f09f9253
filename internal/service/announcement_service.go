package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/unierp-backend/internal/model"
	"github.com/stemsi/unierp-backend/internal/repository"
)

const announcementFeedLimit = 50

// AnnouncementService manages campus-wide and per-offering announcements.
type AnnouncementService struct {
	announcementRepo *repository.AnnouncementRepository
	offeringRepo     *repository.OfferingRepository
	log              zerolog.Logger
}

// NewAnnouncementService creates a new AnnouncementService.
func NewAnnouncementService(
	announcementRepo *repository.AnnouncementRepository,
	offeringRepo *repository.OfferingRepository,
	log zerolog.Logger,
) *AnnouncementService {
	return &AnnouncementService{
		announcementRepo: announcementRepo,
		offeringRepo:     offeringRepo,
		log:              log.With().Str("component", "announcement_service").Logger(),
	}
}

// Feed returns the announcements visible to the actor.
func (s *AnnouncementService) Feed(ctx context.Context, actor Actor) ([]model.Announcement, error) {
	switch actor.Role {
	case model.RoleStudent:
		return s.announcementRepo.ListForStudent(ctx, actor.ID, announcementFeedLimit)
	case model.RoleProfessor:
		return s.announcementRepo.ListForProfessor(ctx, actor.ID, announcementFeedLimit)
	default:
		return s.announcementRepo.ListAll(ctx, announcementFeedLimit)
	}
}

// Create posts an announcement. Professors post only to offerings they
// teach; only administrators post campus-wide.
func (s *AnnouncementService) Create(ctx context.Context, actor Actor, req model.CreateAnnouncementRequest) (*model.Announcement, error) {
	if req.OfferingID == nil {
		if !actor.IsAdmin() {
			return nil, ErrForbidden
		}
	} else if err := authorizeTeaching(ctx, s.offeringRepo, actor, *req.OfferingID); err != nil {
		return nil, err
	}

	a := &model.Announcement{
		OfferingID: req.OfferingID,
		AuthorID:   actor.ID,
		Title:      req.Title,
		Body:       req.Body,
	}
	if err := s.announcementRepo.Create(ctx, a); err != nil {
		return nil, err
	}
	s.log.Info().Str("announcement_id", a.ID.String()).Msg("Announcement posted")
	return a, nil
}

// Delete removes an announcement posted by the actor, or any announcement for an administrator.
func (s *AnnouncementService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	author, err := s.announcementRepo.GetAuthor(ctx, id)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() && author != actor.ID {
		return ErrForbidden
	}
	return s.announcementRepo.Delete(ctx, id)
}
