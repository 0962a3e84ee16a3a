package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"artemis/internal/models"
	"artemis/internal/pdf"
	"artemis/internal/repositories"
)

var (
	ErrUnknownSection = errors.New("unknown section")
	ErrNegativePoints = errors.New("totalPoints must not be negative")
	ErrFormNotFound   = errors.New("form not found")
)

type FormService interface {
	// Get returns the saved draft, or an empty one when the user has not saved yet.
	Get(ctx context.Context, userID uuid.UUID) (*models.FormContent, error)
	Save(ctx context.Context, userID uuid.UUID, content models.FormContent) (*models.FormData, error)
	// ExportPDF renders the saved draft into a fresh file and returns its path.
	// The caller removes the file once served.
	ExportPDF(ctx context.Context, userID uuid.UUID) (string, error)
}

type formService struct {
	forms    repositories.FormRepository
	profiles repositories.ProfileRepository
	docs     pdf.Generator
	log      *zap.Logger
	now      func() time.Time
}

func NewFormService(forms repositories.FormRepository, profiles repositories.ProfileRepository, docs pdf.Generator, log *zap.Logger) FormService {
	return &formService{
		forms:    forms,
		profiles: profiles,
		docs:     docs,
		log:      log.Named("forms"),
		now:      time.Now,
	}
}

func (s *formService) Get(ctx context.Context, userID uuid.UUID) (*models.FormContent, error) {
	fd, err := s.forms.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if fd == nil {
		empty := models.EmptyFormContent()
		return &empty, nil
	}
	return &fd.FormContent, nil
}

func (s *formService) Save(ctx context.Context, userID uuid.UUID, content models.FormContent) (*models.FormData, error) {
	if content.TotalPoints < 0 {
		return nil, ErrNegativePoints
	}
	sections, err := normalizeSections(content.CompletedSections)
	if err != nil {
		return nil, err
	}
	content.CompletedSections = sections
	if content.Achievements == nil {
		content.Achievements = []int{}
	}
	if content.FormData.Sedes == nil {
		content.FormData.Sedes = []models.Sede{}
	}
	if content.FormData.ServiciosHabilitados == nil {
		content.FormData.ServiciosHabilitados = []models.ServicioHabilitado{}
	}
	assignSingleSede(&content.FormData)

	now := s.now().UTC()
	content.LastSaved = &now

	fd, err := s.forms.Upsert(ctx, userID, content)
	if err != nil {
		s.log.Error("[forms][save] upsert failed", zap.Stringer("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return fd, nil
}

func (s *formService) ExportPDF(ctx context.Context, userID uuid.UUID) (string, error) {
	fd, err := s.forms.GetByUserID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if fd == nil {
		return "", ErrFormNotFound
	}
	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrStorage, err)
	}
	data := pdf.FormSummaryData{
		Content:   fd.FormContent,
		CreatedAt: s.now(),
		Filename:  FormPDFName(userID),
	}
	if profile != nil {
		data.OwnerName = profile.DisplayName()
		data.OwnerEmail = profile.Email
	}
	path, err := s.docs.GenerateFormSummary(data)
	if err != nil {
		s.log.Error("[forms][pdf] generate failed", zap.Stringer("user_id", userID), zap.Error(err))
		return "", fmt.Errorf("generate form pdf: %w", err)
	}
	return path, nil
}

// FormPDFName is the download name of a user's form export.
func FormPDFName(userID uuid.UUID) string {
	return fmt.Sprintf("formulario_%s.pdf", userID)
}

// normalizeSections rejects unknown keys and drops duplicates, keeping first-seen order.
func normalizeSections(in []string) ([]string, error) {
	known := make(map[string]bool, len(models.FormSections))
	for _, s := range models.FormSections {
		known[s] = true
	}
	out := make([]string, 0, len(in))
	seen := map[string]bool{}
	for _, s := range in {
		if !known[s] {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSection, s)
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out, nil
}

// assignSingleSede points every service at the site when exactly one site has a name.
func assignSingleSede(form *models.FacilityForm) {
	var names []string
	for _, sede := range form.Sedes {
		if sede.NombreSede != "" {
			names = append(names, sede.NombreSede)
		}
	}
	if len(names) != 1 {
		return
	}
	for i := range form.ServiciosHabilitados {
		form.ServiciosHabilitados[i].NombreSede = names[0]
	}
}
