package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"servewise-backend/internal/lessongen"
	"servewise-backend/internal/model"
	"servewise-backend/internal/repository"
	"servewise-backend/utilities"
)

type TemplateUpload struct {
	Template          *model.LessonTemplate `json:"template"`
	Created           bool                  `json:"created"`
	QuestionsAppended int                   `json:"questions_appended"`
}

type TemplateService interface {
	// Upload stores a new template or appends the questions a re-upload adds.
	// Lesson synthesis for it runs in the background.
	Upload(ctx context.Context, tmpl *model.LessonTemplate) (*TemplateUpload, error)
	List(ctx context.Context, category string) ([]model.LessonTemplate, error)
}

type templateService struct {
	db        *gorm.DB
	templates repository.TemplateRepository
	bus       *utilities.EventBus
	log       *utilities.Logger
}

func NewTemplateService(db *gorm.DB, templates repository.TemplateRepository, bus *utilities.EventBus, baseLog *utilities.Logger) TemplateService {
	return &templateService{
		db:        db,
		templates: templates,
		bus:       bus,
		log:       baseLog.With("service", "TemplateService"),
	}
}

// DecodeTemplate reads a template document. format is "yaml" or "json".
func DecodeTemplate(format string, data []byte) (*model.LessonTemplate, error) {
	var tmpl model.LessonTemplate
	switch strings.ToLower(format) {
	case "yaml", "yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&tmpl); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
		}
	case "json", "":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&tmpl); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", ErrInvalidTemplate, format)
	}
	return &tmpl, nil
}

func (s *templateService) Upload(ctx context.Context, tmpl *model.LessonTemplate) (*TemplateUpload, error) {
	tmpl.Category = strings.ToLower(strings.TrimSpace(tmpl.Category))
	if err := checkCategory(tmpl.Category); err != nil {
		return nil, err
	}
	if tmpl.Unit < 1 || tmpl.Chapter < 1 {
		return nil, fmt.Errorf("%w: unit and chapter must be positive", ErrInvalidTemplate)
	}
	if len(tmpl.Questions) == 0 {
		return nil, fmt.Errorf("%w: no questions", ErrInvalidTemplate)
	}
	if err := lessongen.ValidateSpecs(tmpl.Category, tmpl.Questions); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTemplate, err)
	}

	var out TemplateUpload
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.templates.Find(ctx, tx, tmpl.Category, tmpl.Unit, tmpl.Chapter)
		if errors.Is(err, repository.ErrNotFound) {
			tmpl.ID = uuid.Nil
			if err := s.templates.Create(ctx, tx, tmpl); err != nil {
				return err
			}
			out = TemplateUpload{Template: tmpl, Created: true}
			return nil
		}
		if err != nil {
			return err
		}
		added, err := appendedSpecs(existing.Questions, tmpl.Questions)
		if err != nil {
			return err
		}
		updated, err := s.templates.AppendQuestions(ctx, tx, existing.ID, added)
		if err != nil {
			return err
		}
		out = TemplateUpload{Template: updated, QuestionsAppended: len(added)}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.bus != nil && (out.Created || out.QuestionsAppended > 0) {
		s.bus.Publish(utilities.EventTemplateUploaded, out.Template.ID)
	}
	s.log.Info("template uploaded",
		"template_id", out.Template.ID,
		"category", out.Template.Category,
		"unit", out.Template.Unit,
		"chapter", out.Template.Chapter,
		"created", out.Created,
		"appended", out.QuestionsAppended,
	)
	return &out, nil
}

// appendedSpecs returns the specs of upload beyond the stored ones. The
// stored specs must reappear unchanged at the head of the upload.
func appendedSpecs(stored, upload []model.QuestionSpec) ([]model.QuestionSpec, error) {
	if len(upload) < len(stored) {
		return nil, fmt.Errorf("%w: upload has %d questions, template has %d", ErrTemplateConflict, len(upload), len(stored))
	}
	for i := range stored {
		a, err := json.Marshal(stored[i])
		if err != nil {
			return nil, err
		}
		b, err := json.Marshal(upload[i])
		if err != nil {
			return nil, err
		}
		if !bytes.Equal(a, b) {
			return nil, fmt.Errorf("%w: question %d differs", ErrTemplateConflict, i+1)
		}
	}
	return upload[len(stored):], nil
}

func (s *templateService) List(ctx context.Context, category string) ([]model.LessonTemplate, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	if err := checkCategory(category); err != nil {
		return nil, err
	}
	return s.templates.ListByCategory(ctx, nil, category)
}
