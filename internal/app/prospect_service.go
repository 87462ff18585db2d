package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"leadchat/internal/model"
	"leadchat/internal/repository"
)

type ProspectService struct {
	prospectRepo *repository.ProspectRepository
	leadEvents   EventPublisher
	log          zerolog.Logger
}

type CreateProspectInput struct {
	Name           string
	Email          string
	Phone          string
	ConversationID *uint
}

// LeadEvent notifies downstream CRM consumers of a captured lead.
type LeadEvent struct {
	ProspectID     uint   `json:"prospect_id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone,omitempty"`
	ConversationID *uint  `json:"conversation_id,omitempty"`
}

func NewProspectService(
	prospectRepo *repository.ProspectRepository,
	leadEvents EventPublisher,
	log zerolog.Logger,
) *ProspectService {
	return &ProspectService{
		prospectRepo: prospectRepo,
		leadEvents:   leadEvents,
		log:          log.With().Str("component", "prospect-service").Logger(),
	}
}

func (s *ProspectService) CreateProspect(ctx context.Context, input CreateProspectInput) (*model.Prospect, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)
	if name == "" || email == "" {
		return nil, ErrInvalidInput
	}

	prospect := &model.Prospect{
		Name:           name,
		Email:          email,
		Phone:          strings.TrimSpace(input.Phone),
		ConversationID: input.ConversationID,
	}
	if err := s.prospectRepo.Create(prospect); err != nil {
		return nil, err
	}

	if s.leadEvents != nil {
		event := LeadEvent{
			ProspectID:     prospect.ID,
			Name:           prospect.Name,
			Email:          prospect.Email,
			Phone:          prospect.Phone,
			ConversationID: prospect.ConversationID,
		}
		if err := s.leadEvents.Publish(ctx, event); err != nil {
			s.log.Error().Err(err).Uint("prospect_id", prospect.ID).Msg("publish lead event failed")
		}
	}

	return prospect, nil
}

func (s *ProspectService) ListProspects() ([]model.Prospect, error) {
	return s.prospectRepo.List()
}

// ExportXLSX renders all prospects as a spreadsheet for CRM handoff.
func (s *ProspectService) ExportXLSX() ([]byte, error) {
	prospects, err := s.prospectRepo.List()
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Prospects"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("rename export sheet failed: %w", err)
	}

	headers := []any{"ID", "Name", "Email", "Phone", "Conversation ID", "Created At"}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return nil, fmt.Errorf("write export header failed: %w", err)
	}

	for i, p := range prospects {
		conversationID := ""
		if p.ConversationID != nil {
			conversationID = fmt.Sprintf("%d", *p.ConversationID)
		}
		row := []any{p.ID, p.Name, p.Email, p.Phone, conversationID, p.CreatedAt.Format("2006-01-02 15:04:05")}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write export row failed: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize export failed: %w", err)
	}
	return buf.Bytes(), nil
}
