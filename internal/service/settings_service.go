package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"eventtix/registrar/internal/config"
	"eventtix/registrar/internal/model"
	"eventtix/registrar/internal/repository"
)

// SettingsPatch carries the fields an update may change; nil fields are kept.
type SettingsPatch struct {
	EventName             *string  `json:"event_name" validate:"omitnil,min=1,max=255"`
	EventType             *string  `json:"event_type" validate:"omitnil,max=255"`
	EventDate             *string  `json:"event_date" validate:"omitnil,datetime=2006-01-02"`
	EventTime             *string  `json:"event_time" validate:"omitnil,datetime=15:04"`
	EventVenue            *string  `json:"event_venue" validate:"omitnil,max=255"`
	EventLocation         *string  `json:"event_location"`
	IndividualPrice       *float64 `json:"individual_price" validate:"omitnil,gte=0"`
	BulkPrice             *float64 `json:"bulk_price" validate:"omitnil,gte=0"`
	BulkTeamSize          *int     `json:"bulk_team_size" validate:"omitnil,min=2,max=26"`
	Currency              *string  `json:"currency" validate:"omitnil,len=3"`
	UPIID                 *string  `json:"upi_id" validate:"omitnil,max=255"`
	OrganizationName      *string  `json:"organization_name" validate:"omitnil,max=255"`
	SupportEmail          *string  `json:"support_email" validate:"omitnil,email"`
	ApprovalEmailSubject  *string  `json:"approval_email_subject" validate:"omitnil,min=1,max=255"`
	RejectionEmailSubject *string  `json:"rejection_email_subject" validate:"omitnil,min=1,max=255"`
}

type SettingsService interface {
	Get(ctx context.Context) (*model.EventSettings, error)
	Update(ctx context.Context, patch SettingsPatch, actor Actor) (*model.EventSettings, error)
}

type settingsService struct {
	store    repository.Store
	audit    AuditService
	defaults config.EventConfig
}

func NewSettingsService(store repository.Store, audit AuditService, defaults config.EventConfig) SettingsService {
	return &settingsService{store: store, audit: audit, defaults: defaults}
}

func (s *settingsService) Get(ctx context.Context) (*model.EventSettings, error) {
	settings, err := s.store.Repositories().Settings.Get(ctx)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, dbError(err)
	}

	var seeded *model.EventSettings
	err = s.store.WithTx(ctx, func(tx *repository.Repositories) error {
		// Another request may have seeded the row meanwhile.
		existing, err := tx.Settings.Get(ctx)
		if err == nil {
			seeded = existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		seeded = s.defaultSettings()
		return tx.Settings.Save(ctx, seeded)
	})
	if err != nil {
		return nil, dbError(err)
	}
	return seeded, nil
}

func (s *settingsService) defaultSettings() *model.EventSettings {
	d := s.defaults
	teamSize := d.BulkTeamSize
	if teamSize < 2 {
		teamSize = 4
	}
	return &model.EventSettings{
		ID:                    model.EventSettingsID,
		EventName:             d.Name,
		EventType:             d.Type,
		EventDate:             d.Date,
		EventTime:             d.Time,
		EventVenue:            d.Venue,
		EventLocation:         d.Location,
		IndividualPrice:       d.IndividualPrice,
		BulkPrice:             d.BulkPrice,
		BulkTeamSize:          teamSize,
		Currency:              d.Currency,
		UPIID:                 d.UPIID,
		OrganizationName:      d.OrganizationName,
		SupportEmail:          d.SupportEmail,
		ApprovalEmailSubject:  d.ApprovalEmailSubject,
		RejectionEmailSubject: d.RejectionEmailSubject,
	}
}

func (s *settingsService) Update(ctx context.Context, patch SettingsPatch, actor Actor) (*model.EventSettings, error) {
	if err := actor.requireSuperadmin(); err != nil {
		return nil, err
	}
	if err := validate.Struct(patch); err != nil {
		return nil, validationError(err)
	}
	current, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	changed := applySettingsPatch(current, patch)
	if len(changed) == 0 {
		return current, nil
	}
	if err := s.store.Repositories().Settings.Save(ctx, current); err != nil {
		return nil, dbError(err)
	}

	s.audit.Record(ctx, actor.record(model.AuditActionUpdateSettings, nil, map[string]any{"changed": changed}))
	return current, nil
}

// applySettingsPatch copies the non-nil patch fields onto s and returns the changed keys.
func applySettingsPatch(s *model.EventSettings, p SettingsPatch) []string {
	var changed []string
	setString := func(key string, dst *string, src *string) {
		if src != nil && *src != *dst {
			*dst = *src
			changed = append(changed, key)
		}
	}
	setFloat := func(key string, dst *float64, src *float64) {
		if src != nil && *src != *dst {
			*dst = *src
			changed = append(changed, key)
		}
	}

	setString("event_name", &s.EventName, p.EventName)
	setString("event_type", &s.EventType, p.EventType)
	setString("event_date", &s.EventDate, p.EventDate)
	setString("event_time", &s.EventTime, p.EventTime)
	setString("event_venue", &s.EventVenue, p.EventVenue)
	setString("event_location", &s.EventLocation, p.EventLocation)
	setFloat("individual_price", &s.IndividualPrice, p.IndividualPrice)
	setFloat("bulk_price", &s.BulkPrice, p.BulkPrice)
	if p.BulkTeamSize != nil && *p.BulkTeamSize != s.BulkTeamSize {
		s.BulkTeamSize = *p.BulkTeamSize
		changed = append(changed, "bulk_team_size")
	}
	setString("currency", &s.Currency, p.Currency)
	setString("upi_id", &s.UPIID, p.UPIID)
	setString("organization_name", &s.OrganizationName, p.OrganizationName)
	setString("support_email", &s.SupportEmail, p.SupportEmail)
	setString("approval_email_subject", &s.ApprovalEmailSubject, p.ApprovalEmailSubject)
	setString("rejection_email_subject", &s.RejectionEmailSubject, p.RejectionEmailSubject)
	return changed
}

var _ SettingsService = (*settingsService)(nil)
