package directory

import (
	"context"

	"github.com/BearBump/DriverComm/internal/models"
)

type Repository interface {
	ListPartners(ctx context.Context, kind string) ([]*models.Partner, error)
	GetPartner(ctx context.Context, id int64) (*models.Partner, error)
	CreatePartner(ctx context.Context, p *models.Partner) (*models.Partner, error)
	UpdatePartner(ctx context.Context, id int64, f models.PartnerFields) (*models.Partner, error)
	DeletePartner(ctx context.Context, id int64) (bool, error)

	ListLocations(ctx context.Context, partnerID int64) ([]*models.Location, error)
	GetLocation(ctx context.Context, id int64) (*models.Location, error)
	CreateLocation(ctx context.Context, l *models.Location) (*models.Location, error)
	UpdateLocation(ctx context.Context, id int64, f models.LocationFields) (*models.Location, error)
	DeleteLocation(ctx context.Context, id int64) (bool, error)

	ListRecipients(ctx context.Context, locationID int64) ([]*models.Recipient, error)
	GetRecipient(ctx context.Context, id int64) (*models.Recipient, error)
	CreateRecipient(ctx context.Context, r *models.Recipient) (*models.Recipient, error)
	UpdateRecipient(ctx context.Context, id int64, f models.RecipientFields) (*models.Recipient, error)
	DeleteRecipient(ctx context.Context, id int64) (bool, error)

	ListContacts(ctx context.Context, table models.ContactTable) ([]*models.Contact, error)
	GetContact(ctx context.Context, table models.ContactTable, id int64) (*models.Contact, error)
	CreateContact(ctx context.Context, table models.ContactTable, c *models.Contact) (*models.Contact, error)
	UpdateContact(ctx context.Context, table models.ContactTable, id int64, f models.ContactFields) (*models.Contact, error)
	DeleteContact(ctx context.Context, table models.ContactTable, id int64) (bool, error)
}

// Service делает CRUD справочника без бизнес-логики, только проверка обязательных ссылок
// и перевод "ничего не удалено" в ErrNotFound.
type Service struct {
	repo Repository
}

func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// ---- partners ----

func (s *Service) ListPartners(ctx context.Context, kind string) ([]*models.Partner, error) {
	return s.repo.ListPartners(ctx, kind)
}

func (s *Service) GetPartner(ctx context.Context, id int64) (*models.Partner, error) {
	return s.repo.GetPartner(ctx, id)
}

func (s *Service) CreatePartner(ctx context.Context, f models.PartnerFields) (*models.Partner, error) {
	p := &models.Partner{}
	p.Apply(f)
	return s.repo.CreatePartner(ctx, p)
}

func (s *Service) UpdatePartner(ctx context.Context, id int64, f models.PartnerFields) (*models.Partner, error) {
	return s.repo.UpdatePartner(ctx, id, f)
}

func (s *Service) DeletePartner(ctx context.Context, id int64) error {
	return deleted(s.repo.DeletePartner(ctx, id))
}

// ---- locations ----

func (s *Service) ListLocations(ctx context.Context, partnerID int64) ([]*models.Location, error) {
	if partnerID <= 0 {
		return nil, models.NewValidationError("partyId required")
	}
	return s.repo.ListLocations(ctx, partnerID)
}

func (s *Service) GetLocation(ctx context.Context, id int64) (*models.Location, error) {
	return s.repo.GetLocation(ctx, id)
}

func (s *Service) CreateLocation(ctx context.Context, f models.LocationFields) (*models.Location, error) {
	if f.PartnerID == nil || *f.PartnerID <= 0 {
		return nil, models.NewValidationError("partnerId required")
	}
	l := &models.Location{PartnerID: *f.PartnerID}
	l.Apply(f)
	return s.repo.CreateLocation(ctx, l)
}

func (s *Service) UpdateLocation(ctx context.Context, id int64, f models.LocationFields) (*models.Location, error) {
	return s.repo.UpdateLocation(ctx, id, f)
}

func (s *Service) DeleteLocation(ctx context.Context, id int64) error {
	return deleted(s.repo.DeleteLocation(ctx, id))
}

// ---- recipients ----

func (s *Service) ListRecipients(ctx context.Context, locationID int64) ([]*models.Recipient, error) {
	if locationID <= 0 {
		return nil, models.NewValidationError("locationId required")
	}
	return s.repo.ListRecipients(ctx, locationID)
}

func (s *Service) GetRecipient(ctx context.Context, id int64) (*models.Recipient, error) {
	return s.repo.GetRecipient(ctx, id)
}

func (s *Service) CreateRecipient(ctx context.Context, f models.RecipientFields) (*models.Recipient, error) {
	if f.LocationID == nil || *f.LocationID <= 0 {
		return nil, models.NewValidationError("locationId required")
	}
	return s.repo.CreateRecipient(ctx, models.NewRecipient(f))
}

func (s *Service) UpdateRecipient(ctx context.Context, id int64, f models.RecipientFields) (*models.Recipient, error) {
	return s.repo.UpdateRecipient(ctx, id, f)
}

func (s *Service) DeleteRecipient(ctx context.Context, id int64) error {
	return deleted(s.repo.DeleteRecipient(ctx, id))
}

// ---- merchants / dispatchers ----

func (s *Service) ListContacts(ctx context.Context, table models.ContactTable) ([]*models.Contact, error) {
	return s.repo.ListContacts(ctx, table)
}

func (s *Service) GetContact(ctx context.Context, table models.ContactTable, id int64) (*models.Contact, error) {
	return s.repo.GetContact(ctx, table, id)
}

func (s *Service) CreateContact(ctx context.Context, table models.ContactTable, f models.ContactFields) (*models.Contact, error) {
	if f.Name == nil || *f.Name == "" {
		return nil, models.NewValidationError("name required")
	}
	c := &models.Contact{}
	c.Apply(f)
	return s.repo.CreateContact(ctx, table, c)
}

func (s *Service) UpdateContact(ctx context.Context, table models.ContactTable, id int64, f models.ContactFields) (*models.Contact, error) {
	if f.Name != nil && *f.Name == "" {
		return nil, models.NewValidationError("name required")
	}
	return s.repo.UpdateContact(ctx, table, id, f)
}

func (s *Service) DeleteContact(ctx context.Context, table models.ContactTable, id int64) error {
	return deleted(s.repo.DeleteContact(ctx, table, id))
}

func deleted(ok bool, err error) error {
	if err != nil {
		return err
	}
	if !ok {
		return models.ErrNotFound
	}
	return nil
}
