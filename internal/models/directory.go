package models

import "time"

// Partner это организация: грузоотправитель, получатель, мерчант, диспетчерская.
type Partner struct {
	ID        int64     `json:"id"`
	Kind      string    `json:"kind"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PartnerFields используется и для создания, и для патча.
// Type: старое имя поля kind, принимается на входе.
type PartnerFields struct {
	Kind  *string `json:"kind"`
	Type  *string `json:"type"`
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
	Email *string `json:"email"`
	Notes *string `json:"notes"`
}

func (f PartnerFields) kind() *string {
	if f.Kind != nil {
		return f.Kind
	}
	return f.Type
}

func (p *Partner) Apply(f PartnerFields) {
	setString(&p.Kind, f.kind())
	setString(&p.Name, f.Name)
	setPhone(&p.Phone, f.Phone)
	setString(&p.Email, f.Email)
	setString(&p.Notes, f.Notes)
}

type Location struct {
	ID        int64     `json:"id"`
	PartnerID int64     `json:"partnerId"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	Zip       string    `json:"zip"`
	Lat       *float64  `json:"lat"`
	Lng       *float64  `json:"lng"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type LocationFields struct {
	PartnerID *int64   `json:"partnerId"`
	Name      *string  `json:"name"`
	Address   *string  `json:"address"`
	City      *string  `json:"city"`
	State     *string  `json:"state"`
	Zip       *string  `json:"zip"`
	Lat       *float64 `json:"lat"`
	Lng       *float64 `json:"lng"`
}

// Apply не трогает partnerId: владелец локации не меняется.
func (l *Location) Apply(f LocationFields) {
	setString(&l.Name, f.Name)
	setString(&l.Address, f.Address)
	setString(&l.City, f.City)
	setString(&l.State, f.State)
	setString(&l.Zip, f.Zip)
	if f.Lat != nil {
		l.Lat = f.Lat
	}
	if f.Lng != nil {
		l.Lng = f.Lng
	}
}

const (
	RecipientRoleAgent      = "agent"
	RecipientRoleMerchant   = "merchant"
	RecipientRoleDispatcher = "dispatcher"
	RecipientRoleOps        = "ops"
	RecipientRoleOther      = "other"
)

// Recipient: адресат уведомлений, привязанный к локации.
type Recipient struct {
	ID          int64     `json:"id"`
	LocationID  int64     `json:"locationId"`
	Role        string    `json:"role"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email"`
	NotifySMS   bool      `json:"notifySMS"`
	NotifyEmail bool      `json:"notifyEmail"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type RecipientFields struct {
	LocationID  *int64  `json:"locationId"`
	Role        *string `json:"role"`
	Name        *string `json:"name"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email"`
	NotifySMS   *bool   `json:"notifySMS"`
	NotifyEmail *bool   `json:"notifyEmail"`
}

// NewRecipient: роль по умолчанию other, SMS включены, e-mail выключен.
func NewRecipient(f RecipientFields) *Recipient {
	r := &Recipient{Role: RecipientRoleOther, NotifySMS: true}
	if f.LocationID != nil {
		r.LocationID = *f.LocationID
	}
	r.Apply(f)
	if r.Role == "" {
		r.Role = RecipientRoleOther
	}
	return r
}

func (r *Recipient) Apply(f RecipientFields) {
	if f.LocationID != nil && *f.LocationID > 0 {
		r.LocationID = *f.LocationID
	}
	setString(&r.Role, f.Role)
	setString(&r.Name, f.Name)
	setPhone(&r.Phone, f.Phone)
	setString(&r.Email, f.Email)
	if f.NotifySMS != nil {
		r.NotifySMS = *f.NotifySMS
	}
	if f.NotifyEmail != nil {
		r.NotifyEmail = *f.NotifyEmail
	}
}

// ContactTable: справочник контактов. Значение совпадает с именем таблицы.
type ContactTable string

const (
	ContactMerchants   ContactTable = "merchants"
	ContactDispatchers ContactTable = "dispatchers"
)

func (t ContactTable) Valid() bool {
	return t == ContactMerchants || t == ContactDispatchers
}

// Contact: запись справочника мерчантов или диспетчеров.
type Contact struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ContactFields struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
	Email *string `json:"email"`
	Notes *string `json:"notes"`
}

func (c *Contact) Apply(f ContactFields) {
	setString(&c.Name, f.Name)
	setPhone(&c.Phone, f.Phone)
	setString(&c.Email, f.Email)
	setString(&c.Notes, f.Notes)
}
