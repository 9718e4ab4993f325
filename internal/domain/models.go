package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields. IDs are assigned in BeforeCreate rather than
// by a database default so the models behave identically on postgres and the
// sqlite driver used in tests.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns a UUID primary key when none is set
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Role represents a user role. The set is closed; authorization decisions go
// through the capability table in the auth package, never ad hoc string
// comparisons in handlers.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
	RoleVendor     Role = "vendor"
	RolePurchasing Role = "purchasing"
	RoleInstaller  Role = "installer"
)

// IsValid checks if the Role is a valid enum value
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleSuperAdmin, RoleVendor, RolePurchasing, RoleInstaller:
		return true
	}
	return false
}

// IsAdmin reports whether the role carries administrative rights
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// User represents an account in the system
type User struct {
	BaseModel
	Username     string `gorm:"type:varchar(100);not null;uniqueIndex"`
	PasswordHash string `gorm:"type:varchar(200);not null;column:password_hash"`
	Name         string `gorm:"type:varchar(200);not null"`
	Email        string `gorm:"type:varchar(255);not null"`
	Role         Role   `gorm:"type:varchar(50);not null;index"`
	// Active gates login for installers; set true automatically on registration
	Active bool `gorm:"not null;default:true"`
}

// Category represents a product category in the catalog
type Category struct {
	BaseModel
	Name        string    `gorm:"type:varchar(200);not null;uniqueIndex"`
	Description string    `gorm:"type:text"`
	Active      bool      `gorm:"not null;default:true"`
	Products    []Product `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
}

// Product represents a catalog product read by quote and project builders
type Product struct {
	BaseModel
	CategoryID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Category    *Category `gorm:"foreignKey:CategoryID"`
	Name        string    `gorm:"type:varchar(200);not null"`
	Description string    `gorm:"type:text"`
	UnitPrice   float64   `gorm:"type:decimal(15,2);not null;default:0"`
	Unit        string    `gorm:"type:varchar(50)"`
	Active      bool      `gorm:"not null;default:true"`
}

// QuoteStatus represents the status of a quote
type QuoteStatus string

const (
	QuoteStatusDraft     QuoteStatus = "draft"
	QuoteStatusPublished QuoteStatus = "published"
	QuoteStatusAccepted  QuoteStatus = "accepted"
	QuoteStatusRejected  QuoteStatus = "rejected"
	QuoteStatusExpired   QuoteStatus = "expired"

	// QuoteStatusDeleted is a transition target, not a stored status:
	// a validated transition to it removes the quote record.
	QuoteStatusDeleted QuoteStatus = "deleted"
)

// IsValid checks if the QuoteStatus is a storable enum value
func (s QuoteStatus) IsValid() bool {
	switch s {
	case QuoteStatusDraft, QuoteStatusPublished, QuoteStatusAccepted, QuoteStatusRejected, QuoteStatusExpired:
		return true
	}
	return false
}

// Quote represents a vendor-authored price proposal with a public acceptance link
type Quote struct {
	BaseModel
	QuoteNumber string      `gorm:"type:varchar(50);uniqueIndex;column:quote_number"`
	VendorID    uuid.UUID   `gorm:"type:uuid;not null;index;column:vendor_id"`
	Vendor      *User       `gorm:"foreignKey:VendorID"`
	ClientName  string      `gorm:"type:varchar(200);not null"`
	ClientEmail string      `gorm:"type:varchar(255)"`
	ClientPhone string      `gorm:"type:varchar(50)"`
	Description string      `gorm:"type:text"`
	Status      QuoteStatus `gorm:"type:varchar(50);not null;default:'draft';index"`
	// TotalCost is derived from items at creation and never recomputed on edit
	TotalCost float64 `gorm:"type:decimal(15,2);not null;default:0"`
	// QuoteToken addresses the public acceptance page
	QuoteToken  string      `gorm:"type:varchar(50);uniqueIndex;column:quote_token"`
	ExpiresAt   *time.Time  `gorm:"column:expires_at"`
	DownPayment *float64    `gorm:"type:decimal(15,2);column:down_payment"`
	Notes       string      `gorm:"type:text"`
	ProjectID   *uuid.UUID  `gorm:"type:uuid;index;column:project_id"`
	AcceptedAt  *time.Time  `gorm:"column:accepted_at"`
	Items       []QuoteItem `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE"`
}

// QuoteItem represents a line item in a quote
type QuoteItem struct {
	BaseModel
	QuoteID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	ProductID   *uuid.UUID `gorm:"type:uuid;column:product_id"`
	ProductName string     `gorm:"type:varchar(200);not null;column:product_name"`
	Quantity    float64    `gorm:"type:decimal(10,2);not null"`
	UnitPrice   float64    `gorm:"type:decimal(15,2);not null;column:unit_price"`
}

// ProjectStatus represents the status of an installation project
type ProjectStatus string

const (
	ProjectStatusPendingApproval ProjectStatus = "pending_approval"
	ProjectStatusApproved        ProjectStatus = "approved"
	ProjectStatusAssigned        ProjectStatus = "assigned"
	ProjectStatusWorking         ProjectStatus = "working"
	ProjectStatusInProgress      ProjectStatus = "in_progress"
	ProjectStatusCompleted       ProjectStatus = "completed"
	ProjectStatusPaused          ProjectStatus = "paused"
	ProjectStatusCancelled       ProjectStatus = "cancelled"
)

// IsValid checks if the ProjectStatus is a valid enum value
func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectStatusPendingApproval, ProjectStatusApproved, ProjectStatusAssigned,
		ProjectStatusWorking, ProjectStatusInProgress, ProjectStatusCompleted,
		ProjectStatusPaused, ProjectStatusCancelled:
		return true
	}
	return false
}

// BlocksDeletion reports whether a project in this status may not be deleted
func (s ProjectStatus) BlocksDeletion() bool {
	switch s {
	case ProjectStatusInProgress, ProjectStatusCompleted, ProjectStatusPaused, ProjectStatusCancelled:
		return true
	}
	return false
}

// PriceProposalStatus represents the status of an installer price proposal
type PriceProposalStatus string

const (
	PriceProposalPending  PriceProposalStatus = "pending"
	PriceProposalAccepted PriceProposalStatus = "accepted"
	PriceProposalRejected PriceProposalStatus = "rejected"
)

// Project represents an installation job, optionally spawned from an accepted quote
type Project struct {
	BaseModel
	ProjectName   string        `gorm:"type:varchar(200);not null;index;column:project_name"`
	InvoiceNumber string        `gorm:"type:varchar(50);uniqueIndex;column:invoice_number"`
	ClientName    string        `gorm:"type:varchar(200);not null;column:client_name"`
	Status        ProjectStatus `gorm:"type:varchar(50);not null;index"`
	TotalCost     float64       `gorm:"type:decimal(15,2);not null;default:0;column:total_cost"`
	CreatedByID   uuid.UUID     `gorm:"type:uuid;not null;index;column:created_by_id"`
	CreatedBy     *User         `gorm:"foreignKey:CreatedByID"`
	ApprovedByID  *uuid.UUID    `gorm:"type:uuid;column:approved_by_id"`
	// ApprovedByName is "system" for projects spawned by public quote acceptance
	ApprovedByName      string               `gorm:"type:varchar(200);column:approved_by_name"`
	AssignedInstallerID *uuid.UUID           `gorm:"type:uuid;index;column:assigned_installer_id"`
	AssignedInstaller   *User                `gorm:"foreignKey:AssignedInstallerID"`
	QuoteID             *uuid.UUID           `gorm:"type:uuid;uniqueIndex;column:quote_id"`
	DownPaymentAmount   *float64             `gorm:"type:decimal(15,2);column:down_payment_amount"`
	DownPaymentStatus   string               `gorm:"type:varchar(50);column:down_payment_status"`
	InstallerPrice      *float64             `gorm:"type:decimal(15,2);column:installer_price"`
	InstallerPriceState *PriceProposalStatus `gorm:"type:varchar(50);column:installer_price_state"`
	Notes               string               `gorm:"type:text"`
	Items               []ProjectItem        `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	// History rows are not cascade-deleted: the audit trail, including the
	// final "deleted" entry, outlives the project
	History []ProjectHistory `gorm:"foreignKey:ProjectID"`
}

// ProjectItem represents a line item in a project
type ProjectItem struct {
	BaseModel
	ProjectID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	ProductID   *uuid.UUID `gorm:"type:uuid;column:product_id"`
	ProductName string     `gorm:"type:varchar(200);not null;column:product_name"`
	Quantity    float64    `gorm:"type:decimal(10,2);not null"`
	UnitPrice   float64    `gorm:"type:decimal(15,2);not null;column:unit_price"`
}

// ProjectHistory is an append-only audit entry for a project
type ProjectHistory struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ProjectID uuid.UUID  `gorm:"type:uuid;not null;index;column:project_id"`
	Status    string     `gorm:"type:varchar(50);not null"`
	Comment   string     `gorm:"type:text"`
	UserID    *uuid.UUID `gorm:"type:uuid;column:user_id"`
	UserName  string     `gorm:"type:varchar(200);column:user_name"`
	Action    string     `gorm:"type:varchar(100)"`
	CreatedAt time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns a UUID primary key when none is set
func (h *ProjectHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// TableName overrides the default pluralization
func (ProjectHistory) TableName() string {
	return "project_history"
}

// ContractType classifies a contract
type ContractType string

const (
	ContractTypeService          ContractType = "service_contract"
	ContractTypeProject          ContractType = "project"
	ContractTypeInstallerService ContractType = "installer_service"
)

// IsValid checks if the ContractType is a valid enum value
func (t ContractType) IsValid() bool {
	switch t {
	case ContractTypeService, ContractTypeProject, ContractTypeInstallerService:
		return true
	}
	return false
}

// ContractStatus represents the status of a contract
type ContractStatus string

const (
	ContractStatusDraft            ContractStatus = "draft"
	ContractStatusPendingSignature ContractStatus = "pending_signature"
	ContractStatusSent             ContractStatus = "sent"
	ContractStatusSigned           ContractStatus = "signed"
)

// IsValid checks if the ContractStatus is a valid enum value
func (s ContractStatus) IsValid() bool {
	switch s {
	case ContractStatusDraft, ContractStatusPendingSignature, ContractStatusSent, ContractStatusSigned:
		return true
	}
	return false
}

// Contract represents a legal document carrying an optional signature token.
// A nil ExpiresAt makes the token permanent; a non-nil one time-boxes it.
type Contract struct {
	BaseModel
	ContractNumber string         `gorm:"type:varchar(50);uniqueIndex;column:contract_number"`
	Type           ContractType   `gorm:"type:varchar(50);not null;index"`
	Title          string         `gorm:"type:varchar(200);not null"`
	Description    string         `gorm:"type:text"`
	Status         ContractStatus `gorm:"type:varchar(50);not null;default:'draft';index"`
	TotalAmount    float64        `gorm:"type:decimal(15,2);not null;default:0;column:total_amount"`
	FinalPrice     *float64       `gorm:"type:decimal(15,2);column:final_price"`
	ClientName     string         `gorm:"type:varchar(200);column:client_name"`
	VendorID       *uuid.UUID     `gorm:"type:uuid;index;column:vendor_id"`
	InstallerID    *uuid.UUID     `gorm:"type:uuid;index;column:installer_id"`
	ProjectID      *uuid.UUID     `gorm:"type:uuid;index;column:project_id"`
	SignatureToken *string        `gorm:"type:varchar(100);uniqueIndex;column:signature_token"`
	ExpiresAt      *time.Time     `gorm:"column:expires_at"`
	IsSigned       bool           `gorm:"not null;default:false;column:is_signed"`
	// SignatureData is an opaque payload (e.g. a base64 image); stored and
	// returned, never parsed
	SignatureData  string                  `gorm:"type:text;column:signature_data"`
	SignedAt       *time.Time              `gorm:"column:signed_at"`
	SignerName     string                  `gorm:"type:varchar(200);column:signer_name"`
	Communications []ContractCommunication `gorm:"foreignKey:ContractID;constraint:OnDelete:CASCADE"`
	Documents      []Document              `gorm:"foreignKey:ContractID;constraint:OnDelete:CASCADE"`
}

// IsExpired reports whether the signature link is past its expiry.
// A nil ExpiresAt (permanent link) is never expired.
func (c *Contract) IsExpired(now time.Time) bool {
	return c.ExpiresAt != nil && c.ExpiresAt.Before(now)
}

// ContractCommunication is an append-only log entry of signing events
type ContractCommunication struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	ContractID uuid.UUID `gorm:"type:uuid;not null;index;column:contract_id"`
	Kind       string    `gorm:"type:varchar(50);not null"`
	Message    string    `gorm:"type:text;not null"`
	ActorName  string    `gorm:"type:varchar(200);column:actor_name"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns a UUID primary key when none is set
func (c *ContractCommunication) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Document represents an uploaded file attached to a contract
type Document struct {
	BaseModel
	ContractID  uuid.UUID `gorm:"type:uuid;not null;index;column:contract_id"`
	Filename    string    `gorm:"type:varchar(255);not null"`
	ContentType string    `gorm:"type:varchar(100);not null;column:content_type"`
	Size        int64     `gorm:"not null"`
	StoragePath string    `gorm:"type:varchar(500);not null;unique;column:storage_path"`
}

// IncidentStatus represents the status of an incident
type IncidentStatus string

const (
	IncidentStatusPending    IncidentStatus = "pending"
	IncidentStatusApproved   IncidentStatus = "approved"
	IncidentStatusInProgress IncidentStatus = "in_progress"
	IncidentStatusCompleted  IncidentStatus = "completed"
	IncidentStatusRejected   IncidentStatus = "rejected"
)

// IsValid checks if the IncidentStatus is a valid enum value
func (s IncidentStatus) IsValid() bool {
	switch s {
	case IncidentStatusPending, IncidentStatusApproved, IncidentStatusInProgress,
		IncidentStatusCompleted, IncidentStatusRejected:
		return true
	}
	return false
}

// Incident represents a change-order record attached to a project
type Incident struct {
	BaseModel
	ProjectID      uuid.UUID         `gorm:"type:uuid;not null;index;column:project_id"`
	Project        *Project          `gorm:"foreignKey:ProjectID"`
	IncidentNumber string            `gorm:"type:varchar(50);uniqueIndex;column:incident_number"`
	Type           string            `gorm:"type:varchar(100);not null"`
	Priority       string            `gorm:"type:varchar(50);not null"`
	Title          string            `gorm:"type:varchar(200);not null"`
	Description    string            `gorm:"type:text"`
	TotalCost      float64           `gorm:"type:decimal(15,2);not null;default:0;column:total_cost"`
	Status         IncidentStatus    `gorm:"type:varchar(50);not null;default:'pending';index"`
	CreatedByID    uuid.UUID         `gorm:"type:uuid;not null;column:created_by_id"`
	Items          []IncidentItem    `gorm:"foreignKey:IncidentID;constraint:OnDelete:CASCADE"`
	History        []IncidentHistory `gorm:"foreignKey:IncidentID;constraint:OnDelete:CASCADE"`
}

// IncidentItem represents a line item in an incident
type IncidentItem struct {
	BaseModel
	IncidentID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	ProductID   *uuid.UUID `gorm:"type:uuid;column:product_id"`
	ProductName string     `gorm:"type:varchar(200);not null;column:product_name"`
	Quantity    float64    `gorm:"type:decimal(10,2);not null"`
	UnitPrice   float64    `gorm:"type:decimal(15,2);not null;column:unit_price"`
}

// IncidentHistory is an append-only audit entry for an incident
type IncidentHistory struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	IncidentID uuid.UUID  `gorm:"type:uuid;not null;index;column:incident_id"`
	Status     string     `gorm:"type:varchar(50);not null"`
	Comment    string     `gorm:"type:text"`
	UserID     *uuid.UUID `gorm:"type:uuid;column:user_id"`
	UserName   string     `gorm:"type:varchar(200);column:user_name"`
	CreatedAt  time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns a UUID primary key when none is set
func (h *IncidentHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// TableName overrides the default pluralization
func (IncidentHistory) TableName() string {
	return "incident_history"
}

// NotificationType represents the type of notification
type NotificationType string

const (
	NotificationTypeQuoteCreated       NotificationType = "quote_created"
	NotificationTypeQuoteStatusChanged NotificationType = "quote_status_changed"
	NotificationTypeQuoteAccepted      NotificationType = "quote_accepted"
	NotificationTypeProjectUpdate      NotificationType = "project_update"
	NotificationTypeProjectItemsEdited NotificationType = "project_items_edited"
	NotificationTypeProjectAssigned    NotificationType = "project_assigned"
	NotificationTypeContractSigned     NotificationType = "contract_signed"
	NotificationTypeIncidentUpdate     NotificationType = "incident_update"
)

// Notification represents a per-user feed entry, created only as a side
// effect of lifecycle transitions. Only the read flag is ever mutated.
type Notification struct {
	BaseModel
	UserID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Type    string    `gorm:"type:varchar(50);not null"`
	Title   string    `gorm:"type:varchar(200);not null"`
	Message string    `gorm:"type:varchar(2000);not null"`
	// Data is an opaque JSON payload for the UI
	Data   string `gorm:"type:text"`
	Read   bool   `gorm:"column:read;not null;default:false;index"`
	ReadAt *time.Time
}

// NumberSequence backs atomic generation of human-readable sequential
// numbers (project invoice numbers, incident numbers). One row per
// scope/year, guarded by a unique constraint.
type NumberSequence struct {
	ID           uint      `gorm:"primaryKey"`
	Scope        string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_sequence_scope_year"`
	Year         int       `gorm:"not null;uniqueIndex:idx_sequence_scope_year"`
	LastSequence int       `gorm:"not null;default:0;column:last_sequence"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}
