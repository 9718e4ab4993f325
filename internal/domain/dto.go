package domain

import (
	"github.com/google/uuid"
)

// DTOs for API responses. Timestamps are ISO 8601 strings, formatted by the
// mapper package.

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// Auth DTOs

type UserDTO struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt string    `json:"createdAt"` // ISO 8601
	UpdatedAt string    `json:"updatedAt"` // ISO 8601
}

type LoginRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required,max=200"`
}

type LoginResponse struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

// RegisterInstallerRequest contains the data for public installer onboarding.
// ContractText above the auto-sign threshold creates a pre-signed service
// contract for the new installer account.
type RegisterInstallerRequest struct {
	Username     string `json:"username" validate:"required,min=3,max=100"`
	Password     string `json:"password" validate:"required,min=8,max=200"`
	Name         string `json:"name" validate:"required,max=200"`
	Email        string `json:"email" validate:"required,email,max=255"`
	ContractText string `json:"contractText,omitempty"`
}

type RegisterInstallerResponse struct {
	User     UserDTO      `json:"user"`
	Contract *ContractDTO `json:"contract,omitempty"`
}

type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=100"`
	Password string `json:"password" validate:"required,min=8,max=200"`
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Role     Role   `json:"role" validate:"required,oneof=admin super_admin vendor purchasing installer"`
}

// Catalog DTOs

type CategoryDTO struct {
	ID          uuid.UUID    `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Active      bool         `json:"active"`
	Products    []ProductDTO `json:"products,omitempty"`
	CreatedAt   string       `json:"createdAt"`
	UpdatedAt   string       `json:"updatedAt"`
}

type ProductDTO struct {
	ID           uuid.UUID `json:"id"`
	CategoryID   uuid.UUID `json:"categoryId"`
	CategoryName string    `json:"categoryName,omitempty"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	UnitPrice    float64   `json:"unitPrice"`
	Unit         string    `json:"unit,omitempty"`
	Active       bool      `json:"active"`
	CreatedAt    string    `json:"createdAt"`
	UpdatedAt    string    `json:"updatedAt"`
}

type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description,omitempty" validate:"max=2000"`
}

type UpdateCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description,omitempty" validate:"max=2000"`
	Active      *bool  `json:"active,omitempty"`
}

type CreateProductRequest struct {
	CategoryID  uuid.UUID `json:"categoryId" validate:"required"`
	Name        string    `json:"name" validate:"required,max=200"`
	Description string    `json:"description,omitempty" validate:"max=2000"`
	UnitPrice   float64   `json:"unitPrice" validate:"gte=0"`
	Unit        string    `json:"unit,omitempty" validate:"max=50"`
}

type UpdateProductRequest struct {
	CategoryID  uuid.UUID `json:"categoryId" validate:"required"`
	Name        string    `json:"name" validate:"required,max=200"`
	Description string    `json:"description,omitempty" validate:"max=2000"`
	UnitPrice   float64   `json:"unitPrice" validate:"gte=0"`
	Unit        string    `json:"unit,omitempty" validate:"max=50"`
	Active      *bool     `json:"active,omitempty"`
}

// Quote DTOs

type QuoteDTO struct {
	ID          uuid.UUID      `json:"id"`
	QuoteNumber string         `json:"quoteNumber"`
	VendorID    uuid.UUID      `json:"vendorId"`
	VendorName  string         `json:"vendorName,omitempty"`
	ClientName  string         `json:"clientName"`
	ClientEmail string         `json:"clientEmail,omitempty"`
	ClientPhone string         `json:"clientPhone,omitempty"`
	Description string         `json:"description,omitempty"`
	Status      QuoteStatus    `json:"status"`
	TotalCost   float64        `json:"totalCost"`
	QuoteToken  string         `json:"quoteToken,omitempty"`
	ExpiresAt   *string        `json:"expiresAt,omitempty"` // ISO 8601, null means no expiry
	DownPayment *float64       `json:"downPayment,omitempty"`
	Notes       string         `json:"notes,omitempty"`
	ProjectID   *uuid.UUID     `json:"projectId,omitempty"`
	AcceptedAt  *string        `json:"acceptedAt,omitempty"`
	Items       []QuoteItemDTO `json:"items"`
	CreatedAt   string         `json:"createdAt"`
	UpdatedAt   string         `json:"updatedAt"`
}

type QuoteItemDTO struct {
	ID          uuid.UUID  `json:"id"`
	ProductID   *uuid.UUID `json:"productId,omitempty"`
	ProductName string     `json:"productName"`
	Quantity    float64    `json:"quantity"`
	UnitPrice   float64    `json:"unitPrice"`
	Subtotal    float64    `json:"subtotal"`
}

// PublicQuoteDTO is the client-facing view behind the public token. It omits
// internal vendor notes.
type PublicQuoteDTO struct {
	QuoteNumber string         `json:"quoteNumber"`
	ClientName  string         `json:"clientName"`
	Description string         `json:"description,omitempty"`
	Status      QuoteStatus    `json:"status"`
	TotalCost   float64        `json:"totalCost"`
	DownPayment *float64       `json:"downPayment,omitempty"`
	ExpiresAt   *string        `json:"expiresAt,omitempty"`
	Items       []QuoteItemDTO `json:"items"`
	CreatedAt   string         `json:"createdAt"`
}

type CreateQuoteItemRequest struct {
	ProductID   *uuid.UUID `json:"productId,omitempty"`
	ProductName string     `json:"productName" validate:"required,max=200"`
	Quantity    float64    `json:"quantity" validate:"required,gt=0"`
	UnitPrice   float64    `json:"unitPrice" validate:"gte=0"`
}

type CreateQuoteRequest struct {
	ClientName  string                   `json:"clientName" validate:"required,max=200"`
	ClientEmail string                   `json:"clientEmail,omitempty" validate:"omitempty,email,max=255"`
	ClientPhone string                   `json:"clientPhone,omitempty" validate:"max=50"`
	Description string                   `json:"description,omitempty" validate:"max=2000"`
	ExpiresAt   *string                  `json:"expiresAt,omitempty"` // ISO 8601
	DownPayment *float64                 `json:"downPayment,omitempty" validate:"omitempty,gte=0"`
	Notes       string                   `json:"notes,omitempty" validate:"max=2000"`
	Items       []CreateQuoteItemRequest `json:"items" validate:"required,min=1,dive"`
}

// UpdateQuoteRequest edits metadata only. Items and totals are fixed at
// creation time.
type UpdateQuoteRequest struct {
	ClientName  string   `json:"clientName" validate:"required,max=200"`
	ClientEmail string   `json:"clientEmail,omitempty" validate:"omitempty,email,max=255"`
	ClientPhone string   `json:"clientPhone,omitempty" validate:"max=50"`
	Description string   `json:"description,omitempty" validate:"max=2000"`
	ExpiresAt   *string  `json:"expiresAt,omitempty"`
	DownPayment *float64 `json:"downPayment,omitempty" validate:"omitempty,gte=0"`
	Notes       string   `json:"notes,omitempty" validate:"max=2000"`
}

type UpdateQuoteStatusRequest struct {
	Status QuoteStatus `json:"status" validate:"required"`
}

// AcceptQuoteRequest is the optional body of the public accept call
type AcceptQuoteRequest struct {
	DownPaymentStatus string `json:"downPaymentStatus,omitempty" validate:"max=50"`
}

// AcceptQuoteResponse contains the accepted quote and the project spawned
// from it
type AcceptQuoteResponse struct {
	Quote   *QuoteDTO   `json:"quote"`
	Project *ProjectDTO `json:"project"`
}

// Project DTOs

type ProjectDTO struct {
	ID                  uuid.UUID            `json:"id"`
	ProjectName         string               `json:"projectName"`
	InvoiceNumber       string               `json:"invoiceNumber"`
	ClientName          string               `json:"clientName"`
	Status              ProjectStatus        `json:"status"`
	TotalCost           float64              `json:"totalCost"`
	CreatedByID         uuid.UUID            `json:"createdById"`
	CreatedByName       string               `json:"createdByName,omitempty"`
	ApprovedByID        *uuid.UUID           `json:"approvedById,omitempty"`
	ApprovedByName      string               `json:"approvedByName,omitempty"`
	AssignedInstallerID *uuid.UUID           `json:"assignedInstallerId,omitempty"`
	AssignedInstaller   string               `json:"assignedInstallerName,omitempty"`
	QuoteID             *uuid.UUID           `json:"quoteId,omitempty"`
	DownPaymentAmount   *float64             `json:"downPaymentAmount,omitempty"`
	DownPaymentStatus   string               `json:"downPaymentStatus,omitempty"`
	InstallerPrice      *float64             `json:"installerPrice,omitempty"`
	InstallerPriceState *PriceProposalStatus `json:"installerPriceState,omitempty"`
	Notes               string               `json:"notes,omitempty"`
	Items               []ProjectItemDTO     `json:"items"`
	History             []ProjectHistoryDTO  `json:"history,omitempty"`
	CreatedAt           string               `json:"createdAt"`
	UpdatedAt           string               `json:"updatedAt"`
}

type ProjectItemDTO struct {
	ID          uuid.UUID  `json:"id"`
	ProductID   *uuid.UUID `json:"productId,omitempty"`
	ProductName string     `json:"productName"`
	Quantity    float64    `json:"quantity"`
	UnitPrice   float64    `json:"unitPrice"`
	Subtotal    float64    `json:"subtotal"`
}

type ProjectHistoryDTO struct {
	ID        uuid.UUID `json:"id"`
	Status    string    `json:"status"`
	Comment   string    `json:"comment,omitempty"`
	UserName  string    `json:"userName,omitempty"`
	Action    string    `json:"action,omitempty"`
	CreatedAt string    `json:"createdAt"`
}

type CreateProjectItemRequest struct {
	ProductID   *uuid.UUID `json:"productId,omitempty"`
	ProductName string     `json:"productName" validate:"required,max=200"`
	Quantity    float64    `json:"quantity" validate:"required,gt=0"`
	UnitPrice   float64    `json:"unitPrice" validate:"gte=0"`
}

type CreateProjectRequest struct {
	ProjectName       string                     `json:"projectName" validate:"required,max=200"`
	ClientName        string                     `json:"clientName" validate:"required,max=200"`
	Status            ProjectStatus              `json:"status,omitempty"`
	DownPaymentAmount *float64                   `json:"downPaymentAmount,omitempty" validate:"omitempty,gte=0"`
	Notes             string                     `json:"notes,omitempty" validate:"max=2000"`
	Items             []CreateProjectItemRequest `json:"items,omitempty" validate:"dive"`
}

type UpdateProjectRequest struct {
	ProjectName       string                     `json:"projectName" validate:"required,max=200"`
	ClientName        string                     `json:"clientName" validate:"required,max=200"`
	DownPaymentAmount *float64                   `json:"downPaymentAmount,omitempty" validate:"omitempty,gte=0"`
	DownPaymentStatus string                     `json:"downPaymentStatus,omitempty" validate:"max=50"`
	Notes             string                     `json:"notes,omitempty" validate:"max=2000"`
	Items             []CreateProjectItemRequest `json:"items,omitempty" validate:"dive"`
	Comment           string                     `json:"comment,omitempty" validate:"max=500"`
}

type UpdateProjectStatusRequest struct {
	Status  ProjectStatus `json:"status" validate:"required"`
	Comment string        `json:"comment,omitempty" validate:"max=500"`
}

type AssignInstallerRequest struct {
	InstallerID uuid.UUID `json:"installerId" validate:"required"`
	Comment     string    `json:"comment,omitempty" validate:"max=500"`
}

type ProposeInstallerPriceRequest struct {
	Price float64 `json:"price" validate:"required,gt=0"`
}

type ResolveInstallerPriceRequest struct {
	Accept bool `json:"accept"`
}

// Contract DTOs

type ContractDTO struct {
	ID             uuid.UUID                  `json:"id"`
	ContractNumber string                     `json:"contractNumber"`
	Type           ContractType               `json:"type"`
	Title          string                     `json:"title"`
	Description    string                     `json:"description,omitempty"`
	Status         ContractStatus             `json:"status"`
	TotalAmount    float64                    `json:"totalAmount"`
	FinalPrice     *float64                   `json:"finalPrice,omitempty"`
	ClientName     string                     `json:"clientName,omitempty"`
	VendorID       *uuid.UUID                 `json:"vendorId,omitempty"`
	InstallerID    *uuid.UUID                 `json:"installerId,omitempty"`
	ProjectID      *uuid.UUID                 `json:"projectId,omitempty"`
	SignatureToken *string                    `json:"signatureToken,omitempty"`
	ExpiresAt      *string                    `json:"expiresAt,omitempty"` // ISO 8601, null means permanent link
	IsSigned       bool                       `json:"isSigned"`
	SignedAt       *string                    `json:"signedAt,omitempty"`
	SignerName     string                     `json:"signerName,omitempty"`
	Communications []ContractCommunicationDTO `json:"communications,omitempty"`
	Documents      []DocumentDTO              `json:"documents,omitempty"`
	CreatedAt      string                     `json:"createdAt"`
	UpdatedAt      string                     `json:"updatedAt"`
}

type ContractCommunicationDTO struct {
	ID        uuid.UUID `json:"id"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	ActorName string    `json:"actorName,omitempty"`
	CreatedAt string    `json:"createdAt"`
}

// PublicContractDTO is the signer-facing view behind the signature token
type PublicContractDTO struct {
	ContractNumber string       `json:"contractNumber"`
	Type           ContractType `json:"type"`
	Title          string       `json:"title"`
	Description    string       `json:"description,omitempty"`
	TotalAmount    float64      `json:"totalAmount"`
	FinalPrice     *float64     `json:"finalPrice,omitempty"`
	ClientName     string       `json:"clientName,omitempty"`
	ExpiresAt      *string      `json:"expiresAt,omitempty"`
	IsSigned       bool         `json:"isSigned"`
	SignedAt       *string      `json:"signedAt,omitempty"`
	SignerName     string       `json:"signerName,omitempty"`
}

type CreateContractRequest struct {
	Type        ContractType `json:"type" validate:"required,oneof=service_contract project installer_service"`
	Title       string       `json:"title" validate:"required,max=200"`
	Description string       `json:"description,omitempty" validate:"max=10000"`
	TotalAmount float64      `json:"totalAmount" validate:"gte=0"`
	FinalPrice  *float64     `json:"finalPrice,omitempty" validate:"omitempty,gte=0"`
	ClientName  string       `json:"clientName,omitempty" validate:"max=200"`
	InstallerID *uuid.UUID   `json:"installerId,omitempty"`
	ProjectID   *uuid.UUID   `json:"projectId,omitempty"`
}

// GenerateLinkRequest controls signature link creation. Permanent links get a
// UUID token and no expiry; time-boxed links get an opaque hex token that
// expires after ExpiryHours (default 72). Regenerate replaces an existing
// unsigned link instead of failing on conflict.
type GenerateLinkRequest struct {
	Permanent   bool `json:"permanent"`
	ExpiryHours int  `json:"expiryHours,omitempty" validate:"omitempty,gt=0,lte=8760"`
	Regenerate  bool `json:"regenerate"`
}

type SignatureLinkDTO struct {
	ContractID     uuid.UUID      `json:"contractId"`
	SignatureToken string         `json:"signatureToken"`
	ExpiresAt      *string        `json:"expiresAt,omitempty"`
	Status         ContractStatus `json:"status"`
}

type SignContractRequest struct {
	SignerName    string `json:"signerName" validate:"required,max=200"`
	SignatureData string `json:"signatureData" validate:"required"`
}

// Incident DTOs

type IncidentDTO struct {
	ID             uuid.UUID            `json:"id"`
	ProjectID      uuid.UUID            `json:"projectId"`
	ProjectName    string               `json:"projectName,omitempty"`
	IncidentNumber string               `json:"incidentNumber"`
	Type           string               `json:"type"`
	Priority       string               `json:"priority"`
	Title          string               `json:"title"`
	Description    string               `json:"description,omitempty"`
	TotalCost      float64              `json:"totalCost"`
	Status         IncidentStatus       `json:"status"`
	CreatedByID    uuid.UUID            `json:"createdById"`
	Items          []IncidentItemDTO    `json:"items"`
	History        []IncidentHistoryDTO `json:"history,omitempty"`
	CreatedAt      string               `json:"createdAt"`
	UpdatedAt      string               `json:"updatedAt"`
}

type IncidentItemDTO struct {
	ID          uuid.UUID  `json:"id"`
	ProductID   *uuid.UUID `json:"productId,omitempty"`
	ProductName string     `json:"productName"`
	Quantity    float64    `json:"quantity"`
	UnitPrice   float64    `json:"unitPrice"`
	Subtotal    float64    `json:"subtotal"`
}

type IncidentHistoryDTO struct {
	ID        uuid.UUID `json:"id"`
	Status    string    `json:"status"`
	Comment   string    `json:"comment,omitempty"`
	UserName  string    `json:"userName,omitempty"`
	CreatedAt string    `json:"createdAt"`
}

type CreateIncidentItemRequest struct {
	ProductID   *uuid.UUID `json:"productId,omitempty"`
	ProductName string     `json:"productName" validate:"required,max=200"`
	Quantity    float64    `json:"quantity" validate:"required,gt=0"`
	UnitPrice   float64    `json:"unitPrice" validate:"gte=0"`
}

type CreateIncidentRequest struct {
	ProjectID   uuid.UUID `json:"projectId" validate:"required"`
	Type        string    `json:"type" validate:"required,max=100"`
	Priority    string    `json:"priority" validate:"required,oneof=low medium high critical"`
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description,omitempty" validate:"max=2000"`
	// TotalCost is only honored when no items are given; with items the
	// total is always computed from them
	TotalCost *float64                    `json:"totalCost,omitempty" validate:"omitempty,gte=0"`
	Items     []CreateIncidentItemRequest `json:"items,omitempty" validate:"dive"`
}

type UpdateIncidentRequest struct {
	Type        string                      `json:"type" validate:"required,max=100"`
	Priority    string                      `json:"priority" validate:"required,oneof=low medium high critical"`
	Title       string                      `json:"title" validate:"required,max=200"`
	Description string                      `json:"description,omitempty" validate:"max=2000"`
	Items       []CreateIncidentItemRequest `json:"items,omitempty" validate:"dive"`
}

type UpdateIncidentStatusRequest struct {
	Status  IncidentStatus `json:"status" validate:"required"`
	Comment string         `json:"comment,omitempty" validate:"max=500"`
}

// Notification DTOs

type NotificationDTO struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Data      string    `json:"data,omitempty"`
	Read      bool      `json:"read"`
	ReadAt    *string   `json:"readAt,omitempty"`
	CreatedAt string    `json:"createdAt"` // ISO 8601
}

// UnreadCountDTO represents the count of unread notifications
type UnreadCountDTO struct {
	Count int64 `json:"count"`
}

// Document DTOs

type DocumentDTO struct {
	ID          uuid.UUID `json:"id"`
	ContractID  uuid.UUID `json:"contractId"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	CreatedAt   string    `json:"createdAt"`
}

// Pagination response wrapper
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}
