package mapper

import (
	"time"

	"github.com/monterra-as/installer-api/internal/domain"
)

const timeFormat = "2006-01-02T15:04:05Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

// ToUserDTO converts User to UserDTO
func ToUserDTO(user *domain.User) domain.UserDTO {
	return domain.UserDTO{
		ID:        user.ID,
		Username:  user.Username,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		Active:    user.Active,
		CreatedAt: formatTime(user.CreatedAt),
		UpdatedAt: formatTime(user.UpdatedAt),
	}
}

// ToCategoryDTO converts Category to CategoryDTO
func ToCategoryDTO(category *domain.Category) domain.CategoryDTO {
	dto := domain.CategoryDTO{
		ID:          category.ID,
		Name:        category.Name,
		Description: category.Description,
		Active:      category.Active,
		CreatedAt:   formatTime(category.CreatedAt),
		UpdatedAt:   formatTime(category.UpdatedAt),
	}

	if len(category.Products) > 0 {
		dto.Products = make([]domain.ProductDTO, len(category.Products))
		for i, product := range category.Products {
			dto.Products[i] = ToProductDTO(&product)
		}
	}

	return dto
}

// ToProductDTO converts Product to ProductDTO
func ToProductDTO(product *domain.Product) domain.ProductDTO {
	dto := domain.ProductDTO{
		ID:          product.ID,
		CategoryID:  product.CategoryID,
		Name:        product.Name,
		Description: product.Description,
		UnitPrice:   product.UnitPrice,
		Unit:        product.Unit,
		Active:      product.Active,
		CreatedAt:   formatTime(product.CreatedAt),
		UpdatedAt:   formatTime(product.UpdatedAt),
	}

	if product.Category != nil {
		dto.CategoryName = product.Category.Name
	}

	return dto
}

// ToQuoteDTO converts Quote to QuoteDTO
func ToQuoteDTO(quote *domain.Quote) domain.QuoteDTO {
	items := make([]domain.QuoteItemDTO, len(quote.Items))
	for i, item := range quote.Items {
		items[i] = ToQuoteItemDTO(&item)
	}

	dto := domain.QuoteDTO{
		ID:          quote.ID,
		QuoteNumber: quote.QuoteNumber,
		VendorID:    quote.VendorID,
		ClientName:  quote.ClientName,
		ClientEmail: quote.ClientEmail,
		ClientPhone: quote.ClientPhone,
		Description: quote.Description,
		Status:      quote.Status,
		TotalCost:   quote.TotalCost,
		QuoteToken:  quote.QuoteToken,
		ExpiresAt:   formatTimePtr(quote.ExpiresAt),
		DownPayment: quote.DownPayment,
		Notes:       quote.Notes,
		ProjectID:   quote.ProjectID,
		AcceptedAt:  formatTimePtr(quote.AcceptedAt),
		Items:       items,
		CreatedAt:   formatTime(quote.CreatedAt),
		UpdatedAt:   formatTime(quote.UpdatedAt),
	}

	if quote.Vendor != nil {
		dto.VendorName = quote.Vendor.Name
	}

	return dto
}

// ToQuoteItemDTO converts QuoteItem to QuoteItemDTO
func ToQuoteItemDTO(item *domain.QuoteItem) domain.QuoteItemDTO {
	return domain.QuoteItemDTO{
		ID:          item.ID,
		ProductID:   item.ProductID,
		ProductName: item.ProductName,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
		Subtotal:    item.Quantity * item.UnitPrice,
	}
}

// ToPublicQuoteDTO converts Quote to the client-facing PublicQuoteDTO
func ToPublicQuoteDTO(quote *domain.Quote) domain.PublicQuoteDTO {
	items := make([]domain.QuoteItemDTO, len(quote.Items))
	for i, item := range quote.Items {
		items[i] = ToQuoteItemDTO(&item)
	}

	return domain.PublicQuoteDTO{
		QuoteNumber: quote.QuoteNumber,
		ClientName:  quote.ClientName,
		Description: quote.Description,
		Status:      quote.Status,
		TotalCost:   quote.TotalCost,
		DownPayment: quote.DownPayment,
		ExpiresAt:   formatTimePtr(quote.ExpiresAt),
		Items:       items,
		CreatedAt:   formatTime(quote.CreatedAt),
	}
}

// ToProjectDTO converts Project to ProjectDTO
func ToProjectDTO(project *domain.Project) domain.ProjectDTO {
	items := make([]domain.ProjectItemDTO, len(project.Items))
	for i, item := range project.Items {
		items[i] = ToProjectItemDTO(&item)
	}

	dto := domain.ProjectDTO{
		ID:                  project.ID,
		ProjectName:         project.ProjectName,
		InvoiceNumber:       project.InvoiceNumber,
		ClientName:          project.ClientName,
		Status:              project.Status,
		TotalCost:           project.TotalCost,
		CreatedByID:         project.CreatedByID,
		ApprovedByID:        project.ApprovedByID,
		ApprovedByName:      project.ApprovedByName,
		AssignedInstallerID: project.AssignedInstallerID,
		QuoteID:             project.QuoteID,
		DownPaymentAmount:   project.DownPaymentAmount,
		DownPaymentStatus:   project.DownPaymentStatus,
		InstallerPrice:      project.InstallerPrice,
		InstallerPriceState: project.InstallerPriceState,
		Notes:               project.Notes,
		Items:               items,
		CreatedAt:           formatTime(project.CreatedAt),
		UpdatedAt:           formatTime(project.UpdatedAt),
	}

	if project.CreatedBy != nil {
		dto.CreatedByName = project.CreatedBy.Name
	}
	if project.AssignedInstaller != nil {
		dto.AssignedInstaller = project.AssignedInstaller.Name
	}

	if len(project.History) > 0 {
		dto.History = make([]domain.ProjectHistoryDTO, len(project.History))
		for i, entry := range project.History {
			dto.History[i] = ToProjectHistoryDTO(&entry)
		}
	}

	return dto
}

// ToProjectItemDTO converts ProjectItem to ProjectItemDTO
func ToProjectItemDTO(item *domain.ProjectItem) domain.ProjectItemDTO {
	return domain.ProjectItemDTO{
		ID:          item.ID,
		ProductID:   item.ProductID,
		ProductName: item.ProductName,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
		Subtotal:    item.Quantity * item.UnitPrice,
	}
}

// ToProjectHistoryDTO converts ProjectHistory to ProjectHistoryDTO
func ToProjectHistoryDTO(entry *domain.ProjectHistory) domain.ProjectHistoryDTO {
	return domain.ProjectHistoryDTO{
		ID:        entry.ID,
		Status:    entry.Status,
		Comment:   entry.Comment,
		UserName:  entry.UserName,
		Action:    entry.Action,
		CreatedAt: formatTime(entry.CreatedAt),
	}
}

// ToContractDTO converts Contract to ContractDTO
func ToContractDTO(contract *domain.Contract) domain.ContractDTO {
	dto := domain.ContractDTO{
		ID:             contract.ID,
		ContractNumber: contract.ContractNumber,
		Type:           contract.Type,
		Title:          contract.Title,
		Description:    contract.Description,
		Status:         contract.Status,
		TotalAmount:    contract.TotalAmount,
		FinalPrice:     contract.FinalPrice,
		ClientName:     contract.ClientName,
		VendorID:       contract.VendorID,
		InstallerID:    contract.InstallerID,
		ProjectID:      contract.ProjectID,
		SignatureToken: contract.SignatureToken,
		ExpiresAt:      formatTimePtr(contract.ExpiresAt),
		IsSigned:       contract.IsSigned,
		SignedAt:       formatTimePtr(contract.SignedAt),
		SignerName:     contract.SignerName,
		CreatedAt:      formatTime(contract.CreatedAt),
		UpdatedAt:      formatTime(contract.UpdatedAt),
	}

	if len(contract.Communications) > 0 {
		dto.Communications = make([]domain.ContractCommunicationDTO, len(contract.Communications))
		for i, comm := range contract.Communications {
			dto.Communications[i] = ToContractCommunicationDTO(&comm)
		}
	}

	if len(contract.Documents) > 0 {
		dto.Documents = make([]domain.DocumentDTO, len(contract.Documents))
		for i, doc := range contract.Documents {
			dto.Documents[i] = ToDocumentDTO(&doc)
		}
	}

	return dto
}

// ToContractCommunicationDTO converts ContractCommunication to its DTO
func ToContractCommunicationDTO(comm *domain.ContractCommunication) domain.ContractCommunicationDTO {
	return domain.ContractCommunicationDTO{
		ID:        comm.ID,
		Kind:      comm.Kind,
		Message:   comm.Message,
		ActorName: comm.ActorName,
		CreatedAt: formatTime(comm.CreatedAt),
	}
}

// ToPublicContractDTO converts Contract to the signer-facing PublicContractDTO
func ToPublicContractDTO(contract *domain.Contract) domain.PublicContractDTO {
	return domain.PublicContractDTO{
		ContractNumber: contract.ContractNumber,
		Type:           contract.Type,
		Title:          contract.Title,
		Description:    contract.Description,
		TotalAmount:    contract.TotalAmount,
		FinalPrice:     contract.FinalPrice,
		ClientName:     contract.ClientName,
		ExpiresAt:      formatTimePtr(contract.ExpiresAt),
		IsSigned:       contract.IsSigned,
		SignedAt:       formatTimePtr(contract.SignedAt),
		SignerName:     contract.SignerName,
	}
}

// ToSignatureLinkDTO builds the response for link generation
func ToSignatureLinkDTO(contract *domain.Contract) domain.SignatureLinkDTO {
	dto := domain.SignatureLinkDTO{
		ContractID: contract.ID,
		ExpiresAt:  formatTimePtr(contract.ExpiresAt),
		Status:     contract.Status,
	}
	if contract.SignatureToken != nil {
		dto.SignatureToken = *contract.SignatureToken
	}
	return dto
}

// ToIncidentDTO converts Incident to IncidentDTO
func ToIncidentDTO(incident *domain.Incident) domain.IncidentDTO {
	items := make([]domain.IncidentItemDTO, len(incident.Items))
	for i, item := range incident.Items {
		items[i] = ToIncidentItemDTO(&item)
	}

	dto := domain.IncidentDTO{
		ID:             incident.ID,
		ProjectID:      incident.ProjectID,
		IncidentNumber: incident.IncidentNumber,
		Type:           incident.Type,
		Priority:       incident.Priority,
		Title:          incident.Title,
		Description:    incident.Description,
		TotalCost:      incident.TotalCost,
		Status:         incident.Status,
		CreatedByID:    incident.CreatedByID,
		Items:          items,
		CreatedAt:      formatTime(incident.CreatedAt),
		UpdatedAt:      formatTime(incident.UpdatedAt),
	}

	if incident.Project != nil {
		dto.ProjectName = incident.Project.ProjectName
	}

	if len(incident.History) > 0 {
		dto.History = make([]domain.IncidentHistoryDTO, len(incident.History))
		for i, entry := range incident.History {
			dto.History[i] = ToIncidentHistoryDTO(&entry)
		}
	}

	return dto
}

// ToIncidentItemDTO converts IncidentItem to IncidentItemDTO
func ToIncidentItemDTO(item *domain.IncidentItem) domain.IncidentItemDTO {
	return domain.IncidentItemDTO{
		ID:          item.ID,
		ProductID:   item.ProductID,
		ProductName: item.ProductName,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
		Subtotal:    item.Quantity * item.UnitPrice,
	}
}

// ToIncidentHistoryDTO converts IncidentHistory to IncidentHistoryDTO
func ToIncidentHistoryDTO(entry *domain.IncidentHistory) domain.IncidentHistoryDTO {
	return domain.IncidentHistoryDTO{
		ID:        entry.ID,
		Status:    entry.Status,
		Comment:   entry.Comment,
		UserName:  entry.UserName,
		CreatedAt: formatTime(entry.CreatedAt),
	}
}

// ToNotificationDTO converts Notification to NotificationDTO
func ToNotificationDTO(notification *domain.Notification) domain.NotificationDTO {
	return domain.NotificationDTO{
		ID:        notification.ID,
		Type:      notification.Type,
		Title:     notification.Title,
		Message:   notification.Message,
		Data:      notification.Data,
		Read:      notification.Read,
		ReadAt:    formatTimePtr(notification.ReadAt),
		CreatedAt: formatTime(notification.CreatedAt),
	}
}

// ToDocumentDTO converts Document to DocumentDTO
func ToDocumentDTO(doc *domain.Document) domain.DocumentDTO {
	return domain.DocumentDTO{
		ID:          doc.ID,
		ContractID:  doc.ContractID,
		Filename:    doc.Filename,
		ContentType: doc.ContentType,
		Size:        doc.Size,
		CreatedAt:   formatTime(doc.CreatedAt),
	}
}
