package dto

import (
	"encoding/json"

	"github.com/ArtEnginer/POS/internal/domain/entity"
	"github.com/ArtEnginer/POS/internal/domain/pricing"
)

// FromPrice convierte una fila de precio.
func FromPrice(p *entity.ProductBranchPrice) PriceResponse {
	out := PriceResponse{
		ID:             p.ID,
		ProductID:      p.ProductID,
		BranchID:       p.BranchID,
		UnitID:         p.ProductUnitID,
		BranchCode:     p.BranchCode,
		BranchName:     p.BranchName,
		UnitName:       p.UnitName,
		CostPrice:      pricing.FormatMoney(p.CostPrice),
		SellingPrice:   pricing.FormatMoney(p.SellingPrice),
		WholesalePrice: pricing.FormatNullableMoney(p.WholesalePrice),
		MemberPrice:    pricing.FormatNullableMoney(p.MemberPrice),
		UpdatedAt:      p.UpdatedAt,
	}
	if p.UnitName != "" {
		cv := p.ConversionValue
		out.ConversionValue = &cv
	}
	return out
}

// FromStock convierte una fila de stock calculando availableQuantity.
func FromStock(s *entity.ProductStock) StockResponse {
	return StockResponse{
		ProductID:         s.ProductID,
		BranchID:          s.BranchID,
		BranchName:        s.BranchName,
		Quantity:          s.Quantity,
		ReservedQuantity:  s.ReservedQuantity,
		AvailableQuantity: s.AvailableQuantity(),
		UpdatedAt:         s.UpdatedAt,
	}
}

// FromUnit convierte una unidad.
func FromUnit(u *entity.ProductUnit) UnitResponse {
	return UnitResponse{
		ID:              u.ID,
		ProductID:       u.ProductID,
		UnitName:        u.UnitName,
		ConversionValue: u.ConversionValue,
		IsBaseUnit:      u.IsBaseUnit,
		IsPurchasable:   u.IsPurchasable,
		IsSellable:      u.IsSellable,
		Barcode:         u.Barcode,
		SortOrder:       u.SortOrder,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

// FromProduct convierte un producto.
func FromProduct(p *entity.Product) ProductResponse {
	return ProductResponse{
		ID:                 p.ID,
		SKU:                p.SKU,
		Barcode:            p.Barcode,
		Name:               p.Name,
		Description:        p.Description,
		CategoryID:         p.CategoryID,
		Unit:               p.Unit,
		CostPrice:          pricing.FormatMoney(p.CostPrice),
		SellingPrice:       pricing.FormatMoney(p.SellingPrice),
		MinStock:           p.MinStock,
		MaxStock:           p.MaxStock,
		ReorderPoint:       p.ReorderPoint,
		TaxRate:            p.TaxRate,
		DiscountPercentage: p.DiscountPercentage,
		IsActive:           p.IsActive,
		IsTrackable:        p.IsTrackable,
		ImageURL:           p.ImageURL,
		Attributes:         p.Attributes,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

// FromProductListItem convierte un producto con su stock agregado.
func FromProductListItem(it *entity.ProductListItem) ProductResponse {
	out := FromProduct(&it.Product)
	out.CategoryName = it.CategoryName
	out.BranchID = it.BranchID
	qty, avail := it.StockQuantity, it.AvailableQuantity
	out.StockQuantity = &qty
	out.AvailableQuantity = &avail
	return out
}

// FromSale convierte una venta con sus líneas.
func FromSale(s *entity.Sale) SaleResponse {
	out := SaleResponse{
		ID:               s.ID,
		SaleNumber:       s.SaleNumber,
		BranchID:         s.BranchID,
		BranchName:       s.BranchName,
		CustomerID:       s.CustomerID,
		CustomerName:     s.CustomerName,
		CashierID:        s.CashierID,
		CashierName:      s.CashierName,
		Subtotal:         pricing.FormatMoney(s.Subtotal),
		DiscountAmount:   pricing.FormatMoney(s.DiscountAmount),
		TaxAmount:        pricing.FormatMoney(s.TaxAmount),
		TotalAmount:      pricing.FormatMoney(s.TotalAmount),
		PaidAmount:       pricing.FormatMoney(s.PaidAmount),
		ChangeAmount:     pricing.FormatMoney(s.ChangeAmount),
		PaymentMethod:    s.PaymentMethod,
		PaymentReference: s.PaymentReference,
		Status:           s.Status,
		Notes:            s.Notes,
		SaleDate:         s.SaleDate,
	}
	for _, it := range s.Items {
		out.Items = append(out.Items, SaleItemResponse{
			ID:             it.ID,
			ProductID:      it.ProductID,
			UnitID:         it.ProductUnitID,
			ProductName:    it.ProductName,
			SKU:            it.SKU,
			UnitName:       it.UnitName,
			Quantity:       it.Quantity,
			BaseQuantity:   it.BaseQuantity,
			UnitPrice:      pricing.FormatMoney(it.UnitPrice),
			DiscountAmount: pricing.FormatMoney(it.DiscountAmount),
			TaxAmount:      pricing.FormatMoney(it.TaxAmount),
			Subtotal:       pricing.FormatMoney(it.Subtotal),
			Total:          pricing.FormatMoney(it.Total),
		})
	}
	return out
}

// FromReceiving convierte una recepción con sus líneas.
func FromReceiving(r *entity.Receiving) ReceivingResponse {
	out := ReceivingResponse{
		ID:              r.ID,
		ReceivingNumber: r.ReceivingNumber,
		BranchID:        r.BranchID,
		BranchName:      r.BranchName,
		SupplierName:    r.SupplierName,
		ReferenceNumber: r.ReferenceNumber,
		ReceivedBy:      r.ReceivedBy,
		TotalCost:       pricing.FormatMoney(r.TotalCost),
		Notes:           r.Notes,
		ReceivedAt:      r.ReceivedAt,
	}
	for _, it := range r.Items {
		out.Items = append(out.Items, ReceivingItemResponse{
			ID:           it.ID,
			ProductID:    it.ProductID,
			UnitID:       it.ProductUnitID,
			UnitName:     it.UnitName,
			Quantity:     it.Quantity,
			BaseQuantity: it.BaseQuantity,
			CostPrice:    pricing.FormatMoney(it.CostPrice),
			Subtotal:     pricing.FormatMoney(it.Subtotal),
		})
	}
	return out
}

// FromUser convierte un usuario (sin hash).
func FromUser(u *entity.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FullName:    u.FullName,
		Role:        u.Role,
		BranchID:    u.BranchID,
		Status:      u.Status,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

// FromBranch convierte una sucursal.
func FromBranch(b *entity.Branch) BranchResponse {
	return BranchResponse{
		ID: b.ID, Code: b.Code, Name: b.Name, Address: b.Address, Phone: b.Phone,
		Email: b.Email, Type: b.Type, IsActive: b.IsActive, CreatedAt: b.CreatedAt,
	}
}

// FromCustomer convierte un cliente.
func FromCustomer(c *entity.Customer) CustomerResponse {
	return CustomerResponse{
		ID: c.ID, Code: c.Code, Name: c.Name, Email: c.Email, Phone: c.Phone,
		Address: c.Address, IsMember: c.IsMember, CreatedAt: c.CreatedAt,
	}
}

// FromCategory convierte una categoría.
func FromCategory(c *entity.Category) CategoryResponse {
	return CategoryResponse{
		ID: c.ID, ParentID: c.ParentID, Name: c.Name, Description: c.Description,
		IsActive: c.IsActive, CreatedAt: c.CreatedAt,
	}
}

// FromAuditLog convierte una entrada de auditoría decodificando las fotos JSON.
func FromAuditLog(l *entity.AuditLog) StockHistoryEntry {
	return StockHistoryEntry{
		ID:        l.ID,
		UserID:    l.UserID,
		BranchID:  l.BranchID,
		Action:    l.Action,
		OldData:   decodeSnapshot(l.OldData),
		NewData:   decodeSnapshot(l.NewData),
		IPAddress: l.IPAddress,
		CreatedAt: l.CreatedAt,
	}
}

func decodeSnapshot(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return json.RawMessage(raw)
}

// FromSupplier convierte un proveedor.
func FromSupplier(s *entity.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:             s.ID,
		Code:           s.Code,
		Name:           s.Name,
		Email:          s.Email,
		Phone:          s.Phone,
		Address:        s.Address,
		City:           s.City,
		TaxID:          s.TaxID,
		PaymentTerms:   s.PaymentTerms,
		CreditLimit:    pricing.FormatMoney(s.CreditLimit),
		CurrentBalance: pricing.FormatMoney(s.CurrentBalance),
		IsActive:       s.IsActive,
		Notes:          s.Notes,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

// FromPurchaseReturn convierte una devolución a proveedor con sus líneas.
func FromPurchaseReturn(r *entity.PurchaseReturn) PurchaseReturnResponse {
	out := PurchaseReturnResponse{
		ID:              r.ID,
		ReturnNumber:    r.ReturnNumber,
		ReceivingID:     r.ReceivingID,
		ReceivingNumber: r.ReceivingNumber,
		BranchID:        r.BranchID,
		BranchName:      r.BranchName,
		SupplierID:      r.SupplierID,
		SupplierName:    r.SupplierName,
		Reason:          r.Reason,
		Notes:           r.Notes,
		Status:          r.Status,
		TotalAmount:     pricing.FormatMoney(r.TotalAmount),
		ReturnedBy:      r.ReturnedBy,
		ReturnDate:      r.ReturnDate,
	}
	for _, it := range r.Items {
		out.Items = append(out.Items, PurchaseReturnItemResponse{
			ID:              it.ID,
			ReceivingItemID: it.ReceivingItemID,
			ProductID:       it.ProductID,
			UnitID:          it.ProductUnitID,
			UnitName:        it.UnitName,
			Quantity:        it.Quantity,
			BaseQuantity:    it.BaseQuantity,
			CostPrice:       pricing.FormatMoney(it.CostPrice),
			Subtotal:        pricing.FormatMoney(it.Subtotal),
		})
	}
	return out
}

// FromSalesReturn convierte una devolución de cliente con sus líneas.
func FromSalesReturn(r *entity.SalesReturn) SalesReturnResponse {
	out := SalesReturnResponse{
		ID:           r.ID,
		ReturnNumber: r.ReturnNumber,
		SaleID:       r.SaleID,
		SaleNumber:   r.SaleNumber,
		BranchID:     r.BranchID,
		BranchName:   r.BranchName,
		CustomerID:   r.CustomerID,
		Reason:       r.Reason,
		Notes:        r.Notes,
		RefundMethod: r.RefundMethod,
		TotalRefund:  pricing.FormatMoney(r.TotalRefund),
		Status:       r.Status,
		ProcessedBy:  r.ProcessedBy,
		ReturnDate:   r.ReturnDate,
	}
	for _, it := range r.Items {
		out.Items = append(out.Items, SalesReturnItemResponse{
			ID:           it.ID,
			SaleItemID:   it.SaleItemID,
			ProductID:    it.ProductID,
			UnitID:       it.ProductUnitID,
			ProductName:  it.ProductName,
			UnitName:     it.UnitName,
			Quantity:     it.Quantity,
			BaseQuantity: it.BaseQuantity,
			UnitPrice:    pricing.FormatMoney(it.UnitPrice),
			Subtotal:     pricing.FormatMoney(it.Subtotal),
		})
	}
	return out
}
