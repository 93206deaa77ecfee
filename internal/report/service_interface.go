package report

import "context"

type ServiceInterface interface {
	AppointmentSummary(ctx context.Context, clinicID string, p Period) (*AppointmentSummary, error)
	RevenueByClinic(ctx context.Context, p Period) (*RevenueReport, error)
	TopServices(ctx context.Context, p Period, limit int) (*TopServicesReport, error)
	InventoryValuation(ctx context.Context, clinicID string) (*InventoryValuation, error)
}

var _ ServiceInterface = (*Service)(nil)
