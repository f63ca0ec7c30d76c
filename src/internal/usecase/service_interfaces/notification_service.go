package service_interfaces

import "context"

// NotificationService delivers a rejection notice to operations.
// Delivery is best-effort; a failure never rolls back the rejection.
type NotificationService interface {
	SendRejectionNotice(ctx context.Context, contact, creatorName, reason string) error
}

// ReportDispatcher pushes a rendered report summary to the works
// channel. Best-effort, same as notifications.
type ReportDispatcher interface {
	DispatchReport(ctx context.Context, text string) error
}
