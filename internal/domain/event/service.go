package event

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"
)

type Service struct {
	log       Log
	publisher Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewService builds the event service. publisher may be nil when no broker
// is configured.
func NewService(log Log, publisher Publisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		log:       log,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Record appends an event for customerID stamped with the current time and
// forwards it to the broker. Publishing is best effort.
func (s *Service) Record(ctx context.Context, customerID int64, data map[string]any) (*CustomerEvent, error) {
	if customerID <= 0 {
		return nil, ErrInvalidCustomerID
	}
	if len(data) == 0 {
		return nil, ErrEmptyPayload
	}

	e := &CustomerEvent{
		CustomerID:     customerID,
		EventTimestamp: s.now(),
		Data:           data,
	}
	if err := s.log.Append(ctx, e); err != nil {
		return nil, err
	}

	Publish(ctx, s.publisher, e, s.logger)
	return e, nil
}

// ListByCustomer returns the full history for a customer, newest first.
func (s *Service) ListByCustomer(ctx context.Context, customerID int64) ([]CustomerEvent, error) {
	if customerID <= 0 {
		return nil, ErrInvalidCustomerID
	}
	events, err := s.log.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []CustomerEvent{}
	}
	return events, nil
}

// Publish sends e keyed by customer id. A nil publisher is a no-op and
// failures are logged rather than returned.
func Publish(ctx context.Context, publisher Publisher, e *CustomerEvent, logger *zap.Logger) {
	if publisher == nil {
		return
	}
	key := strconv.FormatInt(e.CustomerID, 10)
	if err := publisher.Publish(ctx, key, e); err != nil {
		logger.Warn("failed to publish customer event",
			zap.Int64("event_id", e.ID),
			zap.Int64("customer_id", e.CustomerID),
			zap.Error(err),
		)
	}
}
