package jobs

import (
	"context"
	"errors"

	"github.com/proofdin/proofdin/internal/events"
	"go.uber.org/zap"
)

// HandleAnalyzeMessage is the events.AnalyzeHandler used by the worker. Invalid requests
// are logged and acknowledged since redelivering them cannot succeed.
func (s *Service) HandleAnalyzeMessage(ctx context.Context, msg events.AnalyzeMessage) error {
	req := msg.Request
	job, err := s.Analyze(ctx, msg.OwnerID, &req)
	var verr *ValidationError
	if errors.As(err, &verr) {
		s.log.Warn("dropping invalid analyze request",
			zap.String("owner_id", msg.OwnerID.String()),
			zap.Error(err))
		return nil
	}
	if err != nil {
		return err
	}
	s.log.Debug("analyze request processed", zap.String("job_id", job.ID.String()))
	return nil
}
