package usecase

import (
	"context"
	"fmt"

	"RateBot/internal/domain/models"
	"RateBot/pkg/queue"
)

// ReportQueueJob adapts DeliveryController.Run to a queue job. Runs are never
// retried, so Handle only errors on undecodable payloads.
type ReportQueueJob struct {
	controller *DeliveryController
}

func NewReportQueueJob(controller *DeliveryController) *ReportQueueJob {
	return &ReportQueueJob{controller: controller}
}

func (j *ReportQueueJob) Name() string { return "report-delivery" }

func (j *ReportQueueJob) Type() string { return JobTypeReport }

func (j *ReportQueueJob) Handle(ctx context.Context, payload interface{}) error {
	job, err := queue.ParsePayload[models.ReportJob](payload)
	if err != nil {
		return fmt.Errorf("report job payload: %w", err)
	}
	j.controller.Run(ctx, *job)
	return nil
}
