package models

import (
	"github.com/smartmobility/tripplanner/internal/destination"
	"github.com/smartmobility/tripplanner/internal/report"
)

// ReportStatusRequest is the body of PUT /v1/reports/{reportId}/status.
type ReportStatusRequest struct {
	Status report.Status `json:"status"`
}

// ReportListResponse lists reports.
type ReportListResponse struct {
	Items []*report.Report `json:"items"`
	Meta  ListMeta         `json:"meta"`
}

// DestinationListResponse lists saved destinations.
type DestinationListResponse struct {
	Items []*destination.Destination `json:"items"`
	Meta  ListMeta                   `json:"meta"`
}
