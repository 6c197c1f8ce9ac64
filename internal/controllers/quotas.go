package controllers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/contentpilot/cps/internal/ledger"
	"github.com/contentpilot/cps/internal/model"
)

// quotaReport assembles today's standings for every service the ledger knows
// about, whether it has a ceiling, recorded calls, or both.
func (s Server) quotaReport(ctx context.Context) model.QuotaReport {
	counts := s.Quotas.CountsToday(ctx)
	ceilings := s.Spec.Ceilings()

	names := make(map[string]bool, len(ceilings)+len(counts))
	for service := range ceilings {
		names[service] = true
	}
	for service := range counts {
		names[service] = true
	}

	services := make([]model.QuotaStatus, 0, len(names))
	for service := range names {
		status := model.QuotaStatus{
			Service:  service,
			Success:  counts[service].Success,
			Failure:  counts[service].Failure,
			Eligible: true,
		}
		if ceiling, ok := s.Quotas.Ceiling(service); ok {
			remaining := int64(ceiling) - status.Success
			if remaining < 0 {
				remaining = 0
			}
			status.Ceiling = &ceiling
			status.Remaining = &remaining
			status.Eligible = remaining > 0
		}
		services = append(services, status)
	}
	sort.Slice(services, func(i, j int) bool {
		return services[i].Service < services[j].Service
	})

	return model.QuotaReport{
		Day:      ledger.DayKey(time.Now()),
		Services: services,
	}
}

// swagger:route GET /v1/quotas quotas getQuotas
//
// Get Quota Standings
//
// Reports each external service's calls and remaining allowance for today.
//
// responses:
//   200: quotaReportResponse
//   500: internalServerErrorResponse

// GetQuotas reports today's per-service quota standings.
func (s Server) GetQuotas(ctx echo.Context) error {
	report := s.quotaReport(ctx.Request().Context())
	return model.Success(ctx, report, http.StatusOK)
}
