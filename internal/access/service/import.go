package service

import (
	"context"
	"fmt"

	"garita/internal/access/models"
	"garita/internal/audit"
	id "garita/pkg/domain"
	dErrors "garita/pkg/domain-errors"
	"garita/pkg/requestcontext"
)

// ImportVisitors registers or enriches visitors in bulk. The batch names its
// own acting guard and facility explicitly; nothing is inferred from ambient
// request state. Item failures are collected per index, never abort the
// batch.
func (s *Service) ImportVisitors(ctx context.Context, actor requestcontext.Actor, batch models.ImportBatch) (*models.ImportResult, error) {
	if !actor.Role.Can(id.CapBulkImport) {
		return nil, dErrors.New(dErrors.CodeForbidden, "role may not import visitors")
	}
	if batch.FacilityID.IsNil() {
		batch.FacilityID = actor.FacilityID
	}
	if batch.FacilityID.IsNil() {
		return nil, dErrors.NewReason(dErrors.CodeForbidden, ReasonNoFacilityAssigned,
			"batch names no facility and the acting user has none assigned")
	}
	if batch.GuardID.IsNil() {
		batch.GuardID = actor.GuardID
	}
	if len(batch.Items) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "batch has no items")
	}
	if len(batch.Items) > s.importMaxBatch {
		return nil, dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("batch exceeds the %d item limit", s.importMaxBatch))
	}

	result := &models.ImportResult{}
	for i, item := range batch.Items {
		query := models.IdentityQuery{
			Document:    item.Document,
			Name:        item.Name,
			Surname:     item.Surname,
			CompanyName: item.CompanyName,
			Plate:       item.Plate,
		}
		_, created, err := s.resolve(ctx, query, true)
		if err != nil {
			reason := dErrors.ReasonOf(err)
			if reason == "" {
				reason = string(dErrors.CodeOf(err))
			}
			result.Errors = append(result.Errors, models.ImportItemError{Index: i, Reason: reason})
			continue
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}

	imported := audit.FromContext(ctx, audit.ActionVisitorImported)
	imported.GuardID = batch.GuardID
	imported.FacilityID = batch.FacilityID
	imported.Reason = fmt.Sprintf("created=%d updated=%d failed=%d",
		result.Created, result.Updated, len(result.Errors))
	s.record(imported)

	return result, nil
}
