package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/noah-isme/waste-collection-api/internal/models"
	appErrors "github.com/noah-isme/waste-collection-api/pkg/errors"
)

type driverIdentity interface {
	FindByUserID(ctx context.Context, userID string) (*models.Driver, error)
}

// requestAccess answers who may read or act on a request: its owner, the driver
// bound to it, and administrators.
type requestAccess struct {
	drivers driverIdentity
}

// driverID resolves the driver profile of a DRIVER actor.
func (a requestAccess) driverID(ctx context.Context, actor models.Actor) (string, error) {
	if actor.Role != models.RoleDriver || a.drivers == nil {
		return "", appErrors.ErrForbidden
	}
	driver, err := a.drivers.FindByUserID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.Clone(appErrors.ErrForbidden, "no driver profile for this account")
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve driver profile")
	}
	return driver.ID, nil
}

func (a requestAccess) ensureOwnerOrAdmin(actor models.Actor, req *models.WasteRequest) error {
	if actor.UserID == "" {
		return appErrors.ErrUnauthorized
	}
	if actor.IsAdmin() || req.UserID == actor.UserID {
		return nil
	}
	return appErrors.Clone(appErrors.ErrForbidden, "request belongs to another user")
}

func (a requestAccess) ensureBoundDriver(ctx context.Context, actor models.Actor, req *models.WasteRequest) error {
	if actor.UserID == "" {
		return appErrors.ErrUnauthorized
	}
	if actor.IsAdmin() {
		return nil
	}
	driverID, err := a.driverID(ctx, actor)
	if err != nil {
		return err
	}
	if req.DriverID == nil || *req.DriverID != driverID {
		return appErrors.Clone(appErrors.ErrForbidden, "request is not assigned to this driver")
	}
	return nil
}

// ensureParticipant admits the owner, the bound driver and administrators.
func (a requestAccess) ensureParticipant(ctx context.Context, actor models.Actor, req *models.WasteRequest) error {
	if err := a.ensureOwnerOrAdmin(actor, req); err == nil {
		return nil
	} else if actor.Role != models.RoleDriver {
		return err
	}
	return a.ensureBoundDriver(ctx, actor, req)
}
