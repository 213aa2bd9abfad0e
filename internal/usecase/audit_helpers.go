package usecase

import (
	"context"

	"makerspace-booking/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Catalog audit writes. A failure is logged and the change still commits.

func auditCreate(ctx context.Context, log *logrus.Logger, audit service.AuditService, tx *gorm.DB, act actor, action, entityName, entityID string, newValue interface{}) {
	userID := act.UserID
	if err := audit.LogCreate(ctx, tx, &userID, action, entityName, entityID, newValue); err != nil {
		log.Warnf("Audit entry %s for %s %s was not written: %+v", action, entityName, entityID, err)
	}
}

func auditUpdate(ctx context.Context, log *logrus.Logger, audit service.AuditService, tx *gorm.DB, act actor, action, entityName, entityID string, oldValue, newValue interface{}) {
	userID := act.UserID
	if err := audit.LogUpdate(ctx, tx, &userID, action, entityName, entityID, oldValue, newValue); err != nil {
		log.Warnf("Audit entry %s for %s %s was not written: %+v", action, entityName, entityID, err)
	}
}

func auditDelete(ctx context.Context, log *logrus.Logger, audit service.AuditService, tx *gorm.DB, act actor, action, entityName, entityID string, oldValue interface{}) {
	userID := act.UserID
	if err := audit.LogDelete(ctx, tx, &userID, action, entityName, entityID, oldValue); err != nil {
		log.Warnf("Audit entry %s for %s %s was not written: %+v", action, entityName, entityID, err)
	}
}
