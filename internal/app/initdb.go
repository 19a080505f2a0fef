package app

import (
	"errors"
	"time"

	"github.com/talkincode/orderstock/internal/domain"
	"github.com/talkincode/orderstock/pkg/common"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func (a *Application) checkSuper() {
	const superUsername = "admin"
	const defaultPassword = "orderstock"

	var operator domain.SysOpr
	err := a.gormDB.Where("username = ?", superUsername).First(&operator).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		hashed, herr := common.HashPassword(defaultPassword)
		if herr != nil {
			zap.L().Error("failed to hash default password", zap.Error(herr))
			return
		}
		if err := a.gormDB.Create(&domain.SysOpr{
			ID:        common.UUIDint64(),
			Realname:  "administrator",
			Email:     "N/A",
			Username:  superUsername,
			Password:  hashed,
			Level:     "super",
			Status:    common.ENABLED,
			Remark:    "super",
			LastLogin: time.Now(),
		}).Error; err != nil {
			zap.L().Error("failed to create default super admin", zap.Error(err))
		} else {
			zap.L().Info("initialized default super admin account", zap.String("username", superUsername))
		}
	case err != nil:
		zap.L().Error("failed to query super admin", zap.Error(err))
	}
}

// checkProducts initializes demo catalog entries on an empty store
func (a *Application) checkProducts() {
	defaultProducts := []domain.Product{
		{Name: "Demo Widget Basic", Description: "entry level widget", Price: 9.99, StockQty: 100},
		{Name: "Demo Widget Pro", Description: "widget with extras", Price: 24.5, StockQty: 50},
		{Name: "Demo Addon Support", Description: "support addon", Price: 49.95, StockQty: 200},
	}

	for _, p := range defaultProducts {
		var count int64
		a.gormDB.Model(&domain.Product{}).Where("name = ?", p.Name).Count(&count)
		if count == 0 {
			p.ID = common.UUIDint64()
			p.CreatedAt = time.Now()
			p.UpdatedAt = time.Now()
			if err := a.gormDB.Create(&p).Error; err != nil {
				zap.L().Error("failed to create default product", zap.String("name", p.Name), zap.Error(err))
			} else {
				zap.L().Info("initialized default product", zap.String("name", p.Name))
			}
		}
	}
}
