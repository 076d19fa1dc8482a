package models

import (
	"fmt"
	"testing"

	"github.com/Aravind-528/StyleKart/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Product{}, &Order{}, &OrderItem{}))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestOrderBeforeCreateAssignsID(t *testing.T) {
	db := newTestDB(t)

	order := Order{PaymentMethod: payment.MethodCOD, PaymentStatus: payment.StatusPending}
	require.NoError(t, db.Create(&order).Error)
	assert.Len(t, order.ID, 36)

	// Pre-assigned ids are kept.
	fixed := Order{ID: "fixed-id", PaymentMethod: payment.MethodCOD, PaymentStatus: payment.StatusPending}
	require.NoError(t, db.Create(&fixed).Error)
	assert.Equal(t, "fixed-id", fixed.ID)
}

func TestApplyPaymentStatusKeepsIsPaidInLockstep(t *testing.T) {
	order := Order{PaymentStatus: payment.StatusPending}

	assert.True(t, order.ApplyPaymentStatus(payment.StatusSuccess))
	assert.True(t, order.IsPaid)
	assert.Equal(t, payment.StatusSuccess, order.PaymentStatus)

	assert.True(t, order.ApplyPaymentStatus(payment.StatusFailed))
	assert.False(t, order.IsPaid)

	assert.True(t, order.ApplyPaymentStatus(payment.StatusCancelled))
	assert.False(t, order.IsPaid)
}

func TestApplyPaymentStatusTerminalNeverRegresses(t *testing.T) {
	order := Order{PaymentStatus: payment.StatusSuccess, IsPaid: true}

	// A stale pending observation racing a webhook is dropped.
	assert.False(t, order.ApplyPaymentStatus(payment.StatusPending))
	assert.Equal(t, payment.StatusSuccess, order.PaymentStatus)
	assert.True(t, order.IsPaid)

	// Terminal to terminal is allowed; later gateway facts win.
	assert.True(t, order.ApplyPaymentStatus(payment.StatusFailed))
	assert.Equal(t, payment.StatusFailed, order.PaymentStatus)
	assert.False(t, order.IsPaid)
}

func TestUpdatePaymentStatusPersists(t *testing.T) {
	db := newTestDB(t)

	order := Order{PaymentMethod: payment.MethodSprintNxt, PaymentStatus: payment.StatusPending}
	require.NoError(t, db.Create(&order).Error)

	applied, err := UpdatePaymentStatus(db, &order, payment.StatusSuccess)
	require.NoError(t, err)
	assert.True(t, applied)

	var stored Order
	require.NoError(t, db.First(&stored, "id = ?", order.ID).Error)
	assert.Equal(t, payment.StatusSuccess, stored.PaymentStatus)
	assert.True(t, stored.IsPaid)

	// A rejected transition leaves the row untouched.
	applied, err = UpdatePaymentStatus(db, &stored, payment.StatusPending)
	require.NoError(t, err)
	assert.False(t, applied)

	var again Order
	require.NoError(t, db.First(&again, "id = ?", order.ID).Error)
	assert.Equal(t, payment.StatusSuccess, again.PaymentStatus)
	assert.True(t, again.IsPaid)
}

func TestProductUnitPrice(t *testing.T) {
	full := Product{Price: 999}
	assert.Equal(t, 999.0, full.UnitPrice())

	onSale := Product{Price: 999, SalePrice: 749}
	assert.Equal(t, 749.0, onSale.UnitPrice())
}
