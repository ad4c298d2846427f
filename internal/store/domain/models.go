// Package domain contains persistence models for tenant storefronts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// SubscriptionStatus mirrors the tenant's add-on subscription state.
type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "ACTIVE"
	SubscriptionStatusTrialing  SubscriptionStatus = "TRIALING"
	SubscriptionStatusPastDue   SubscriptionStatus = "PAST_DUE"
	SubscriptionStatusCanceled  SubscriptionStatus = "CANCELED"
	SubscriptionStatusSuspended SubscriptionStatus = "SUSPENDED"
)

// Store is one tenant storefront. Owned by the tenant-management surface;
// the pipeline only reads it.
type Store struct {
	ID                 snowflake.ID       `gorm:"primaryKey"`
	Domain             string             `gorm:"type:text;not null;uniqueIndex"`
	AccessToken        string             `gorm:"type:text"`
	StripeCustomerID   string             `gorm:"type:text"`
	CommissionPercent  float64            `gorm:"not null;default:25"`
	SubscriptionStatus SubscriptionStatus `gorm:"type:text;not null;default:'TRIALING'"`
	CreatedAt          time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt          time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Store) TableName() string { return "stores" }

// StoreSettings carries per-tenant widget and matching configuration.
type StoreSettings struct {
	ID               snowflake.ID      `gorm:"primaryKey"`
	StoreID          snowflake.ID      `gorm:"not null;uniqueIndex"`
	ProtectionHandle *string           `gorm:"type:text"`
	Metadata         datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt        time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt        time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (StoreSettings) TableName() string { return "store_settings" }
