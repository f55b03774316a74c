package shop

import (
	"context"
	"time"

	"github.com/gravitlabs/storefront/internal/domain"
	"github.com/gravitlabs/storefront/internal/store"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"gorm.io/gorm"
)

// settingsCategory is the sys_config type the store profile lives
// under.
const settingsCategory = "store"

// SettingsService assembles the singleton store profile from
// sys_config rows and writes edits back.
type SettingsService struct {
	db       *gorm.DB
	notifier store.Notifier
}

func NewSettingsService(db *gorm.DB, notifier store.Notifier) *SettingsService {
	return &SettingsService{db: db, notifier: notifier}
}

// Load reads the singleton. Missing keys keep their zero value.
func (s *SettingsService) Load(ctx context.Context) (*domain.Settings, error) {
	var rows []domain.SysConfig
	err := s.db.WithContext(ctx).
		Where("type = ?", settingsCategory).
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "load settings")
	}

	raw := make(map[string]interface{}, len(rows))
	for _, row := range rows {
		raw[row.Name] = row.Value
	}

	settings := new(domain.Settings)
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           settings,
	})
	if err != nil {
		return nil, errors.Wrap(err, "settings decoder")
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, errors.Wrap(err, "decode settings")
	}
	return settings, nil
}

// Save upserts the given keys. Values are stored as strings and
// coerced back on load.
func (s *SettingsService) Save(ctx context.Context, values map[string]interface{}) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for name, value := range values {
			strval := cast.ToString(value)
			var count int64
			if err := tx.Model(&domain.SysConfig{}).
				Where("type = ? AND name = ?", settingsCategory, name).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				if err := tx.Create(&domain.SysConfig{
					Type:  settingsCategory,
					Name:  name,
					Value: strval,
				}).Error; err != nil {
					return err
				}
				continue
			}
			err := tx.Model(&domain.SysConfig{}).
				Where("type = ? AND name = ?", settingsCategory, name).
				Updates(map[string]interface{}{
					"value":      strval,
					"updated_at": time.Now(),
				}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "save settings")
	}
	if s.notifier != nil {
		s.notifier.Notify(store.CollectionSettings)
	}
	return nil
}
