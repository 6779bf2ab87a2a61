package repositories

import (
	"context"

	"github.com/anonto42/sone/backend/internal/models"
	"gorm.io/gorm"
)

// SoneRepository defines the interface for Sone data operations
type SoneRepository interface {
	LoadLocalSones() ([]models.SoneSnapshot, error)
	SaveSone(snapshot models.SoneSnapshot) error
	GetSoneIDByFirebaseUID(firebaseUID string) (string, error)
}

// PostgresSoneRepository implements SoneRepository for PostgreSQL
type PostgresSoneRepository struct {
	db *gorm.DB
}

// NewPostgresSoneRepository creates a new PostgresSoneRepository
func NewPostgresSoneRepository(db *gorm.DB) *PostgresSoneRepository {
	return &PostgresSoneRepository{db: db}
}

// AutoMigrate creates the sones, follows, blocks and likes tables
func (r *PostgresSoneRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&models.SoneRecord{}, &models.Follow{}, &models.Block{}, &models.Like{})
}

// LoadLocalSones reads every local Sone with its follow-set, blocks and likes
func (r *PostgresSoneRepository) LoadLocalSones() ([]models.SoneSnapshot, error) {
	var records []models.SoneRecord
	if err := r.db.Where("local = ?", true).Order("id").Find(&records).Error; err != nil {
		return nil, err
	}

	snapshots := make([]models.SoneSnapshot, 0, len(records))
	for _, rec := range records {
		snapshot := models.SoneSnapshot{ID: rec.ID, Name: rec.Name, Local: rec.Local, Locked: rec.Locked}

		if err := r.db.Model(&models.Follow{}).Where("sone_id = ?", rec.ID).
			Order("followed_id").Pluck("followed_id", &snapshot.Following).Error; err != nil {
			return nil, err
		}
		if err := r.db.Model(&models.Block{}).Where("sone_id = ?", rec.ID).
			Order("blocked_id").Pluck("blocked_id", &snapshot.Blocked).Error; err != nil {
			return nil, err
		}

		var likes []models.Like
		if err := r.db.Where("sone_id = ?", rec.ID).Order("content_id").Find(&likes).Error; err != nil {
			return nil, err
		}
		for _, like := range likes {
			switch like.Kind {
			case "post":
				snapshot.LikedPosts = append(snapshot.LikedPosts, like.ContentID)
			case "reply":
				snapshot.LikedReplies = append(snapshot.LikedReplies, like.ContentID)
			}
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, nil
}

// SaveSone replaces the stored state of a Sone in one transaction
func (r *PostgresSoneRepository) SaveSone(snapshot models.SoneSnapshot) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		record := models.SoneRecord{
			ID:     snapshot.ID,
			Name:   snapshot.Name,
			Local:  snapshot.Local,
			Locked: snapshot.Locked,
		}
		// Keep the firebase link, which is managed outside the core.
		if err := tx.Where(models.SoneRecord{ID: snapshot.ID}).
			Assign(map[string]interface{}{"name": record.Name, "local": record.Local, "locked": record.Locked}).
			FirstOrCreate(&record).Error; err != nil {
			return err
		}

		if err := tx.Where("sone_id = ?", snapshot.ID).Delete(&models.Follow{}).Error; err != nil {
			return err
		}
		if len(snapshot.Following) > 0 {
			follows := make([]models.Follow, 0, len(snapshot.Following))
			for _, id := range snapshot.Following {
				follows = append(follows, models.Follow{SoneID: snapshot.ID, FollowedID: id})
			}
			if err := tx.Create(&follows).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("sone_id = ?", snapshot.ID).Delete(&models.Block{}).Error; err != nil {
			return err
		}
		if len(snapshot.Blocked) > 0 {
			blocks := make([]models.Block, 0, len(snapshot.Blocked))
			for _, id := range snapshot.Blocked {
				blocks = append(blocks, models.Block{SoneID: snapshot.ID, BlockedID: id})
			}
			if err := tx.Create(&blocks).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("sone_id = ?", snapshot.ID).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		likes := make([]models.Like, 0, len(snapshot.LikedPosts)+len(snapshot.LikedReplies))
		for _, id := range snapshot.LikedPosts {
			likes = append(likes, models.Like{SoneID: snapshot.ID, Kind: "post", ContentID: id})
		}
		for _, id := range snapshot.LikedReplies {
			likes = append(likes, models.Like{SoneID: snapshot.ID, Kind: "reply", ContentID: id})
		}
		if len(likes) > 0 {
			return tx.Create(&likes).Error
		}
		return nil
	})
}

// GetRemoteSones returns every stored Sone not owned by this process
func (r *PostgresSoneRepository) GetRemoteSones() ([]models.SoneRecord, error) {
	var records []models.SoneRecord
	if err := r.db.Where("local = ?", false).Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// MarkSoneKnown flags a remote Sone so it is not announced again
func (r *PostgresSoneRepository) MarkSoneKnown(ctx context.Context, soneID string) error {
	return r.db.WithContext(ctx).Model(&models.SoneRecord{}).
		Where("id = ?", soneID).Update("known", true).Error
}

// GetSoneIDByFirebaseUID resolves the local Sone linked to a Firebase user
func (r *PostgresSoneRepository) GetSoneIDByFirebaseUID(firebaseUID string) (string, error) {
	var record models.SoneRecord
	if err := r.db.Where("firebase_uid = ? AND local = ?", firebaseUID, true).First(&record).Error; err != nil {
		return "", err
	}
	return record.ID, nil
}
