package services

import (
	"fmt"

	"github.com/AlexandrBurak/hw05-final/internal/db"
	"github.com/AlexandrBurak/hw05-final/internal/models"
)

// FollowingPosts returns every post authored by someone userID follows,
// newest first across all followees. A user who follows nobody gets an
// empty feed, not an error.
func FollowingPosts(userID uint) ([]models.Post, error) {
	var follows []models.Follow
	if err := db.DB.Where("user_id = ?", userID).Find(&follows).Error; err != nil {
		return nil, fmt.Errorf("load follows: %w", err)
	}
	if len(follows) == 0 {
		return nil, nil
	}

	authorIDs := make([]uint, len(follows))
	for i, f := range follows {
		authorIDs[i] = f.AuthorID
	}

	var posts []models.Post
	if err := db.DB.Preload("Author").Preload("Group").
		Where("author_id IN ?", authorIDs).
		Order("created_at DESC, id DESC").
		Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("load feed posts: %w", err)
	}
	return posts, nil
}

// FollowAuthor records that userID subscribes to authorID. Self-follow
// and duplicate follows are silent no-ops.
func FollowAuthor(userID, authorID uint) error {
	if userID == authorID {
		return nil
	}
	follow := models.Follow{UserID: userID, AuthorID: authorID}
	return db.DB.Where(models.Follow{UserID: userID, AuthorID: authorID}).
		FirstOrCreate(&follow).Error
}

// UnfollowAuthor removes the matching follow edge, if any.
func UnfollowAuthor(userID, authorID uint) error {
	return db.DB.Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.Follow{}).Error
}

// IsFollowing reports whether userID already follows authorID.
func IsFollowing(userID, authorID uint) bool {
	var count int64
	db.DB.Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count)
	return count > 0
}
