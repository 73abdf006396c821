package leveling

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/PancyStudios/PancyModGo/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
)

const (
	// MinXP and MaxXP bound the XP granted per message
	MinXP = 15
	MaxXP = 25
	// Cooldown is the minimum time between two rewarded messages of a member
	Cooldown = 60 * time.Second
)

// Store persists level documents.
// *database.DataManager[models.LevelDocument] satisfies it.
type Store interface {
	Get(ctx context.Context, query bson.M) (*models.LevelDocument, error)
	Find(ctx context.Context, query bson.M, sortField string, limit int64) ([]*models.LevelDocument, error)
	Set(ctx context.Context, query bson.M, data interface{}) (*models.LevelDocument, error)
	Increment(ctx context.Context, query bson.M, amounts bson.M) (*models.LevelDocument, error)
}

// LevelUp describes a member reaching a new level
type LevelUp struct {
	GuildID string
	UserID  string
	Level   int64
	XP      int64
}

// Service awards XP and answers rank queries
type Service struct {
	store     Store
	cooldowns *Cooldowns
	roll      func(n int) int
	now       func() time.Time
}

// NewService creates a Service
func NewService(store Store) *Service {
	return &Service{
		store:     store,
		cooldowns: NewCooldowns(Cooldown),
		roll:      rand.Intn,
		now:       time.Now,
	}
}

// Cooldowns exposes the cooldown registry for periodic pruning
func (s *Service) Cooldowns() *Cooldowns {
	return s.cooldowns
}

func memberQuery(guildID, userID string) bson.M {
	return bson.M{"guildId": guildID, "userId": userID}
}

// HandleMessage rewards one message. It returns a non-nil LevelUp when the
// member crossed into a new level.
func (s *Service) HandleMessage(ctx context.Context, guildID, userID string) (*LevelUp, error) {
	if !s.cooldowns.Allow(guildID, userID) {
		return nil, nil
	}

	gain := int64(MinXP + s.roll(MaxXP-MinXP+1))
	query := memberQuery(guildID, userID)

	doc, err := s.store.Increment(ctx, query, bson.M{"xp": gain, "messages": 1})
	if err != nil {
		return nil, fmt.Errorf("add xp to %s: %w", userID, err)
	}

	level := ProgressFor(doc.XP).Level
	update := bson.M{"lastMessageAt": s.now().UnixMilli()}
	leveled := level > doc.Level
	if leveled {
		update["level"] = level
	}
	if _, err := s.store.Set(ctx, query, update); err != nil {
		logger.Warn(fmt.Sprintf("No se pudo guardar el nivel de %s: %v", userID, err), "Levels")
	}

	if !leveled {
		return nil, nil
	}
	return &LevelUp{GuildID: guildID, UserID: userID, Level: level, XP: doc.XP}, nil
}

// Rank returns a member's document; members without XP get an empty one
func (s *Service) Rank(ctx context.Context, guildID, userID string) (*models.LevelDocument, error) {
	doc, err := s.store.Get(ctx, memberQuery(guildID, userID))
	if err != nil {
		return nil, err
	}
	if doc == nil {
		doc = &models.LevelDocument{GuildID: guildID, UserID: userID}
	}
	return doc, nil
}

// Top returns the members of a guild with the most XP
func (s *Service) Top(ctx context.Context, guildID string, limit int64) ([]*models.LevelDocument, error) {
	return s.store.Find(ctx, bson.M{"guildId": guildID}, "xp", limit)
}
