package models

// LevelDocument representa el progreso de un miembro en la colección "levels"
type LevelDocument struct {
	GuildID       string `bson:"guildId" json:"guildId"`
	UserID        string `bson:"userId" json:"userId"`
	XP            int64  `bson:"xp" json:"xp"`
	Level         int64  `bson:"level" json:"level"`
	Messages      int64  `bson:"messages" json:"messages"`
	LastMessageAt int64  `bson:"lastMessageAt" json:"lastMessageAt"`
}
