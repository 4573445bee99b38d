package model

// Followership is a directed edge: FollowerID follows FolloweeID.
// The pair is the primary key, so an edge exists at most once.
type Followership struct {
	FollowerID uint `gorm:"primaryKey;autoIncrement:false;check:chk_followerships_no_self,follower_id <> followee_id"`
	FolloweeID uint `gorm:"primaryKey;autoIncrement:false;index"`

	Follower *User `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE"`
	Followee *User `gorm:"foreignKey:FolloweeID;constraint:OnDelete:CASCADE"`
}

// TableName keeps the edge table name stable across dialects.
func (Followership) TableName() string {
	return "followerships"
}
