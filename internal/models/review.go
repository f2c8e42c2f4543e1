package models

import (
	"gorm.io/gorm"
)

type Review struct {
	gorm.Model
	TripID     uint   `json:"tripId" gorm:"column:trip_id;not null;index"`
	Trip       Trip   `json:"trip" gorm:"foreignKey:TripID"`
	ReviewerID uint   `json:"reviewerId" gorm:"column:reviewer_id;not null"`
	Reviewer   User   `json:"reviewer" gorm:"foreignKey:ReviewerID"`
	RevieweeID uint   `json:"revieweeId" gorm:"column:reviewee_id;not null;index"`
	Reviewee   User   `json:"reviewee" gorm:"foreignKey:RevieweeID"`
	Rating     int    `json:"rating" gorm:"column:rating;not null"`
	Comment    string `json:"comment" gorm:"column:comment"`
}
