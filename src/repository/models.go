package repository

import (
	"time"
)

type (
	// User owns events, comments and reports. The password hash never
	// leaves the server.
	User struct {
		ID       uint   `gorm:"primaryKey" json:"id"`
		Name     string `gorm:"not null" json:"name"`
		Email    string `gorm:"uniqueIndex;not null" json:"email"`
		Password string `gorm:"not null" json:"-"`
		Image    string `json:"image"`

		CreatedAt time.Time `json:"createdAt"`

		Events   []Event   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
		Comments []Comment `gorm:"foreignKey:UserID" json:"-"`
		Reports  []Report  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	}

	// City, Prefecture and Category are lookup entities. Listing endpoints
	// only expose rows with Active set.
	City struct {
		ID     uint   `gorm:"primaryKey" json:"id"`
		Name   string `gorm:"column:city;size:20;uniqueIndex;not null" json:"city"`
		Active bool   `gorm:"not null" json:"active"`
	}

	Prefecture struct {
		ID     uint   `gorm:"primaryKey" json:"id"`
		Name   string `gorm:"column:prefecture;size:20;uniqueIndex;not null" json:"prefecture"`
		Active bool   `gorm:"not null" json:"active"`
	}

	Category struct {
		ID     uint   `gorm:"primaryKey" json:"id"`
		Name   string `gorm:"column:category;size:20;uniqueIndex;not null" json:"category"`
		Active bool   `gorm:"not null" json:"active"`
	}

	// Event is a user-created listing. Dates are stored as plain
	// YYYY-MM-DD strings since every date filter is an exact match.
	Event struct {
		ID          uint    `gorm:"primaryKey" json:"id"`
		Title       string  `gorm:"not null" json:"title"`
		Description string  `gorm:"not null" json:"description"`
		Address     string  `gorm:"not null" json:"address"`
		Lat         float64 `json:"lat"`
		Lng         float64 `json:"lng"`
		StartDate   string  `gorm:"size:10;not null;index" json:"startDate"`
		EndDate     string  `gorm:"size:10;not null" json:"endDate"`
		StartTime   string  `gorm:"size:8;not null" json:"startTime"`
		Images      string  `json:"images"`

		CityID       uint `gorm:"not null;index" json:"cityId"`
		PrefectureID uint `gorm:"not null;index" json:"prefectureId"`
		CategoryID   uint `gorm:"not null;index" json:"categoryId"`
		UserID       uint `gorm:"not null;index" json:"userId"`

		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`

		City       *City       `gorm:"foreignKey:CityID" json:"city,omitempty"`
		Prefecture *Prefecture `gorm:"foreignKey:PrefectureID" json:"prefecture,omitempty"`
		Category   *Category   `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
		User       *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`

		Comments []Comment `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"-"`
		Reports  []Report  `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"-"`
	}

	Comment struct {
		ID      uint   `gorm:"primaryKey" json:"id"`
		Content string `gorm:"not null" json:"content"`
		// Images holds a serialized list of attachment paths; "[]" when none.
		Images  string `gorm:"type:text" json:"images"`
		UserID  uint   `gorm:"not null;index" json:"userId"`
		EventID uint   `gorm:"not null;index" json:"eventId"`

		CreatedAt time.Time `json:"createdAt"`

		User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	}

	// Report rows are an append-only log: the same user may report the
	// same event more than once, there is no uniqueness constraint.
	Report struct {
		ID      uint `gorm:"primaryKey" json:"id"`
		UserID  uint `gorm:"not null;index" json:"userId"`
		EventID uint `gorm:"not null;index" json:"eventId"`
	}

	Image struct {
		ID      uint   `gorm:"primaryKey" json:"id"`
		Path    string `gorm:"not null" json:"path"`
		EventID uint   `gorm:"index" json:"eventId"`
	}
)
