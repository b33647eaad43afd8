package repository

import (
	"gorm.io/gorm"
)

type (
	// EventStore issues every relational read and write the service needs.
	// Handlers translate its errors into the HTTP error taxonomy; the store
	// itself only reports gorm errors (gorm.ErrRecordNotFound included).
	EventStore struct {
		db *gorm.DB
	}

	// EventFilter describes the equality predicates of a filtered events
	// read. A nil field means the predicate is absent; a pointer to the
	// zero value is a real predicate and matches nothing (the empty name
	// and the literal id 0 never identify a row). Callers that treat an
	// empty date as "no date filter" leave StartDate nil.
	//
	// Joined controls whether the city/prefecture/category rows are loaded
	// into the result; the plain list and date-only reads return bare rows.
	EventFilter struct {
		UserID         *uint
		CityID         *uint
		PrefectureID   *uint
		CategoryID     *uint
		CityName       *string
		PrefectureName *string
		CategoryName   *string
		StartDate      *string
		Joined         bool
	}
)

func NewEventStore(db *gorm.DB) *EventStore {
	return &EventStore{db: db}
}

// EventsMatching composes the filter into a single query. Every predicate
// is an exact match; there is no pagination or ordering contract.
func (s *EventStore) EventsMatching(f EventFilter) ([]Event, error) {
	q := s.db.Model(&Event{})

	if f.Joined {
		q = q.Preload("City").Preload("Prefecture").Preload("Category")
	}
	if f.UserID != nil {
		q = q.Where("events.user_id = ?", *f.UserID)
	}
	if f.CityID != nil {
		q = q.Where("events.city_id = ?", *f.CityID)
	}
	if f.PrefectureID != nil {
		q = q.Where("events.prefecture_id = ?", *f.PrefectureID)
	}
	if f.CategoryID != nil {
		q = q.Where("events.category_id = ?", *f.CategoryID)
	}
	if f.CityName != nil {
		q = q.Joins("JOIN cities ON cities.id = events.city_id").
			Where("cities.city = ?", *f.CityName)
	}
	if f.PrefectureName != nil {
		q = q.Joins("JOIN prefectures ON prefectures.id = events.prefecture_id").
			Where("prefectures.prefecture = ?", *f.PrefectureName)
	}
	if f.CategoryName != nil {
		q = q.Joins("JOIN categories ON categories.id = events.category_id").
			Where("categories.category = ?", *f.CategoryName)
	}
	if f.StartDate != nil {
		q = q.Where("events.start_date = ?", *f.StartDate)
	}

	var events []Event
	if err := q.Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (s *EventStore) Events() ([]Event, error) {
	var events []Event
	if err := s.db.Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (s *EventStore) EventByID(id uint) (*Event, error) {
	var event Event
	if err := s.db.First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// EventNested loads one event with its city, prefecture and category rows.
func (s *EventStore) EventNested(id uint) (*Event, error) {
	var event Event
	err := s.db.
		Preload("City").Preload("Prefecture").Preload("Category").
		First(&event, id).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// SpecificEvent loads the event with its lookups and the owner's id and
// name. It keeps the collection shape of the underlying query: zero or one
// element, never an error for an absent id.
func (s *EventStore) SpecificEvent(id uint) ([]Event, error) {
	var events []Event
	err := s.db.
		Preload("City").Preload("Prefecture").Preload("Category").
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name")
		}).
		Where("events.id = ?", id).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (s *EventStore) CreateEvent(event *Event) error {
	return s.db.Create(event).Error
}

func (s *EventStore) SaveEvent(event *Event) error {
	return s.db.Save(event).Error
}

// DeleteEvent removes the event together with its reports and comments.
func (s *EventStore) DeleteEvent(event *Event) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", event.ID).Delete(&Report{}).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", event.ID).Delete(&Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(event).Error
	})
}

func (s *EventStore) CityByName(name string) (*City, error) {
	var city City
	if err := s.db.Where("city = ?", name).First(&city).Error; err != nil {
		return nil, err
	}
	return &city, nil
}

func (s *EventStore) PrefectureByName(name string) (*Prefecture, error) {
	var prefecture Prefecture
	if err := s.db.Where("prefecture = ?", name).First(&prefecture).Error; err != nil {
		return nil, err
	}
	return &prefecture, nil
}

func (s *EventStore) CategoryByName(name string) (*Category, error) {
	var category Category
	if err := s.db.Where("category = ?", name).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *EventStore) ActiveCities() ([]City, error) {
	var cities []City
	if err := s.db.Where("active = ?", true).Find(&cities).Error; err != nil {
		return nil, err
	}
	return cities, nil
}

func (s *EventStore) ActivePrefectures() ([]Prefecture, error) {
	var prefectures []Prefecture
	if err := s.db.Where("active = ?", true).Find(&prefectures).Error; err != nil {
		return nil, err
	}
	return prefectures, nil
}

func (s *EventStore) ActiveCategories() ([]Category, error) {
	var categories []Category
	if err := s.db.Where("active = ?", true).Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *EventStore) UserByID(id uint) (*User, error) {
	var user User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// CommentsForEvent returns the event's comments with the author's public
// attributes attached.
func (s *EventStore) CommentsForEvent(eventID uint) ([]Comment, error) {
	var comments []Comment
	err := s.db.
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "image", "created_at")
		}).
		Where("event_id = ?", eventID).
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (s *EventStore) CreateComment(comment *Comment) error {
	return s.db.Create(comment).Error
}

// CommentByID looks the comment up by primary key alone; callers that also
// know the event id do not get it applied as a constraint.
func (s *EventStore) CommentByID(id uint) (*Comment, error) {
	var comment Comment
	if err := s.db.First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (s *EventStore) DeleteComment(comment *Comment) error {
	return s.db.Delete(comment).Error
}

func (s *EventStore) CreateReport(report *Report) error {
	return s.db.Create(report).Error
}

func (s *EventStore) ReportCountForEvent(eventID uint) (int64, error) {
	var count int64
	err := s.db.Model(&Report{}).Where("event_id = ?", eventID).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *EventStore) CreateImage(image *Image) error {
	return s.db.Create(image).Error
}
