package repository

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func ptr[T any](v T) *T { return &v }

func newTestStore(t *testing.T) *EventStore {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	dbConn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err, "open in-memory database")
	require.NoError(t, Migrate(dbConn), "migrate schema")

	return NewEventStore(dbConn)
}

func seedLookups(t *testing.T, s *EventStore) (City, Prefecture, Category, User) {
	t.Helper()

	city := City{Name: "Tokyo", Active: true}
	require.NoError(t, s.db.Create(&city).Error)
	prefecture := Prefecture{Name: "Tokyo-to", Active: true}
	require.NoError(t, s.db.Create(&prefecture).Error)
	category := Category{Name: "Tech", Active: true}
	require.NoError(t, s.db.Create(&category).Error)
	user := User{Name: "Alice", Email: "alice@example.com", Password: "hash"}
	require.NoError(t, s.db.Create(&user).Error)

	return city, prefecture, category, user
}

func seedEvent(t *testing.T, s *EventStore, city City, prefecture Prefecture, category Category, user User, title, startDate string) Event {
	t.Helper()

	event := Event{
		Title:        title,
		Description:  "a seeded event",
		Address:      "Tokyo Tower",
		StartDate:    startDate,
		EndDate:      startDate,
		StartTime:    "18:00",
		CityID:       city.ID,
		PrefectureID: prefecture.ID,
		CategoryID:   category.ID,
		UserID:       user.ID,
	}
	require.NoError(t, s.CreateEvent(&event))
	return event
}

func TestEventsMatching(t *testing.T) {
	s := newTestStore(t)
	city, prefecture, category, user := seedLookups(t, s)

	otherCategory := Category{Name: "Music", Active: true}
	require.NoError(t, s.db.Create(&otherCategory).Error)

	meetup := seedEvent(t, s, city, prefecture, category, user, "Meetup", "2024-01-01")
	seedEvent(t, s, city, prefecture, category, user, "Hack Night", "2024-02-01")

	concert := Event{
		Title: "Concert", Description: "live music", Address: "Dome",
		StartDate: "2024-01-01", EndDate: "2024-01-01", StartTime: "20:00",
		CityID: city.ID, PrefectureID: prefecture.ID, CategoryID: otherCategory.ID, UserID: user.ID,
	}
	require.NoError(t, s.CreateEvent(&concert))

	t.Run("ByCategoryName", func(t *testing.T) {
		events, err := s.EventsMatching(EventFilter{CategoryName: ptr("Tech"), Joined: true})
		require.NoError(t, err)
		assert.Len(t, events, 2)
		for _, e := range events {
			assert.Equal(t, category.ID, e.CategoryID)
			require.NotNil(t, e.Category)
			assert.Equal(t, "Tech", e.Category.Name)
		}
	})

	t.Run("ByCategoryNameWithDate", func(t *testing.T) {
		events, err := s.EventsMatching(EventFilter{CategoryName: ptr("Tech"), StartDate: ptr("2024-01-01"), Joined: true})
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, meetup.ID, events[0].ID)
	})

	t.Run("NilDateSkipsDatePredicate", func(t *testing.T) {
		all, err := s.EventsMatching(EventFilter{CategoryName: ptr("Tech"), Joined: true})
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("EmptyNameMatchesNothing", func(t *testing.T) {
		events, err := s.EventsMatching(EventFilter{CategoryName: ptr(""), Joined: true})
		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("EmptyDateMatchesNothing", func(t *testing.T) {
		events, err := s.EventsMatching(EventFilter{StartDate: ptr("")})
		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("ZeroIDMatchesNothing", func(t *testing.T) {
		events, err := s.EventsMatching(EventFilter{CityID: ptr(uint(0)), Joined: true})
		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("ByCityID", func(t *testing.T) {
		events, err := s.EventsMatching(EventFilter{CityID: ptr(city.ID), Joined: true})
		require.NoError(t, err)
		assert.Len(t, events, 3)
	})

	t.Run("ByStartDateOnly", func(t *testing.T) {
		events, err := s.EventsMatching(EventFilter{StartDate: ptr("2024-01-01")})
		require.NoError(t, err)
		assert.Len(t, events, 2)
		// Bare read: no related rows loaded.
		assert.Nil(t, events[0].Category)
	})

	t.Run("CompoundCategoryAndDate", func(t *testing.T) {
		events, err := s.EventsMatching(EventFilter{CategoryID: ptr(otherCategory.ID), StartDate: ptr("2024-01-01"), Joined: true})
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, concert.ID, events[0].ID)
	})

	t.Run("NoMatchIsEmptyNotError", func(t *testing.T) {
		events, err := s.EventsMatching(EventFilter{CategoryName: ptr("Sports"), Joined: true})
		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("ByUser", func(t *testing.T) {
		events, err := s.EventsMatching(EventFilter{UserID: ptr(user.ID), Joined: true})
		require.NoError(t, err)
		assert.Len(t, events, 3)
	})
}

func TestEventByID(t *testing.T) {
	s := newTestStore(t)
	city, prefecture, category, user := seedLookups(t, s)
	event := seedEvent(t, s, city, prefecture, category, user, "Meetup", "2024-01-01")

	t.Run("Found", func(t *testing.T) {
		got, err := s.EventByID(event.ID)
		require.NoError(t, err)
		assert.Equal(t, "Meetup", got.Title)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := s.EventByID(999)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}

func TestEventNested(t *testing.T) {
	s := newTestStore(t)
	city, prefecture, category, user := seedLookups(t, s)
	event := seedEvent(t, s, city, prefecture, category, user, "Meetup", "2024-01-01")

	got, err := s.EventNested(event.ID)
	require.NoError(t, err)
	require.NotNil(t, got.City)
	require.NotNil(t, got.Prefecture)
	require.NotNil(t, got.Category)
	assert.Equal(t, "Tokyo", got.City.Name)
	assert.Equal(t, "Tokyo-to", got.Prefecture.Name)
	assert.Equal(t, "Tech", got.Category.Name)
}

func TestSpecificEvent(t *testing.T) {
	s := newTestStore(t)
	city, prefecture, category, user := seedLookups(t, s)
	event := seedEvent(t, s, city, prefecture, category, user, "Meetup", "2024-01-01")

	t.Run("LoadsOwnerIdAndNameOnly", func(t *testing.T) {
		events, err := s.SpecificEvent(event.ID)
		require.NoError(t, err)
		require.Len(t, events, 1)
		require.NotNil(t, events[0].User)
		assert.Equal(t, user.ID, events[0].User.ID)
		assert.Equal(t, "Alice", events[0].User.Name)
		assert.Empty(t, events[0].User.Email)
	})

	t.Run("AbsentIdIsEmptyCollection", func(t *testing.T) {
		events, err := s.SpecificEvent(999)
		require.NoError(t, err)
		assert.Empty(t, events)
	})
}

func TestActiveLookups(t *testing.T) {
	s := newTestStore(t)
	seedLookups(t, s)

	require.NoError(t, s.db.Create(&City{Name: "Ghost Town", Active: false}).Error)
	require.NoError(t, s.db.Create(&Category{Name: "Retired", Active: false}).Error)
	require.NoError(t, s.db.Create(&Prefecture{Name: "Closed-ken", Active: false}).Error)

	// The false flag must survive the insert.
	var ghost City
	require.NoError(t, s.db.Where("city = ?", "Ghost Town").First(&ghost).Error)
	assert.False(t, ghost.Active)

	cities, err := s.ActiveCities()
	require.NoError(t, err)
	require.Len(t, cities, 1)
	assert.Equal(t, "Tokyo", cities[0].Name)

	categories, err := s.ActiveCategories()
	require.NoError(t, err)
	require.Len(t, categories, 1)

	prefectures, err := s.ActivePrefectures()
	require.NoError(t, err)
	require.Len(t, prefectures, 1)
}

func TestDeleteEventCascades(t *testing.T) {
	s := newTestStore(t)
	city, prefecture, category, user := seedLookups(t, s)
	event := seedEvent(t, s, city, prefecture, category, user, "Meetup", "2024-01-01")
	kept := seedEvent(t, s, city, prefecture, category, user, "Hack Night", "2024-02-01")

	require.NoError(t, s.CreateReport(&Report{UserID: user.ID, EventID: event.ID}))
	require.NoError(t, s.CreateReport(&Report{UserID: user.ID, EventID: kept.ID}))
	require.NoError(t, s.CreateComment(&Comment{Content: "see you there", Images: "[]", UserID: user.ID, EventID: event.ID}))

	require.NoError(t, s.DeleteEvent(&event))

	_, err := s.EventByID(event.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	count, err := s.ReportCountForEvent(event.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	comments, err := s.CommentsForEvent(event.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	// Unrelated rows survive.
	keptCount, err := s.ReportCountForEvent(kept.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, keptCount)
}

func TestReportsAreAppendOnly(t *testing.T) {
	s := newTestStore(t)
	city, prefecture, category, user := seedLookups(t, s)
	event := seedEvent(t, s, city, prefecture, category, user, "Meetup", "2024-01-01")

	// The same user may report the same event repeatedly.
	for i := 0; i < 3; i++ {
		require.NoError(t, s.CreateReport(&Report{UserID: user.ID, EventID: event.ID}))
	}

	count, err := s.ReportCountForEvent(event.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}

func TestCommentsForEvent(t *testing.T) {
	s := newTestStore(t)
	city, prefecture, category, user := seedLookups(t, s)
	event := seedEvent(t, s, city, prefecture, category, user, "Meetup", "2024-01-01")

	require.NoError(t, s.CreateComment(&Comment{Content: "first", Images: "[]", UserID: user.ID, EventID: event.ID}))
	require.NoError(t, s.CreateComment(&Comment{Content: "second", Images: "[]", UserID: user.ID, EventID: event.ID}))

	comments, err := s.CommentsForEvent(event.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	require.NotNil(t, comments[0].User)
	assert.Equal(t, "Alice", comments[0].User.Name)
}

func TestCommentByIDIgnoresEvent(t *testing.T) {
	s := newTestStore(t)
	city, prefecture, category, user := seedLookups(t, s)
	first := seedEvent(t, s, city, prefecture, category, user, "Meetup", "2024-01-01")

	comment := Comment{Content: "hello", Images: "[]", UserID: user.ID, EventID: first.ID}
	require.NoError(t, s.CreateComment(&comment))

	// Lookup is by primary key alone; no event constraint applies.
	got, err := s.CommentByID(comment.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.EventID)

	require.NoError(t, s.DeleteComment(got))
	_, err = s.CommentByID(comment.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
