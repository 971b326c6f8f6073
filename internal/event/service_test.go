package event

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/classcal/server/internal/calendar"
)

// fakeStore is an in-memory Store replicating the repository's scoping,
// filter and ordering semantics.
type fakeStore struct {
	events map[string]*Event
}

func newFakeStore() *fakeStore {
	return &fakeStore{events: make(map[string]*Event)}
}

func (f *fakeStore) GetByID(ctx context.Context, eventID, calendarID string) (*Event, error) {
	e, ok := f.events[eventID]
	if !ok || e.CalendarID != calendarID {
		return nil, nil
	}
	return e, nil
}

func (f *fakeStore) ListByCalendar(ctx context.Context, calendarID string) ([]*Event, error) {
	return f.ListByFilter(ctx, calendarID, Filter{})
}

func (f *fakeStore) ListByFilter(ctx context.Context, calendarID string, filter Filter) ([]*Event, error) {
	var out []*Event
	for _, e := range f.events {
		if e.CalendarID != calendarID {
			continue
		}
		if filter.Start != nil && e.StartDatetime.Before(*filter.Start) {
			continue
		}
		if filter.End != nil && e.StartDatetime.After(*filter.End) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartDatetime.Before(out[j].StartDatetime)
	})
	return out, nil
}

func (f *fakeStore) Create(ctx context.Context, calendarID, creatorID string, req *CreateEventRequest) (*Event, error) {
	e := &Event{
		ID:            uuid.New().String(),
		CalendarID:    calendarID,
		CreatorUserID: creatorID,
		Title:         req.Title,
		Description:   req.Description,
		StartDatetime: req.StartDate,
		EndDatetime:   req.EndDate,
		AllDay:        req.AllDay,
	}
	f.events[e.ID] = e
	return e, nil
}

func (f *fakeStore) BulkCreate(ctx context.Context, calendarID, creatorID string, reqs []*CreateEventRequest) ([]*Event, error) {
	out := make([]*Event, 0, len(reqs))
	for _, req := range reqs {
		e, err := f.Create(ctx, calendarID, creatorID, req)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeStore) Update(ctx context.Context, eventID, calendarID string, fields []Field) (*Event, error) {
	e, ok := f.events[eventID]
	if !ok || e.CalendarID != calendarID {
		return nil, nil
	}
	for _, field := range fields {
		switch field.Column {
		case "title":
			e.Title = field.Value.(string)
		case "description":
			desc := field.Value.(string)
			e.Description = &desc
		case "start_datetime":
			e.StartDatetime = field.Value.(time.Time)
		case "end_datetime":
			e.EndDatetime = field.Value.(time.Time)
		case "all_day":
			e.AllDay = field.Value.(bool)
		}
	}
	return e, nil
}

func (f *fakeStore) Delete(ctx context.Context, eventID, calendarID string) (bool, error) {
	e, ok := f.events[eventID]
	if !ok || e.CalendarID != calendarID {
		return false, nil
	}
	delete(f.events, eventID)
	return true, nil
}

func (f *fakeStore) DeleteAll(ctx context.Context, calendarID string) (int64, error) {
	var count int64
	for id, e := range f.events {
		if e.CalendarID == calendarID {
			delete(f.events, id)
			count++
		}
	}
	return count, nil
}

// fakeResolver maps users to calendars; users not present have none.
type fakeResolver struct {
	byUser map[string]*calendar.Calendar
}

func (f *fakeResolver) ResolveForUser(ctx context.Context, userID string) (*calendar.Calendar, error) {
	return f.byUser[userID], nil
}

func setup() (*Service, *fakeStore, *fakeResolver) {
	store := newFakeStore()
	resolver := &fakeResolver{byUser: make(map[string]*calendar.Calendar)}
	return NewService(store, resolver, zerolog.Nop()), store, resolver
}

func member(resolver *fakeResolver, userID, calendarID string) {
	resolver.byUser[userID] = &calendar.Calendar{ID: calendarID, Name: "CS101"}
}

func at(hour int) time.Time {
	return time.Date(2025, 3, 1, hour, 0, 0, 0, time.UTC)
}

func createRequest(title string, start, end time.Time) *CreateEventRequest {
	return &CreateEventRequest{Title: title, StartDate: start, EndDate: end}
}

func TestListWithoutCalendarIsEmpty(t *testing.T) {
	svc, _, _ := setup()

	events, err := svc.List(context.Background(), "user-u")
	require.NoError(t, err)
	require.Empty(t, events)

	events, err = svc.ListByFilter(context.Background(), "user-u", Filter{})
	require.NoError(t, err)
	require.Empty(t, events)

	events, err = svc.Sync(context.Background(), "user-u")
	require.NoError(t, err)
	require.Empty(t, events)
}

func TestWritesWithoutCalendarFail(t *testing.T) {
	svc, _, _ := setup()
	ctx := context.Background()

	_, err := svc.Create(ctx, "user-u", createRequest("Midterm", at(10), at(11)))
	require.ErrorIs(t, err, ErrNoCalendar)

	_, err = svc.BulkCreate(ctx, "user-u", []*CreateEventRequest{createRequest("Midterm", at(10), at(11))})
	require.ErrorIs(t, err, ErrNoCalendar)

	title := "Final"
	_, err = svc.Update(ctx, "user-u", "some-event", &UpdateEventRequest{Title: &title})
	require.ErrorIs(t, err, ErrNoCalendar)

	_, err = svc.Delete(ctx, "user-u", "some-event")
	require.ErrorIs(t, err, ErrNoCalendar)

	_, err = svc.DeleteAll(ctx, "user-u")
	require.ErrorIs(t, err, ErrNoCalendar)
}

func TestTenantIsolation(t *testing.T) {
	svc, _, resolver := setup()
	ctx := context.Background()
	member(resolver, "user-a", "cal-a")
	member(resolver, "user-b", "cal-b")

	created, err := svc.Create(ctx, "user-a", createRequest("Midterm", at(10), at(11)))
	require.NoError(t, err)

	// The event exists in calendar A; from calendar B it must be
	// indistinguishable from a missing event.
	_, err = svc.Get(ctx, "user-b", created.ID)
	require.ErrorIs(t, err, ErrEventNotFound)

	title := "Hijacked"
	_, err = svc.Update(ctx, "user-b", created.ID, &UpdateEventRequest{Title: &title})
	require.ErrorIs(t, err, ErrEventNotFound)

	deleted, err := svc.Delete(ctx, "user-b", created.ID)
	require.NoError(t, err)
	require.False(t, deleted)

	// Still intact for its own calendar.
	got, err := svc.Get(ctx, "user-a", created.ID)
	require.NoError(t, err)
	require.Equal(t, "Midterm", got.Title)
}

func TestListOrdering(t *testing.T) {
	svc, _, resolver := setup()
	ctx := context.Background()
	member(resolver, "user-a", "cal-a")

	_, err := svc.Create(ctx, "user-a", createRequest("third", at(15), at(16)))
	require.NoError(t, err)
	_, err = svc.Create(ctx, "user-a", createRequest("first", at(9), at(10)))
	require.NoError(t, err)
	_, err = svc.Create(ctx, "user-a", createRequest("second", at(12), at(13)))
	require.NoError(t, err)

	events, err := svc.List(ctx, "user-a")
	require.NoError(t, err)
	require.Len(t, events, 3)
	require.Equal(t, "first", events[0].Title)
	require.Equal(t, "second", events[1].Title)
	require.Equal(t, "third", events[2].Title)
}

func TestFilterComparesEventStart(t *testing.T) {
	svc, _, resolver := setup()
	ctx := context.Background()
	member(resolver, "user-a", "cal-a")

	t1, t2, t3 := at(9), at(12), at(15)
	// The t2 event runs well past t3; only its start matters to the filter.
	_, err := svc.Create(ctx, "user-a", createRequest("e1", t1, t1.Add(time.Hour)))
	require.NoError(t, err)
	_, err = svc.Create(ctx, "user-a", createRequest("e2", t2, t3.Add(6*time.Hour)))
	require.NoError(t, err)
	_, err = svc.Create(ctx, "user-a", createRequest("e3", t3, t3.Add(time.Hour)))
	require.NoError(t, err)

	events, err := svc.ListByFilter(ctx, "user-a", Filter{End: &t2})
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, "e1", events[0].Title)
	require.Equal(t, "e2", events[1].Title)

	events, err = svc.ListByFilter(ctx, "user-a", Filter{Start: &t2})
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, "e2", events[0].Title)
	require.Equal(t, "e3", events[1].Title)

	events, err = svc.ListByFilter(ctx, "user-a", Filter{Start: &t2, End: &t2})
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "e2", events[0].Title)
}

func TestUpdateWithNoFields(t *testing.T) {
	svc, _, resolver := setup()
	ctx := context.Background()
	member(resolver, "user-a", "cal-a")

	created, err := svc.Create(ctx, "user-a", createRequest("Midterm", at(10), at(11)))
	require.NoError(t, err)

	_, err = svc.Update(ctx, "user-a", created.ID, &UpdateEventRequest{})
	require.ErrorIs(t, err, ErrNoFieldsToUpdate)
}

func TestUpdateAppliesOnlyProvidedFields(t *testing.T) {
	svc, _, resolver := setup()
	ctx := context.Background()
	member(resolver, "user-a", "cal-a")

	created, err := svc.Create(ctx, "user-a", createRequest("Midterm", at(10), at(11)))
	require.NoError(t, err)

	title := "Final"
	allDay := true
	updated, err := svc.Update(ctx, "user-a", created.ID, &UpdateEventRequest{Title: &title, AllDay: &allDay})
	require.NoError(t, err)
	require.Equal(t, "Final", updated.Title)
	require.True(t, updated.AllDay)
	require.Equal(t, at(10), updated.StartDatetime)
	require.Equal(t, at(11), updated.EndDatetime)
}

func TestDeleteAllReturnsCount(t *testing.T) {
	svc, _, resolver := setup()
	ctx := context.Background()
	member(resolver, "user-a", "cal-a")
	member(resolver, "user-b", "cal-b")

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, "user-a", createRequest("e", at(9+i), at(10+i)))
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, "user-b", createRequest("other", at(9), at(10)))
	require.NoError(t, err)

	count, err := svc.DeleteAll(ctx, "user-a")
	require.NoError(t, err)
	require.EqualValues(t, 3, count)

	events, err := svc.List(ctx, "user-a")
	require.NoError(t, err)
	require.Empty(t, events)

	// The other calendar is untouched.
	events, err = svc.List(ctx, "user-b")
	require.NoError(t, err)
	require.Len(t, events, 1)
}

func TestBulkCreateInjectsScope(t *testing.T) {
	svc, _, resolver := setup()
	ctx := context.Background()
	member(resolver, "user-a", "cal-a")

	events, err := svc.BulkCreate(ctx, "user-a", []*CreateEventRequest{
		createRequest("e1", at(9), at(10)),
		createRequest("e2", at(11), at(12)),
	})
	require.NoError(t, err)
	require.Len(t, events, 2)
	for _, e := range events {
		require.Equal(t, "cal-a", e.CalendarID)
		require.Equal(t, "user-a", e.CreatorUserID)
	}
}

func TestProjectionDefaults(t *testing.T) {
	svc, _, resolver := setup()
	ctx := context.Background()
	member(resolver, "user-a", "cal-a")

	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 1, 11, 0, 0, 0, time.UTC)
	created, err := svc.Create(ctx, "user-a", createRequest("Midterm", start, end))
	require.NoError(t, err)

	resp := created.ToResponse()
	require.Equal(t, created.ID, resp.ID)
	require.Equal(t, "Midterm", resp.Title)
	require.Equal(t, "2025-03-01T10:00:00Z", resp.StartDate)
	require.Equal(t, "2025-03-01T11:00:00Z", resp.EndDate)
	require.False(t, resp.AllDay)
	require.Equal(t, "GeneralActivity", resp.Type)
	require.Equal(t, "Scheduled", resp.Status)
	require.Equal(t, "#3b82f6", resp.Color)
}
