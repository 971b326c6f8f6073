package calendar

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory Store that mimics the database's uniqueness
// constraints, including injectable join-code collisions.
type fakeStore struct {
	calendars   map[string]*Calendar
	memberships []*Membership

	// failCreates makes the next N CreateWithOwner calls fail with a
	// unique violation, simulating join-code collisions.
	failCreates int
	// hideMemberships makes GetMembership report absence, simulating a
	// concurrent join racing past the existence check.
	hideMemberships bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{calendars: make(map[string]*Calendar)}
}

func uniqueViolation() error {
	return &pq.Error{Code: "23505"}
}

func (f *fakeStore) CreateWithOwner(ctx context.Context, name, creatorID, joinCode string) (*Calendar, error) {
	if f.failCreates > 0 {
		f.failCreates--
		return nil, uniqueViolation()
	}
	for _, c := range f.calendars {
		if c.JoinCode == joinCode {
			return nil, uniqueViolation()
		}
	}

	cal := &Calendar{
		ID:            uuid.New().String(),
		Name:          name,
		CreatorUserID: creatorID,
		JoinCode:      joinCode,
	}
	f.calendars[cal.ID] = cal
	f.memberships = append(f.memberships, &Membership{
		ID:         uuid.New().String(),
		UserID:     creatorID,
		CalendarID: cal.ID,
	})
	return cal, nil
}

func (f *fakeStore) GetByID(ctx context.Context, id string) (*Calendar, error) {
	return f.calendars[id], nil
}

func (f *fakeStore) GetByJoinCode(ctx context.Context, code string) (*Calendar, error) {
	for _, c := range f.calendars {
		if c.JoinCode == code {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) GetByUserID(ctx context.Context, userID string) (*Calendar, error) {
	for _, m := range f.memberships {
		if m.UserID == userID {
			return f.calendars[m.CalendarID], nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListByUserID(ctx context.Context, userID string) ([]*Calendar, error) {
	var out []*Calendar
	for _, m := range f.memberships {
		if m.UserID == userID {
			out = append(out, f.calendars[m.CalendarID])
		}
	}
	return out, nil
}

func (f *fakeStore) AddMember(ctx context.Context, calendarID, userID string) (*Membership, error) {
	for _, m := range f.memberships {
		if m.UserID == userID && m.CalendarID == calendarID {
			return nil, uniqueViolation()
		}
	}
	m := &Membership{
		ID:         uuid.New().String(),
		UserID:     userID,
		CalendarID: calendarID,
	}
	f.memberships = append(f.memberships, m)
	return m, nil
}

func (f *fakeStore) GetMembership(ctx context.Context, userID, calendarID string) (*Membership, error) {
	if f.hideMemberships {
		return nil, nil
	}
	for _, m := range f.memberships {
		if m.UserID == userID && m.CalendarID == calendarID {
			return m, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListMemberIDs(ctx context.Context, calendarID string) ([]string, error) {
	var out []string
	for _, m := range f.memberships {
		if m.CalendarID == calendarID {
			out = append(out, m.UserID)
		}
	}
	return out, nil
}

func (f *fakeStore) memberCount(calendarID string) int {
	n := 0
	for _, m := range f.memberships {
		if m.CalendarID == calendarID {
			n++
		}
	}
	return n
}

func newTestService(store Store) *Service {
	return NewService(store, zerolog.Nop())
}

func TestCreateAddsCreatorAsMember(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	cal, err := svc.Create(context.Background(), "user-u", &CreateCalendarRequest{CalendarName: "CS101"})
	require.NoError(t, err)
	require.Len(t, cal.JoinCode, 6)
	for _, c := range cal.JoinCode {
		require.Contains(t, joinCodeAlphabet, string(c))
	}

	members, err := svc.ListMembers(context.Background(), cal.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"user-u"}, members)
}

func TestCreateRetriesJoinCodeCollision(t *testing.T) {
	store := newFakeStore()
	store.failCreates = 2
	svc := newTestService(store)

	cal, err := svc.Create(context.Background(), "user-u", &CreateCalendarRequest{CalendarName: "CS101"})
	require.NoError(t, err)
	require.NotEmpty(t, cal.JoinCode)
	require.Zero(t, store.failCreates)
}

func TestCreateExhaustsJoinCodeAttempts(t *testing.T) {
	store := newFakeStore()
	store.failCreates = maxJoinCodeAttempts
	svc := newTestService(store)

	_, err := svc.Create(context.Background(), "user-u", &CreateCalendarRequest{CalendarName: "CS101"})
	require.ErrorIs(t, err, ErrCalendarCreation)
}

func TestAddMemberTwiceFails(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	cal, err := svc.Create(context.Background(), "user-u", &CreateCalendarRequest{CalendarName: "CS101"})
	require.NoError(t, err)

	_, err = svc.AddMember(context.Background(), cal.ID, "user-v")
	require.NoError(t, err)

	_, err = svc.AddMember(context.Background(), cal.ID, "user-v")
	require.ErrorIs(t, err, ErrAlreadyMember)
}

func TestAddMemberConstraintRaceConvertsError(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	cal, err := svc.Create(context.Background(), "user-u", &CreateCalendarRequest{CalendarName: "CS101"})
	require.NoError(t, err)

	// Hide existing memberships so the pre-check passes and the insert hits
	// the uniqueness constraint, as in a concurrent double-join.
	store.hideMemberships = true
	_, err = svc.AddMember(context.Background(), cal.ID, "user-u")
	require.ErrorIs(t, err, ErrAlreadyMember)
}

func TestAddMemberUnknownCalendar(t *testing.T) {
	svc := newTestService(newFakeStore())

	_, err := svc.AddMember(context.Background(), "missing", "user-v")
	require.ErrorIs(t, err, ErrCalendarNotFound)
}

func TestJoinUnknownCode(t *testing.T) {
	svc := newTestService(newFakeStore())

	_, _, err := svc.Join(context.Background(), "user-v", "ZZZZZZ")
	require.ErrorIs(t, err, ErrInvalidJoinCode)
}

func TestJoinIsIdempotent(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	cal, err := svc.Create(context.Background(), "user-u", &CreateCalendarRequest{CalendarName: "CS101"})
	require.NoError(t, err)

	joined, already, err := svc.Join(context.Background(), "user-v", cal.JoinCode)
	require.NoError(t, err)
	require.False(t, already)
	require.Equal(t, cal.ID, joined.ID)
	require.Equal(t, 2, store.memberCount(cal.ID))

	joined, already, err = svc.Join(context.Background(), "user-v", cal.JoinCode)
	require.NoError(t, err)
	require.True(t, already)
	require.Equal(t, cal.ID, joined.ID)
	require.Equal(t, 2, store.memberCount(cal.ID))
}

func TestJoinConstraintRaceIsSuccess(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	cal, err := svc.Create(context.Background(), "user-u", &CreateCalendarRequest{CalendarName: "CS101"})
	require.NoError(t, err)

	_, _, err = svc.Join(context.Background(), "user-v", cal.JoinCode)
	require.NoError(t, err)

	// Simulate the duplicate join racing past the existence check; the
	// constraint violation must still read as success.
	store.hideMemberships = true
	joined, already, err := svc.Join(context.Background(), "user-v", cal.JoinCode)
	require.NoError(t, err)
	require.True(t, already)
	require.Equal(t, cal.ID, joined.ID)
	require.Equal(t, 2, store.memberCount(cal.ID))
}

func TestJoinThenResolveForUser(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	cal, err := svc.Create(context.Background(), "user-u", &CreateCalendarRequest{CalendarName: "CS101"})
	require.NoError(t, err)

	_, _, err = svc.Join(context.Background(), "user-v", cal.JoinCode)
	require.NoError(t, err)

	resolved, err := svc.GetForUser(context.Background(), "user-v")
	require.NoError(t, err)
	require.Equal(t, cal.ID, resolved.ID)
}

func TestGetForUserWithoutCalendar(t *testing.T) {
	svc := newTestService(newFakeStore())

	_, err := svc.GetForUser(context.Background(), "user-x")
	require.ErrorIs(t, err, ErrCalendarNotFound)

	resolved, err := svc.ResolveForUser(context.Background(), "user-x")
	require.NoError(t, err)
	require.Nil(t, resolved)
}

func TestDistinctCalendarsGetDistinctCodes(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		cal, err := svc.Create(context.Background(), "user-"+strings.Repeat("x", i+1), &CreateCalendarRequest{CalendarName: "CS101"})
		require.NoError(t, err)
		require.False(t, seen[cal.JoinCode], "join code %s issued twice", cal.JoinCode)
		seen[cal.JoinCode] = true
	}
}
