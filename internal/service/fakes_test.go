package service_test

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nusalink/ftth-helpdesk/internal/domain"
	"github.com/nusalink/ftth-helpdesk/internal/events"
	"github.com/nusalink/ftth-helpdesk/internal/repository"
	"github.com/nusalink/ftth-helpdesk/internal/service"
	apperrors "github.com/nusalink/ftth-helpdesk/pkg/util"
)

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, code), "expected code %s, got %v", code, err)
}

// fixture wires the full service stack over in-memory fakes.
type fixture struct {
	settingRepo *fakeSettingRepo
	ticketRepo  *fakeTicketRepo
	assignRepo  *fakeAssignmentRepo
	userRepo    *fakeUserRepo
	perfRepo    *fakePerfLogRepo
	historyRepo *fakeHistoryRepo
	dispatcher  *recordingDispatcher

	settings    *service.SettingsService
	tickets     *service.TicketService
	assignments *service.AssignmentService
}

func newFixture() *fixture {
	settingRepo := newFakeSettingRepo()
	ticketRepo := newFakeTicketRepo()
	assignRepo := newFakeAssignmentRepo(ticketRepo)
	userRepo := newFakeUserRepo(assignRepo)
	perfRepo := &fakePerfLogRepo{}
	historyRepo := &fakeHistoryRepo{}
	dispatcher := &recordingDispatcher{}

	settings := service.NewSettingsService(settingRepo, nil, zap.NewNop())
	bonus := service.NewBonusCalculator(settings)

	tickets := service.NewTicketService(service.TicketDependencies{
		TicketRepo:     ticketRepo,
		AssignmentRepo: assignRepo,
		UserRepo:       userRepo,
		PerfLogRepo:    perfRepo,
		HistoryRepo:    historyRepo,
		Bonus:          bonus,
		Settings:       settings,
		Tx:             passthroughTx{},
		Dispatcher:     dispatcher,
		Logger:         zap.NewNop(),
	})
	assignments := service.NewAssignmentService(service.AssignmentDependencies{
		TicketRepo:     ticketRepo,
		AssignmentRepo: assignRepo,
		UserRepo:       userRepo,
		HistoryRepo:    historyRepo,
		Settings:       settings,
		Tx:             passthroughTx{},
	})

	return &fixture{
		settingRepo: settingRepo,
		ticketRepo:  ticketRepo,
		assignRepo:  assignRepo,
		userRepo:    userRepo,
		perfRepo:    perfRepo,
		historyRepo: historyRepo,
		dispatcher:  dispatcher,
		settings:    settings,
		tickets:     tickets,
		assignments: assignments,
	}
}

func (f *fixture) addUser(role domain.Role, backbone, active bool) *domain.User {
	user := &domain.User{
		Name:                 "user-" + uuid.NewString()[:8],
		Email:                uuid.NewString()[:8] + "@example.test",
		Role:                 role,
		IsBackboneSpecialist: backbone,
		IsActive:             active,
		CreatedAt:            time.Now(),
	}
	_ = f.userRepo.Create(context.Background(), user)
	return user
}

func (f *fixture) addTicket(ticketType domain.TicketType, status domain.TicketStatus, age time.Duration) *domain.Ticket {
	createdAt := time.Now().Add(-age)
	ticket := &domain.Ticket{
		TicketNumber:  "TKT-" + uuid.NewString()[:8],
		Type:          ticketType,
		Priority:      domain.TicketPriorityMedium,
		Status:        status,
		CustomerName:  "Customer",
		CustomerPhone: "0811111111",
		Description:   "no signal",
		CreatedAt:     createdAt,
		SLADeadline:   service.ComputeSLADeadline(ticketType, createdAt),
	}
	_ = f.ticketRepo.Create(context.Background(), ticket)
	return ticket
}

func (f *fixture) assign(ticket *domain.Ticket, user *domain.User) {
	_ = f.assignRepo.Create(context.Background(), &domain.Assignment{
		TicketID:       ticket.ID,
		UserID:         user.ID,
		AssignedAt:     time.Now(),
		Active:         true,
		AssignmentType: domain.AssignmentTypeManual,
	})
}

// passthroughTx runs the function without a real transaction. The services
// only need WithinTx to call through; transactional behavior is covered by
// the repository tests.
type passthroughTx struct{}

func (passthroughTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeSettingRepo struct {
	values map[domain.SettingKey]string
}

func newFakeSettingRepo() *fakeSettingRepo {
	return &fakeSettingRepo{values: map[domain.SettingKey]string{}}
}

func (r *fakeSettingRepo) Get(_ context.Context, key domain.SettingKey) (string, error) {
	value, ok := r.values[key]
	if !ok {
		return "", pgx.ErrNoRows
	}
	return value, nil
}

func (r *fakeSettingRepo) Upsert(_ context.Context, key domain.SettingKey, value string) error {
	r.values[key] = value
	return nil
}

func (r *fakeSettingRepo) List(_ context.Context) ([]domain.Setting, error) {
	keys := make([]string, 0, len(r.values))
	for k := range r.values {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	settings := make([]domain.Setting, 0, len(keys))
	for _, k := range keys {
		settings = append(settings, domain.Setting{Key: domain.SettingKey(k), Value: r.values[domain.SettingKey(k)]})
	}
	return settings, nil
}

type fakeTicketRepo struct {
	tickets map[string]*domain.Ticket
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: map[string]*domain.Ticket{}}
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	if ticket.ID == "" {
		ticket.ID = uuid.NewString()
	}
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = time.Now()
	}
	ticket.UpdatedAt = ticket.CreatedAt
	r.tickets[ticket.ID] = ticket
	return nil
}

func (r *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = time.Now()
	r.tickets[ticket.ID] = ticket
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return ticket, nil
}

func (r *fakeTicketRepo) GetByTicketNumber(_ context.Context, number string) (*domain.Ticket, error) {
	for _, ticket := range r.tickets {
		if ticket.TicketNumber == number {
			return ticket, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for _, ticket := range r.sorted() {
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, ticket.Status) {
			continue
		}
		result = append(result, *ticket)
	}
	return result, nil
}

func (r *fakeTicketRepo) LockOldestEligible(_ context.Context, types []domain.TicketType) (*domain.Ticket, error) {
	for _, ticket := range r.sorted() {
		if ticket.Status != domain.TicketStatusOpen {
			continue
		}
		for _, t := range types {
			if ticket.Type == t {
				return ticket, nil
			}
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeTicketRepo) ListStaleAssigned(_ context.Context, cutoff time.Time) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for _, ticket := range r.sorted() {
		if ticket.Status == domain.TicketStatusAssigned && ticket.UpdatedAt.Before(cutoff) {
			result = append(result, *ticket)
		}
	}
	return result, nil
}

func (r *fakeTicketRepo) ListClosed(_ context.Context) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for _, ticket := range r.sorted() {
		if ticket.Status == domain.TicketStatusClosed {
			result = append(result, *ticket)
		}
	}
	return result, nil
}

func (r *fakeTicketRepo) CountByStatus(_ context.Context) (map[domain.TicketStatus]int64, error) {
	counts := map[domain.TicketStatus]int64{}
	for _, ticket := range r.tickets {
		counts[ticket.Status]++
	}
	return counts, nil
}

func (r *fakeTicketRepo) CountOverdue(_ context.Context, now time.Time) (int64, error) {
	var count int64
	for _, ticket := range r.tickets {
		if ticket.Overdue(now) {
			count++
		}
	}
	return count, nil
}

func (r *fakeTicketRepo) BackfillAreas(_ context.Context) (int64, error) { return 0, nil }

func (r *fakeTicketRepo) BackfillCustomerNames(_ context.Context) (int64, error) { return 0, nil }

func (r *fakeTicketRepo) sorted() []*domain.Ticket {
	result := make([]*domain.Ticket, 0, len(r.tickets))
	for _, ticket := range r.tickets {
		result = append(result, ticket)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result
}

func containsStatus(statuses []domain.TicketStatus, status domain.TicketStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

type fakeAssignmentRepo struct {
	rows      []*domain.Assignment
	tickets   *fakeTicketRepo
	heldLocks map[string]bool
}

func newFakeAssignmentRepo(tickets *fakeTicketRepo) *fakeAssignmentRepo {
	return &fakeAssignmentRepo{tickets: tickets}
}

func (r *fakeAssignmentRepo) Create(_ context.Context, assignment *domain.Assignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	r.rows = append(r.rows, assignment)
	return nil
}

func (r *fakeAssignmentRepo) DeactivateByTicket(_ context.Context, ticketID string) (int64, error) {
	var affected int64
	for _, row := range r.rows {
		if row.TicketID == ticketID && row.Active {
			row.Active = false
			affected++
		}
	}
	return affected, nil
}

func (r *fakeAssignmentRepo) ListActiveByTicket(_ context.Context, ticketID string) ([]domain.Assignment, error) {
	var result []domain.Assignment
	for _, row := range r.rows {
		if row.TicketID == ticketID && row.Active {
			result = append(result, *row)
		}
	}
	return result, nil
}

func (r *fakeAssignmentRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Assignment, error) {
	var result []domain.Assignment
	for _, row := range r.rows {
		if row.TicketID == ticketID {
			result = append(result, *row)
		}
	}
	return result, nil
}

func (r *fakeAssignmentRepo) CountActiveNonTerminal(_ context.Context, userID string) (int64, error) {
	var count int64
	for _, row := range r.rows {
		if !row.Active || row.UserID != userID {
			continue
		}
		ticket, ok := r.tickets.tickets[row.TicketID]
		if !ok {
			continue
		}
		if ticket.Status != domain.TicketStatusClosed && ticket.Status != domain.TicketStatusRejected {
			count++
		}
	}
	return count, nil
}

func (r *fakeAssignmentRepo) AcquireUserLock(_ context.Context, _ string) error { return nil }

func (r *fakeAssignmentRepo) TryAcquireUserLock(_ context.Context, userID string) (bool, error) {
	return !r.heldLocks[userID], nil
}

func (r *fakeAssignmentRepo) holdLock(userID string) {
	if r.heldLocks == nil {
		r.heldLocks = map[string]bool{}
	}
	r.heldLocks[userID] = true
}

type fakeUserRepo struct {
	users       map[string]*domain.User
	order       []string
	assignments *fakeAssignmentRepo
}

func newFakeUserRepo(assignments *fakeAssignmentRepo) *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*domain.User{}, assignments: assignments}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	r.users[user.ID] = user
	r.order = append(r.order, user.ID)
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) List(_ context.Context, _ repository.UserFilter) ([]domain.User, error) {
	var result []domain.User
	for _, id := range r.order {
		result = append(result, *r.users[id])
	}
	return result, nil
}

func (r *fakeUserRepo) ListIdleTechnicians(ctx context.Context, backbone bool, excludeID string) ([]domain.User, error) {
	var result []domain.User
	for _, id := range r.order {
		user := r.users[id]
		if user.ID == excludeID || !user.Assignable() || user.IsBackboneSpecialist != backbone {
			continue
		}
		active, err := r.assignments.CountActiveNonTerminal(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		if active == 0 {
			result = append(result, *user)
		}
	}
	return result, nil
}

type fakePerfLogRepo struct {
	logs       []*domain.PerformanceLog
	failCreate error
}

func (r *fakePerfLogRepo) Create(_ context.Context, log *domain.PerformanceLog) error {
	if r.failCreate != nil {
		return r.failCreate
	}
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	r.logs = append(r.logs, log)
	return nil
}

func (r *fakePerfLogRepo) ListByUser(_ context.Context, userID string, _, _ int) ([]domain.PerformanceLog, error) {
	var result []domain.PerformanceLog
	for _, log := range r.logs {
		if log.UserID == userID {
			result = append(result, *log)
		}
	}
	return result, nil
}

func (r *fakePerfLogRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.PerformanceLog, error) {
	var result []domain.PerformanceLog
	for _, log := range r.logs {
		if log.TicketID == ticketID {
			result = append(result, *log)
		}
	}
	return result, nil
}

func (r *fakePerfLogRepo) DeleteAll(_ context.Context) (int64, error) {
	deleted := int64(len(r.logs))
	r.logs = nil
	return deleted, nil
}

// recordingDispatcher captures published events in order.
type recordingDispatcher struct {
	published []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(_ events.EventType, _ events.EventHandler) {}

func (d *recordingDispatcher) byType(eventType events.EventType) []events.Event {
	var result []events.Event
	for _, event := range d.published {
		if event.Type == eventType {
			result = append(result, event)
		}
	}
	return result
}

type fakeHistoryRepo struct {
	entries []*domain.TicketHistory
}

func (r *fakeHistoryRepo) Create(_ context.Context, history *domain.TicketHistory) error {
	if history.ID == "" {
		history.ID = uuid.NewString()
	}
	r.entries = append(r.entries, history)
	return nil
}

func (r *fakeHistoryRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketHistory, error) {
	var result []domain.TicketHistory
	for _, entry := range r.entries {
		if entry.TicketID == ticketID {
			result = append(result, *entry)
		}
	}
	return result, nil
}
