package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"eventtix/registrar/internal/model"
)

// memoryStore keeps every table in process memory. Transactions serialize on a
// single mutex and roll back by restoring a snapshot, which gives the same
// isolation a row lock would for a single process.
type memoryStore struct {
	mu   sync.Mutex
	data *memoryData
	now  func() time.Time
}

type memoryData struct {
	seq           map[string]uint
	registrations map[uint]model.Registration
	payments      map[uint]model.Payment
	tickets       map[uint]model.Ticket
	attendance    map[uint]model.Attendance
	messages      map[uint]model.Message
	admins        map[uint]model.Admin
	auditLogs     map[uint]model.AuditLog
	settings      *model.EventSettings
}

func NewMemoryStore() Store {
	return &memoryStore{data: newMemoryData(), now: time.Now}
}

func newMemoryData() *memoryData {
	return &memoryData{
		seq:           map[string]uint{},
		registrations: map[uint]model.Registration{},
		payments:      map[uint]model.Payment{},
		tickets:       map[uint]model.Ticket{},
		attendance:    map[uint]model.Attendance{},
		messages:      map[uint]model.Message{},
		admins:        map[uint]model.Admin{},
		auditLogs:     map[uint]model.AuditLog{},
	}
}

func (d *memoryData) clone() *memoryData {
	c := &memoryData{
		seq:           cloneMap(d.seq),
		registrations: cloneMap(d.registrations),
		payments:      cloneMap(d.payments),
		tickets:       cloneMap(d.tickets),
		attendance:    cloneMap(d.attendance),
		messages:      cloneMap(d.messages),
		admins:        cloneMap(d.admins),
		auditLogs:     cloneMap(d.auditLogs),
	}
	if d.settings != nil {
		s := *d.settings
		c.settings = &s
	}
	return c
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	c := make(map[K]V, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

func (d *memoryData) nextID(table string) uint {
	d.seq[table]++
	return d.seq[table]
}

func (s *memoryStore) Repositories() *Repositories {
	return s.repositories(false)
}

func (s *memoryStore) WithTx(ctx context.Context, fn func(tx *Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(s.repositories(true)); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

func (s *memoryStore) repositories(inTx bool) *Repositories {
	m := &memRepo{store: s, inTx: inTx}
	return &Repositories{
		Registrations: &memRegistrationRepository{m},
		Payments:      &memPaymentRepository{m},
		Tickets:       &memTicketRepository{m},
		Attendance:    &memAttendanceRepository{m},
		Messages:      &memMessageRepository{m},
		Admins:        &memAdminRepository{m},
		AuditLogs:     &memAuditLogRepository{m},
		Settings:      &memSettingsRepository{m},
	}
}

type memRepo struct {
	store *memoryStore
	inTx  bool
}

// lock acquires the store mutex unless the caller already holds it through WithTx.
func (m *memRepo) lock() (*memoryData, func()) {
	if m.inTx {
		return m.store.data, func() {}
	}
	m.store.mu.Lock()
	return m.store.data, m.store.mu.Unlock
}

func (m *memRepo) now() time.Time { return m.store.now() }

// --- registrations ---

type memRegistrationRepository struct{ *memRepo }

func (r *memRegistrationRepository) Create(_ context.Context, reg *model.Registration) error {
	d, unlock := r.lock()
	defer unlock()

	for _, existing := range d.registrations {
		if strings.EqualFold(existing.Email, reg.Email) {
			return gorm.ErrDuplicatedKey
		}
	}
	reg.ID = d.nextID("registrations")
	if reg.CreatedAt.IsZero() {
		reg.CreatedAt = r.now()
	}
	reg.UpdatedAt = reg.CreatedAt
	row := *reg
	row.Payment, row.Tickets, row.Messages = nil, nil, nil
	d.registrations[reg.ID] = row
	return nil
}

func (r *memRegistrationRepository) GetByID(_ context.Context, id uint) (*model.Registration, error) {
	d, unlock := r.lock()
	defer unlock()

	reg, ok := d.registrations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &reg, nil
}

func (r *memRegistrationRepository) GetByEmail(_ context.Context, email string) (*model.Registration, error) {
	d, unlock := r.lock()
	defer unlock()

	for _, reg := range d.registrations {
		if strings.EqualFold(reg.Email, email) {
			return &reg, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memRegistrationRepository) GetDetail(_ context.Context, id uint) (*model.Registration, error) {
	d, unlock := r.lock()
	defer unlock()

	reg, ok := d.registrations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if p, ok := d.paymentFor(id); ok {
		reg.Payment = &p
	}
	reg.Tickets = d.ticketsFor(id)
	reg.Messages = d.messagesFor(id)
	return &reg, nil
}

func (r *memRegistrationRepository) List(_ context.Context, filter RegistrationFilter) ([]RegistrationSummary, int64, error) {
	d, unlock := r.lock()
	defer unlock()

	var rows []RegistrationSummary
	for _, reg := range d.registrations {
		p, ok := d.paymentFor(reg.ID)
		if !ok {
			continue
		}
		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}
		rows = append(rows, RegistrationSummary{
			ID:          reg.ID,
			Name:        reg.Name,
			Email:       reg.Email,
			Phone:       reg.Phone,
			TeamName:    reg.TeamName,
			PaymentType: reg.PaymentType,
			Status:      p.Status,
			TicketCount: int64(len(d.ticketsFor(reg.ID))),
			CreatedAt:   reg.CreatedAt,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].ID > rows[j].ID
	})
	total := int64(len(rows))
	return page(rows, filter.Offset, filter.Limit), total, nil
}

func (r *memRegistrationRepository) CountByStatus(_ context.Context) (map[model.PaymentStatus]int64, error) {
	d, unlock := r.lock()
	defer unlock()

	counts := map[model.PaymentStatus]int64{}
	for _, p := range d.payments {
		counts[p.Status]++
	}
	return counts, nil
}

func (r *memRegistrationRepository) CountTeams(_ context.Context) (int64, error) {
	d, unlock := r.lock()
	defer unlock()

	var n int64
	for _, reg := range d.registrations {
		if reg.PaymentType == model.PaymentTypeBulk {
			n++
		}
	}
	return n, nil
}

func (r *memRegistrationRepository) ListApprovedWithoutSentMessage(_ context.Context, msgType model.MessageType) ([]model.Registration, error) {
	d, unlock := r.lock()
	defer unlock()

	var regs []model.Registration
	for _, reg := range d.registrations {
		p, ok := d.paymentFor(reg.ID)
		if !ok || p.Status != model.PaymentStatusApproved {
			continue
		}
		sent := false
		for _, msg := range d.messagesFor(reg.ID) {
			if msg.MessageType == msgType && msg.Sent {
				sent = true
				break
			}
		}
		if !sent {
			regs = append(regs, reg)
		}
	}
	sort.Slice(regs, func(i, j int) bool { return regs[i].ID < regs[j].ID })
	return regs, nil
}

func (r *memRegistrationRepository) Delete(_ context.Context, id uint) error {
	d, unlock := r.lock()
	defer unlock()

	if _, ok := d.registrations[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	for tid, t := range d.tickets {
		if t.RegistrationID != id {
			continue
		}
		for aid, a := range d.attendance {
			if a.TicketID == tid {
				delete(d.attendance, aid)
			}
		}
		delete(d.tickets, tid)
	}
	for mid, msg := range d.messages {
		if msg.RegistrationID == id {
			delete(d.messages, mid)
		}
	}
	for pid, p := range d.payments {
		if p.RegistrationID == id {
			delete(d.payments, pid)
		}
	}
	delete(d.registrations, id)
	return nil
}

func (d *memoryData) paymentFor(registrationID uint) (model.Payment, bool) {
	for _, p := range d.payments {
		if p.RegistrationID == registrationID {
			return p, true
		}
	}
	return model.Payment{}, false
}

func (d *memoryData) attendanceFor(ticketID uint) *model.Attendance {
	for _, a := range d.attendance {
		if a.TicketID == ticketID {
			return &a
		}
	}
	return nil
}

func (d *memoryData) ticketsFor(registrationID uint) []model.Ticket {
	var tickets []model.Ticket
	for _, t := range d.tickets {
		if t.RegistrationID == registrationID {
			t.Attendance = d.attendanceFor(t.ID)
			tickets = append(tickets, t)
		}
	}
	sort.Slice(tickets, func(i, j int) bool { return tickets[i].SerialCode < tickets[j].SerialCode })
	return tickets
}

func (d *memoryData) messagesFor(registrationID uint) []model.Message {
	var msgs []model.Message
	for _, msg := range d.messages {
		if msg.RegistrationID == registrationID {
			msgs = append(msgs, msg)
		}
	}
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].ID < msgs[j].ID })
	return msgs
}

func page[T any](rows []T, offset, limit int) []T {
	if offset >= len(rows) {
		return nil
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}

// --- payments ---

type memPaymentRepository struct{ *memRepo }

func (r *memPaymentRepository) Create(_ context.Context, payment *model.Payment) error {
	d, unlock := r.lock()
	defer unlock()

	if _, ok := d.paymentFor(payment.RegistrationID); ok {
		return gorm.ErrDuplicatedKey
	}
	if payment.Status == "" {
		payment.Status = model.PaymentStatusPending
	}
	payment.ID = d.nextID("payments")
	now := r.now()
	payment.CreatedAt, payment.UpdatedAt = now, now
	d.payments[payment.ID] = *payment
	return nil
}

func (r *memPaymentRepository) GetByRegistrationID(_ context.Context, registrationID uint) (*model.Payment, error) {
	d, unlock := r.lock()
	defer unlock()

	p, ok := d.paymentFor(registrationID)
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r *memPaymentRepository) GetByRegistrationIDForUpdate(ctx context.Context, registrationID uint) (*model.Payment, error) {
	return r.GetByRegistrationID(ctx, registrationID)
}

func (r *memPaymentRepository) Update(_ context.Context, payment *model.Payment) error {
	d, unlock := r.lock()
	defer unlock()

	if _, ok := d.payments[payment.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	payment.UpdatedAt = r.now()
	d.payments[payment.ID] = *payment
	return nil
}

// --- tickets ---

type memTicketRepository struct{ *memRepo }

func (r *memTicketRepository) Create(_ context.Context, ticket *model.Ticket) error {
	d, unlock := r.lock()
	defer unlock()

	for _, t := range d.tickets {
		if t.SerialCode == ticket.SerialCode {
			return gorm.ErrDuplicatedKey
		}
	}
	ticket.ID = d.nextID("tickets")
	ticket.CreatedAt = r.now()
	if ticket.IssuedAt.IsZero() {
		ticket.IssuedAt = ticket.CreatedAt
	}
	row := *ticket
	row.Attendance = nil
	d.tickets[ticket.ID] = row
	return nil
}

func (r *memTicketRepository) GetBySerial(_ context.Context, serial string) (*model.Ticket, error) {
	d, unlock := r.lock()
	defer unlock()

	for _, t := range d.tickets {
		if t.SerialCode == serial {
			t.Attendance = d.attendanceFor(t.ID)
			return &t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memTicketRepository) GetBySerialForUpdate(_ context.Context, serial string) (*model.Ticket, error) {
	d, unlock := r.lock()
	defer unlock()

	for _, t := range d.tickets {
		if t.SerialCode == serial {
			return &t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memTicketRepository) ListByRegistrationID(_ context.Context, registrationID uint) ([]model.Ticket, error) {
	d, unlock := r.lock()
	defer unlock()
	return d.ticketsFor(registrationID), nil
}

func (r *memTicketRepository) UpdateQRCode(_ context.Context, id uint, url string) error {
	d, unlock := r.lock()
	defer unlock()

	t, ok := d.tickets[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	t.QRCodeURL = &url
	d.tickets[id] = t
	return nil
}

func (r *memTicketRepository) SetActive(_ context.Context, id uint, active bool) error {
	d, unlock := r.lock()
	defer unlock()

	t, ok := d.tickets[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	t.IsActive = active
	d.tickets[id] = t
	return nil
}

func (r *memTicketRepository) Count(_ context.Context) (int64, error) {
	d, unlock := r.lock()
	defer unlock()
	return int64(len(d.tickets)), nil
}

// --- attendance ---

type memAttendanceRepository struct{ *memRepo }

func (r *memAttendanceRepository) Create(_ context.Context, attendance *model.Attendance) error {
	d, unlock := r.lock()
	defer unlock()

	if d.attendanceFor(attendance.TicketID) != nil {
		return gorm.ErrDuplicatedKey
	}
	attendance.ID = d.nextID("attendance")
	now := r.now()
	attendance.CreatedAt, attendance.UpdatedAt = now, now
	d.attendance[attendance.ID] = *attendance
	return nil
}

func (r *memAttendanceRepository) GetByTicketID(_ context.Context, ticketID uint) (*model.Attendance, error) {
	d, unlock := r.lock()
	defer unlock()

	a := d.attendanceFor(ticketID)
	if a == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func (r *memAttendanceRepository) Update(_ context.Context, attendance *model.Attendance) error {
	d, unlock := r.lock()
	defer unlock()

	if _, ok := d.attendance[attendance.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	attendance.UpdatedAt = r.now()
	d.attendance[attendance.ID] = *attendance
	return nil
}

func (r *memAttendanceRepository) CountCheckedIn(_ context.Context) (int64, error) {
	d, unlock := r.lock()
	defer unlock()

	var n int64
	for _, a := range d.attendance {
		if a.CheckedIn {
			n++
		}
	}
	return n, nil
}

// --- messages ---

type memMessageRepository struct{ *memRepo }

func (r *memMessageRepository) Create(_ context.Context, msg *model.Message) error {
	d, unlock := r.lock()
	defer unlock()

	if _, ok := d.registrations[msg.RegistrationID]; !ok {
		return gorm.ErrForeignKeyViolated
	}
	msg.ID = d.nextID("messages")
	msg.CreatedAt = r.now()
	d.messages[msg.ID] = *msg
	return nil
}

func (r *memMessageRepository) ListByRegistrationID(_ context.Context, registrationID uint) ([]model.Message, error) {
	d, unlock := r.lock()
	defer unlock()
	return d.messagesFor(registrationID), nil
}

// --- admins ---

type memAdminRepository struct{ *memRepo }

func (r *memAdminRepository) Create(_ context.Context, admin *model.Admin) error {
	d, unlock := r.lock()
	defer unlock()

	if d.adminTaken(admin.Username, admin.Email, 0) {
		return gorm.ErrDuplicatedKey
	}
	admin.ID = d.nextID("admins")
	now := r.now()
	admin.CreatedAt, admin.UpdatedAt = now, now
	d.admins[admin.ID] = *admin
	return nil
}

func (d *memoryData) adminTaken(username, email string, excludeID uint) bool {
	for _, a := range d.admins {
		if a.ID == excludeID {
			continue
		}
		if strings.EqualFold(a.Username, username) || strings.EqualFold(a.Email, email) {
			return true
		}
	}
	return false
}

func (r *memAdminRepository) GetByID(_ context.Context, id uint) (*model.Admin, error) {
	d, unlock := r.lock()
	defer unlock()

	a, ok := d.admins[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &a, nil
}

func (r *memAdminRepository) GetByLogin(_ context.Context, login string) (*model.Admin, error) {
	d, unlock := r.lock()
	defer unlock()

	for _, a := range d.admins {
		if strings.EqualFold(a.Username, login) || strings.EqualFold(a.Email, login) {
			return &a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memAdminRepository) ExistsByUsernameOrEmail(_ context.Context, username, email string, excludeID uint) (bool, error) {
	d, unlock := r.lock()
	defer unlock()
	return d.adminTaken(username, email, excludeID), nil
}

func (r *memAdminRepository) List(_ context.Context) ([]model.Admin, error) {
	d, unlock := r.lock()
	defer unlock()

	admins := make([]model.Admin, 0, len(d.admins))
	for _, a := range d.admins {
		admins = append(admins, a)
	}
	sort.Slice(admins, func(i, j int) bool { return admins[i].ID < admins[j].ID })
	return admins, nil
}

func (r *memAdminRepository) Update(_ context.Context, admin *model.Admin) error {
	d, unlock := r.lock()
	defer unlock()

	if _, ok := d.admins[admin.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	if d.adminTaken(admin.Username, admin.Email, admin.ID) {
		return gorm.ErrDuplicatedKey
	}
	admin.UpdatedAt = r.now()
	d.admins[admin.ID] = *admin
	return nil
}

func (r *memAdminRepository) Delete(_ context.Context, id uint) error {
	d, unlock := r.lock()
	defer unlock()

	if _, ok := d.admins[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(d.admins, id)
	return nil
}

func (r *memAdminRepository) Count(_ context.Context) (int64, error) {
	d, unlock := r.lock()
	defer unlock()
	return int64(len(d.admins)), nil
}

func (r *memAdminRepository) CountActiveSuperadmins(_ context.Context) (int64, error) {
	d, unlock := r.lock()
	defer unlock()

	var n int64
	for _, a := range d.admins {
		if a.IsActiveSuperadmin() {
			n++
		}
	}
	return n, nil
}

// --- audit logs ---

type memAuditLogRepository struct{ *memRepo }

func (r *memAuditLogRepository) Create(_ context.Context, entry *model.AuditLog) error {
	d, unlock := r.lock()
	defer unlock()

	entry.ID = d.nextID("audit_logs")
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = r.now()
	}
	d.auditLogs[entry.ID] = *entry
	return nil
}

func (r *memAuditLogRepository) List(_ context.Context, filter AuditFilter) ([]AuditEntry, error) {
	d, unlock := r.lock()
	defer unlock()

	var entries []AuditEntry
	for _, l := range d.auditLogs {
		if filter.AdminID != nil && l.AdminID != *filter.AdminID {
			continue
		}
		if filter.Action != nil && l.Action != *filter.Action {
			continue
		}
		if filter.RegistrationID != nil && (l.RegistrationID == nil || *l.RegistrationID != *filter.RegistrationID) {
			continue
		}
		e := AuditEntry{
			ID:             l.ID,
			AdminID:        l.AdminID,
			Action:         l.Action,
			Details:        l.Details,
			RegistrationID: l.RegistrationID,
			IPAddress:      l.IPAddress,
			UserAgent:      l.UserAgent,
			CreatedAt:      l.CreatedAt,
		}
		if a, ok := d.admins[l.AdminID]; ok {
			e.AdminName, e.AdminEmail = a.Name, a.Email
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.After(entries[j].CreatedAt)
		}
		return entries[i].ID > entries[j].ID
	})
	return page(entries, filter.Offset, filter.Limit), nil
}

func (r *memAuditLogRepository) Count(_ context.Context) (int64, error) {
	d, unlock := r.lock()
	defer unlock()
	return int64(len(d.auditLogs)), nil
}

func (r *memAuditLogRepository) CountByAction(_ context.Context) (map[model.AuditAction]int64, error) {
	d, unlock := r.lock()
	defer unlock()

	counts := map[model.AuditAction]int64{}
	for _, l := range d.auditLogs {
		counts[l.Action]++
	}
	return counts, nil
}

func (r *memAuditLogRepository) CountSince(_ context.Context, since time.Time) (int64, error) {
	d, unlock := r.lock()
	defer unlock()

	var n int64
	for _, l := range d.auditLogs {
		if !l.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

// --- settings ---

type memSettingsRepository struct{ *memRepo }

func (r *memSettingsRepository) Get(_ context.Context) (*model.EventSettings, error) {
	d, unlock := r.lock()
	defer unlock()

	if d.settings == nil {
		return nil, gorm.ErrRecordNotFound
	}
	s := *d.settings
	return &s, nil
}

func (r *memSettingsRepository) Save(_ context.Context, settings *model.EventSettings) error {
	d, unlock := r.lock()
	defer unlock()

	settings.ID = model.EventSettingsID
	settings.UpdatedAt = r.now()
	s := *settings
	d.settings = &s
	return nil
}
