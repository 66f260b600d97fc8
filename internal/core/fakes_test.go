package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"planner-backend-go/internal/db"
	"planner-backend-go/internal/identity"
	"planner-backend-go/internal/models"
	"planner-backend-go/internal/session"
)

// memStore is an in-memory stand-in for every Firestore repository. A single
// mutex makes each multi-document write atomic, like a transaction.
type memStore struct {
	mu          sync.Mutex
	seq         int
	users       map[string]*models.User
	planners    map[string]*models.Planner
	sections    map[string]*models.Section
	shares      map[string]*models.PlannerShare
	activities  map[string]*models.ActivityLog
	chats       map[string]*models.ChatMessage
	handwriting map[string]*models.HandwritingRecord
	exports     map[string]*models.ExportRecord

	activityErr   error
	createManyErr error
}

func newMemStore() *memStore {
	return &memStore{
		users:       map[string]*models.User{},
		planners:    map[string]*models.Planner{},
		sections:    map[string]*models.Section{},
		shares:      map[string]*models.PlannerShare{},
		activities:  map[string]*models.ActivityLog{},
		chats:       map[string]*models.ChatMessage{},
		handwriting: map[string]*models.HandwritingRecord{},
		exports:     map[string]*models.ExportRecord{},
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

// users

type memUsers struct{ *memStore }

func (r memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, db.ErrNotFound
}

func (r memUsers) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r memUsers) Update(_ context.Context, id string, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return db.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "displayName":
			u.DisplayName = v.(string)
		case "photoURL":
			u.PhotoURL = v.(string)
		case "preferences":
			u.Preferences = v.(models.Preferences)
		case "lastLogin":
			u.LastLogin = v.(time.Time)
		case "updatedAt":
			u.UpdatedAt = v.(time.Time)
		}
	}
	return nil
}

func (r memUsers) DeleteAccountData(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[userID]; !ok {
		return db.ErrNotFound
	}
	for id, p := range r.planners {
		if p.UserID != userID {
			continue
		}
		r.deletePlannerLocked(id)
	}
	for id, s := range r.shares {
		if s.SharedWithUserID == userID {
			delete(r.shares, id)
		}
	}
	delete(r.users, userID)
	return nil
}

// planners

type memPlanners struct{ *memStore }

func (r memPlanners) clearDefaultsLocked(ownerID string) {
	for _, p := range r.planners {
		if p.UserID == ownerID {
			p.IsDefault = false
		}
	}
}

func (r memPlanners) Create(_ context.Context, p *models.Planner) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.IsDefault {
		r.clearDefaultsLocked(p.UserID)
	}
	p.ID = r.nextID("planner")
	cp := *p
	r.planners[p.ID] = &cp
	return p.ID, nil
}

func (r memPlanners) GetByID(_ context.Context, id string) (*models.Planner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.planners[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r memPlanners) ListByOwner(_ context.Context, ownerID string, includeArchived bool) ([]*models.Planner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Planner
	for _, p := range r.planners {
		if p.UserID != ownerID || (p.IsArchived && !includeArchived) {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memPlanners) applyLocked(p *models.Planner, fields map[string]interface{}) {
	for k, v := range fields {
		switch k {
		case "title":
			p.Title = v.(string)
		case "color":
			p.Color = v.(string)
		case "icon":
			p.Icon = v.(string)
		case "description":
			p.Description = v.(string)
		case "isDefault":
			p.IsDefault = v.(bool)
		case "isArchived":
			p.IsArchived = v.(bool)
		case "archivedAt":
			if t, ok := v.(time.Time); ok {
				p.ArchivedAt = &t
			} else {
				p.ArchivedAt = nil
			}
		case "updatedAt":
			p.UpdatedAt = v.(time.Time)
		}
	}
}

func (r memPlanners) Update(_ context.Context, id string, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.planners[id]
	if !ok {
		return db.ErrNotFound
	}
	r.applyLocked(p, fields)
	return nil
}

func (r memPlanners) UpdateAsDefault(_ context.Context, ownerID, id string, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.planners[id]
	if !ok {
		return db.ErrNotFound
	}
	r.clearDefaultsLocked(ownerID)
	r.applyLocked(p, fields)
	p.IsDefault = true
	return nil
}

func (m *memStore) deletePlannerLocked(id string) {
	for sid, s := range m.sections {
		if s.PlannerID == id {
			delete(m.sections, sid)
		}
	}
	for sid, s := range m.shares {
		if s.PlannerID == id {
			delete(m.shares, sid)
		}
	}
	delete(m.planners, id)
}

func (r memPlanners) DeleteCascade(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.planners[id]; !ok {
		return db.ErrNotFound
	}
	r.deletePlannerLocked(id)
	return nil
}

// sections

type memSections struct{ *memStore }

func (r memSections) Create(_ context.Context, s *models.Section) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.ID = r.nextID("section")
	cp := *s
	r.sections[s.ID] = &cp
	return s.ID, nil
}

func (r memSections) CreateMany(_ context.Context, sections []*models.Section) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createManyErr != nil {
		return nil, r.createManyErr
	}
	ids := make([]string, len(sections))
	for i, s := range sections {
		s.ID = r.nextID("section")
		cp := *s
		r.sections[s.ID] = &cp
		ids[i] = s.ID
	}
	return ids, nil
}

func (r memSections) GetByID(_ context.Context, id string) (*models.Section, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sections[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r memSections) filter(keep func(*models.Section) bool) []*models.Section {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Section
	for _, s := range r.sections {
		if keep(s) {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out
}

func (r memSections) ListByDate(_ context.Context, plannerID, date string) ([]*models.Section, error) {
	out := r.filter(func(s *models.Section) bool { return s.PlannerID == plannerID && s.Date == date })
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (r memSections) ListInRange(_ context.Context, plannerID, start, end string) ([]*models.Section, error) {
	out := r.filter(func(s *models.Section) bool {
		return s.PlannerID == plannerID && s.Date >= start && s.Date <= end
	})
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Order < out[j].Order
	})
	return out, nil
}

func (r memSections) ListByType(_ context.Context, plannerID string, t models.SectionType, limit int) ([]*models.Section, error) {
	out := r.filter(func(s *models.Section) bool { return s.PlannerID == plannerID && s.Type == t })
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memSections) HasSectionsOn(_ context.Context, plannerID, date string) (bool, error) {
	return len(r.filter(func(s *models.Section) bool { return s.PlannerID == plannerID && s.Date == date })) > 0, nil
}

func applySection(s *models.Section, fields map[string]interface{}) {
	for k, v := range fields {
		switch k {
		case "title":
			s.Title = v.(string)
		case "content":
			s.Content = v.(models.SectionContent)
		case "order":
			s.Order = v.(int)
		case "isCollapsed":
			s.IsCollapsed = v.(bool)
		case "updatedBy":
			s.UpdatedBy = v.(string)
		case "updatedAt":
			s.UpdatedAt = v.(time.Time)
		}
	}
}

func (r memSections) Update(_ context.Context, id string, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sections[id]
	if !ok {
		return db.ErrNotFound
	}
	applySection(s, fields)
	return nil
}

func (r memSections) UpdateMany(_ context.Context, plannerID string, updates []db.SectionUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range updates {
		s, ok := r.sections[u.ID]
		if !ok || s.PlannerID != plannerID {
			return fmt.Errorf("section '%s': %w", u.ID, db.ErrNotFound)
		}
	}
	for _, u := range updates {
		applySection(r.sections[u.ID], u.Fields)
	}
	return nil
}

func (r memSections) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sections[id]; !ok {
		return db.ErrNotFound
	}
	delete(r.sections, id)
	return nil
}

// shares

type memShares struct{ *memStore }

func (r memShares) Create(_ context.Context, s *models.PlannerShare) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := models.ShareID(s.PlannerID, s.SharedWithUserID)
	if _, exists := r.shares[id]; exists {
		return "", db.ErrAlreadyExists
	}
	s.ID = id
	cp := *s
	r.shares[id] = &cp
	return id, nil
}

func (r memShares) GetByID(_ context.Context, id string) (*models.PlannerShare, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.shares[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r memShares) list(keep func(*models.PlannerShare) bool) []*models.PlannerShare {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.PlannerShare
	for _, s := range r.shares {
		if keep(s) {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r memShares) ListByPlanner(_ context.Context, plannerID string) ([]*models.PlannerShare, error) {
	return r.list(func(s *models.PlannerShare) bool { return s.PlannerID == plannerID }), nil
}

func (r memShares) ListByRecipient(_ context.Context, userID string, accepted bool) ([]*models.PlannerShare, error) {
	return r.list(func(s *models.PlannerShare) bool {
		return s.SharedWithUserID == userID && s.IsAccepted == accepted
	}), nil
}

func (r memShares) Update(_ context.Context, id string, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.shares[id]
	if !ok {
		return db.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "isAccepted":
			s.IsAccepted = v.(bool)
		case "acceptedAt":
			t := v.(time.Time)
			s.AcceptedAt = &t
		case "permission":
			s.Permission = models.Permission(v.(string))
		case "updatedAt":
			s.UpdatedAt = v.(time.Time)
		}
	}
	return nil
}

func (r memShares) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.shares[id]; !ok {
		return db.ErrNotFound
	}
	delete(r.shares, id)
	return nil
}

// activity

type memActivity struct{ *memStore }

func (r memActivity) Create(_ context.Context, e *models.ActivityLog) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.activityErr != nil {
		return "", r.activityErr
	}
	e.ID = r.nextID("activity")
	cp := *e
	r.activities[e.ID] = &cp
	return e.ID, nil
}

func (r memActivity) GetByID(_ context.Context, id string) (*models.ActivityLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.activities[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (r memActivity) list(keep func(*models.ActivityLog) bool, page models.Page) []*models.ActivityLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.ActivityLog
	for _, e := range r.activities {
		if keep(e) {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if len(out) > page.Limit {
		out = out[:page.Limit]
	}
	return out
}

func (r memActivity) ListByPlanner(_ context.Context, plannerID string, page models.Page) ([]*models.ActivityLog, error) {
	return r.list(func(e *models.ActivityLog) bool { return e.PlannerID == plannerID }, page), nil
}

func (r memActivity) ListByUser(_ context.Context, userID string, page models.Page) ([]*models.ActivityLog, error) {
	return r.list(func(e *models.ActivityLog) bool { return e.UserID == userID }, page), nil
}

func (r memActivity) DeleteByPlanner(_ context.Context, plannerID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, e := range r.activities {
		if e.PlannerID == plannerID {
			delete(r.activities, id)
			n++
		}
	}
	return n, nil
}

// chat

type memChats struct{ *memStore }

func (r memChats) Create(_ context.Context, msg *models.ChatMessage) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg.ID = r.nextID("chat")
	cp := *msg
	r.chats[msg.ID] = &cp
	return msg.ID, nil
}

func (r memChats) ListByPlanner(_ context.Context, plannerID string, limit int) ([]*models.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.ChatMessage
	for _, c := range r.chats {
		if c.PlannerID == plannerID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memChats) DeleteByPlanner(_ context.Context, plannerID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, c := range r.chats {
		if c.PlannerID == plannerID {
			delete(r.chats, id)
			n++
		}
	}
	return n, nil
}

// handwriting

type memHandwriting struct{ *memStore }

func (r memHandwriting) Create(_ context.Context, h *models.HandwritingRecord) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h.ID = r.nextID("hw")
	cp := *h
	r.handwriting[h.ID] = &cp
	return h.ID, nil
}

func (r memHandwriting) GetByID(_ context.Context, id string) (*models.HandwritingRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.handwriting[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *h
	return &cp, nil
}

func (r memHandwriting) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.handwriting[id]; !ok {
		return db.ErrNotFound
	}
	delete(r.handwriting, id)
	return nil
}

// exports

type memExports struct{ *memStore }

func (r memExports) Create(_ context.Context, e *models.ExportRecord) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = r.nextID("export")
	cp := *e
	r.exports[e.ID] = &cp
	return e.ID, nil
}

func (r memExports) GetByID(_ context.Context, id string) (*models.ExportRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.exports[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (r memExports) Update(_ context.Context, id string, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.exports[id]
	if !ok {
		return db.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "status":
			e.Status = models.ExportStatus(v.(string))
		case "filePath":
			e.FilePath = v.(string)
		case "filename":
			e.Filename = v.(string)
		case "error":
			e.Error = v.(string)
		case "updatedAt":
			e.UpdatedAt = v.(time.Time)
		}
	}
	return nil
}

func (r memExports) ListStale(_ context.Context, before time.Time) ([]*models.ExportRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.ExportRecord
	for _, e := range r.exports {
		if (e.Status == models.ExportPending || e.Status == models.ExportInProgress) && e.CreatedAt.Before(before) {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

// collaborators

type postedCall struct {
	Webhook string
	Payload interface{}
}

// fakeWorkflow records calls and answers with reply, or fails with err.
type fakeWorkflow struct {
	mu    sync.Mutex
	calls []postedCall
	reply func(webhook string, out interface{})
	err   error
}

func (f *fakeWorkflow) Post(_ context.Context, webhook string, payload interface{}, out interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, postedCall{Webhook: webhook, Payload: payload})
	if f.err != nil {
		return f.err
	}
	if f.reply != nil && out != nil {
		f.reply(webhook, out)
	}
	return nil
}

func (f *fakeWorkflow) posted(webhook string) []postedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []postedCall
	for _, c := range f.calls {
		if c.Webhook == webhook {
			out = append(out, c)
		}
	}
	return out
}

type fakeObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeObjects() *fakeObjects { return &fakeObjects{objects: map[string][]byte{}} }

func (f *fakeObjects) Upload(_ context.Context, path, _ string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[path] = data
	return nil
}

func (f *fakeObjects) SignedURL(_ context.Context, path string, _ time.Duration) (string, error) {
	return "https://storage.test/" + path + "?signed", nil
}

func (f *fakeObjects) Delete(_ context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[path]; !ok {
		return errors.New("object not found")
	}
	delete(f.objects, path)
	return nil
}

func (f *fakeObjects) has(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[path]
	return ok
}

type fakeIdentity struct {
	passwords map[string]string // email -> password
	uids      map[string]string // email -> uid
	tokens    map[string]*identity.Identity
	deleted   []string
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{
		passwords: map[string]string{},
		uids:      map[string]string{},
		tokens:    map[string]*identity.Identity{},
	}
}

func (f *fakeIdentity) CreateUser(_ context.Context, email, password, _ string) (string, error) {
	if _, ok := f.uids[email]; ok {
		return "", identity.ErrEmailExists
	}
	uid := "uid-" + email
	f.uids[email] = uid
	f.passwords[email] = password
	return uid, nil
}

func (f *fakeIdentity) SignInWithPassword(_ context.Context, email, password string) (string, error) {
	if p, ok := f.passwords[email]; !ok || p != password {
		return "", identity.ErrInvalidCredentials
	}
	return f.uids[email], nil
}

func (f *fakeIdentity) VerifyIDToken(_ context.Context, token string) (*identity.Identity, error) {
	id, ok := f.tokens[token]
	if !ok {
		return nil, identity.ErrInvalidIDToken
	}
	return id, nil
}

func (f *fakeIdentity) UpdateProfile(context.Context, string, *string, *string) error { return nil }

func (f *fakeIdentity) UpdatePassword(_ context.Context, uid, password string) error {
	for email, u := range f.uids {
		if u == uid {
			f.passwords[email] = password
			return nil
		}
	}
	return identity.ErrUserNotFound
}

func (f *fakeIdentity) RevokeRefreshTokens(context.Context, string) error { return nil }

func (f *fakeIdentity) DeleteUser(_ context.Context, uid string) error {
	f.deleted = append(f.deleted, uid)
	return nil
}

// env wires every service over one memStore.
type env struct {
	store      *memStore
	guard      *AccessGuard
	activity   ActivityService
	planners   PlannerService
	sections   SectionService
	sharing    SharingService
	ai         AIService
	exports    ExportService
	hw         HandwritingService
	auth       AuthService
	flows      *fakeWorkflow
	objects    *fakeObjects
	identities *fakeIdentity
	background *BestEffort
	now        time.Time
}

func newEnv(t *testing.T) *env {
	t.Helper()
	logger := zap.NewNop()
	store := newMemStore()
	e := &env{
		store:      store,
		flows:      &fakeWorkflow{},
		objects:    newFakeObjects(),
		identities: newFakeIdentity(),
		background: NewBestEffort(logger),
		now:        time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return e.now }

	e.guard = NewAccessGuard(memPlanners{store}, memShares{store}, memSections{store})

	act := NewActivityService(memActivity{store}, e.guard, logger).(*activityService)
	act.now = clock
	e.activity = act

	ps := NewPlannerService(memPlanners{store}, memSections{store}, e.guard, e.activity, logger).(*plannerService)
	ps.now = clock
	e.planners = ps

	ss := NewSectionService(memSections{store}, e.guard, e.activity, logger).(*sectionService)
	ss.now = clock
	e.sections = ss

	sh := NewSharingService(memShares{store}, memPlanners{store}, memUsers{store}, e.guard, e.activity, e.flows, e.background, logger).(*sharingService)
	sh.now = clock
	e.sharing = sh

	ai := NewAIService(memSections{store}, memChats{store}, e.guard, e.activity, e.flows, logger).(*aiService)
	ai.now = clock
	e.ai = ai

	ex := NewExportService(memExports{store}, memSections{store}, e.guard, e.activity, e.flows, e.objects, nil, e.background, logger).(*exportService)
	ex.now = clock
	e.exports = ex

	hw := NewHandwritingService(memHandwriting{store}, e.guard, e.flows, e.objects, logger).(*handwritingService)
	hw.now = clock
	e.hw = hw

	tokens := session.NewManager("test-secret-test-secret-test-secret", time.Hour, 24*time.Hour, session.NewMemoryStore())
	au := NewAuthService(memUsers{store}, e.identities, tokens, e.background, logger).(*authService)
	au.now = clock
	e.auth = au

	t.Cleanup(e.background.Wait)
	return e
}

func (e *env) addUser(t *testing.T, id, email string) {
	t.Helper()
	if err := (memUsers{e.store}).Create(context.Background(), &models.User{ID: id, Email: email}); err != nil {
		t.Fatalf("add user: %v", err)
	}
}

func (e *env) newPlanner(t *testing.T, owner, title string) *models.Planner {
	t.Helper()
	p, err := e.planners.Create(context.Background(), owner, models.CreatePlannerRequest{Title: title})
	if err != nil {
		t.Fatalf("create planner: %v", err)
	}
	return p
}

func (e *env) newSection(t *testing.T, plannerID, actor, date string, t2 models.SectionType, order int) *models.Section {
	t.Helper()
	s, err := e.sections.Create(context.Background(), plannerID, actor, models.CreateSectionRequest{
		Date:  date,
		Type:  t2,
		Order: &order,
	})
	if err != nil {
		t.Fatalf("create section: %v", err)
	}
	return s
}

// shareAccepted shares plannerID with recipient and accepts it.
func (e *env) shareAccepted(t *testing.T, plannerID, owner, recipientID, recipientEmail string, perm models.Permission) *models.PlannerShare {
	t.Helper()
	ctx := context.Background()
	share, err := e.sharing.Share(ctx, plannerID, owner, models.SharePlannerRequest{Email: recipientEmail, Permission: perm})
	if err != nil {
		t.Fatalf("share: %v", err)
	}
	if _, err := e.sharing.Accept(ctx, share.ID, recipientID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	return share
}

func (e *env) activityTypes(plannerID string) []models.ActivityType {
	entries, _ := (memActivity{e.store}).ListByPlanner(context.Background(), plannerID, models.Page{Limit: models.MaxPageLimit})
	out := make([]models.ActivityType, len(entries))
	for i, a := range entries {
		out[i] = a.ActivityType
	}
	return out
}

func hasActivity(types []models.ActivityType, want models.ActivityType) bool {
	for _, t := range types {
		if t == want {
			return true
		}
	}
	return false
}
