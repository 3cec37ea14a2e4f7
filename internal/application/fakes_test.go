package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Codeveil-Studio/QResolve-app/internal/domain/entity"
	repo "github.com/Codeveil-Studio/QResolve-app/internal/domain/repository"
	"github.com/Codeveil-Studio/QResolve-app/internal/events"
	"github.com/Codeveil-Studio/QResolve-app/pkg/mailer"
)

func strp(s string) *string { return &s }

// ---- identities ----

type fakeIdentities struct {
	mu      sync.Mutex
	byID    map[string]*entity.Identity
	seq     int
	getByID func(ctx context.Context, id string) (*entity.Identity, error)
}

func newFakeIdentities() *fakeIdentities {
	return &fakeIdentities{byID: map[string]*entity.Identity{}}
}

func (f *fakeIdentities) Create(_ context.Context, i *entity.Identity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.byID {
		if e.Email == i.Email {
			return fmt.Errorf("%w: users_email_key", repo.ErrDuplicate)
		}
	}
	f.seq++
	i.ID = fmt.Sprintf("user-%d", f.seq)
	i.CreatedAt = time.Now().UTC()
	cp := *i
	f.byID[i.ID] = &cp
	return nil
}

func (f *fakeIdentities) GetByID(ctx context.Context, id string) (*entity.Identity, error) {
	if f.getByID != nil {
		return f.getByID(ctx, id)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i, ok := f.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *i
	return &cp, nil
}

func (f *fakeIdentities) GetByEmail(_ context.Context, email string) (*entity.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, i := range f.byID {
		if i.Email == email {
			cp := *i
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeIdentities) MarkEmailConfirmed(_ context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, ok := f.byID[id]
	if !ok {
		return repo.ErrNotFound
	}
	i.EmailConfirmedAt = &at
	return nil
}

// ---- profiles ----

type fakeProfiles struct {
	mu        sync.Mutex
	byUser    map[string]*entity.Profile
	createErr error
	getErr    error
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{byUser: map[string]*entity.Profile{}}
}

func (f *fakeProfiles) Create(_ context.Context, p *entity.Profile) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = "profile-" + p.UserID
	cp := *p
	f.byUser[p.UserID] = &cp
	return nil
}

func (f *fakeProfiles) GetByUserID(_ context.Context, userID string) (*entity.Profile, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byUser[userID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfiles) UpdateFullName(_ context.Context, userID, fullName string) (*entity.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byUser[userID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	p.FullName = &fullName
	cp := *p
	return &cp, nil
}

// ---- organizations ----

type fakeOrgs struct {
	mu            sync.Mutex
	orgs          map[string]*entity.Organization
	memberships   map[string][]*entity.Membership
	subscriptions map[string]*entity.Subscription
	seq           int
	bootstrapFunc func(ctx context.Context, name, ownerID string) (*entity.Tenant, error)
	bootstrapped  int
}

func newFakeOrgs() *fakeOrgs {
	return &fakeOrgs{
		orgs:          map[string]*entity.Organization{},
		memberships:   map[string][]*entity.Membership{},
		subscriptions: map[string]*entity.Subscription{},
	}
}

// addMember links userID to a (possibly missing) organization.
func (f *fakeOrgs) addMember(userID, orgID string, role entity.Role) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.memberships[userID] = append(f.memberships[userID], &entity.Membership{ID: "m-" + userID + "-" + orgID, OrgID: orgID, UserID: userID, Role: role})
}

func (f *fakeOrgs) addOrg(id, name, owner string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orgs[id] = &entity.Organization{ID: id, Name: name, OwnerID: owner}
}

func (f *fakeOrgs) GetByID(_ context.Context, id string) (*entity.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orgs[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrgs) GetMembershipByUser(_ context.Context, userID string) (*entity.Membership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ms := f.memberships[userID]
	switch len(ms) {
	case 0:
		return nil, repo.ErrNotFound
	case 1:
		cp := *ms[0]
		return &cp, nil
	}
	return nil, repo.ErrMultipleRows
}

func (f *fakeOrgs) Bootstrap(ctx context.Context, name, ownerID string) (*entity.Tenant, error) {
	f.mu.Lock()
	f.bootstrapped++
	f.mu.Unlock()
	if f.bootstrapFunc != nil {
		return f.bootstrapFunc(ctx, name, ownerID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.memberships[ownerID]) > 0 {
		return nil, fmt.Errorf("insert membership: %w: organization_memberships_user_id_key", repo.ErrDuplicate)
	}
	f.seq++
	id := fmt.Sprintf("org-%d", f.seq)
	org := &entity.Organization{ID: id, Name: name, OwnerID: ownerID}
	m := &entity.Membership{ID: "m-" + id, OrgID: id, UserID: ownerID, Role: entity.RoleOwner}
	sub := &entity.Subscription{ID: "s-" + id, OrgID: id, Status: entity.SubscriptionTrialing}
	f.orgs[id] = org
	f.memberships[ownerID] = []*entity.Membership{m}
	f.subscriptions[id] = sub
	return &entity.Tenant{Organization: org, Membership: m, Subscription: sub}, nil
}

func (f *fakeOrgs) UpdateName(_ context.Context, id, name string) (*entity.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orgs[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	o.Name = name
	cp := *o
	return &cp, nil
}

func (f *fakeOrgs) GetSubscription(_ context.Context, orgID string) (*entity.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.subscriptions[orgID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return s, nil
}

// ---- sessions ----

type fakeSessions struct {
	mu       sync.Mutex
	sessions map[string]*entity.Session
	states   map[string]*entity.SessionState

	invalidateErr error
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: map[string]*entity.Session{}, states: map[string]*entity.SessionState{}}
}

func (f *fakeSessions) Save(_ context.Context, s *entity.Session, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *s
	f.sessions[s.UserID] = &cp
	return nil
}

func (f *fakeSessions) Get(_ context.Context, userID string) (*entity.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[userID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessions) Rotate(_ context.Context, userID, oldSID, newSID string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[userID]
	if !ok || s.ID != oldSID {
		return repo.ErrNotFound
	}
	s.ID = newSID
	s.ExpiresAt = expiresAt
	return nil
}

func (f *fakeSessions) Destroy(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, userID)
	delete(f.states, userID)
	return nil
}

func (f *fakeSessions) GetState(_ context.Context, userID string) (*entity.SessionState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.states[userID]
	if !ok {
		return nil, nil
	}
	cp := *st
	return &cp, nil
}

func (f *fakeSessions) PutState(_ context.Context, st *entity.SessionState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *st
	f.states[st.UserID()] = &cp
	return nil
}

func (f *fakeSessions) MarkLoading(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states[userID] = &entity.SessionState{Loading: true}
	return nil
}

func (f *fakeSessions) InvalidateState(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.invalidateErr != nil {
		return f.invalidateErr
	}
	delete(f.states, userID)
	return nil
}

// ---- verification tokens ----

type fakeTokens struct {
	mu     sync.Mutex
	tokens map[string]string
	seq    int
}

func newFakeTokens() *fakeTokens { return &fakeTokens{tokens: map[string]string{}} }

func (f *fakeTokens) Issue(_ context.Context, userID string, _ time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	tok := fmt.Sprintf("tok-%d", f.seq)
	f.tokens[tok] = userID
	return tok, nil
}

func (f *fakeTokens) Consume(_ context.Context, token string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	uid, ok := f.tokens[token]
	if !ok {
		return "", repo.ErrNotFound
	}
	delete(f.tokens, token)
	return uid, nil
}

// latest returns the most recently issued token.
func (f *fakeTokens) latest() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fmt.Sprintf("tok-%d", f.seq)
}

// ---- assets ----

type fakeAssets struct {
	mu     sync.Mutex
	assets map[string]*entity.Asset
	refs   map[string]*entity.AssetRef
	seq    int
}

func newFakeAssets() *fakeAssets {
	return &fakeAssets{assets: map[string]*entity.Asset{}, refs: map[string]*entity.AssetRef{}}
}

func (f *fakeAssets) put(a *entity.Asset) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *a
	f.assets[a.ID] = &cp
}

func (f *fakeAssets) List(_ context.Context, orgID string) ([]entity.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.Asset
	for _, a := range f.assets {
		if a.OrgID == orgID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeAssets) GetByID(_ context.Context, orgID, id string) (*entity.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.assets[id]
	if !ok || a.OrgID != orgID {
		return nil, repo.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAssets) GetRef(_ context.Context, id string) (*entity.AssetRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.refs[id]; ok {
		cp := *r
		return &cp, nil
	}
	a, ok := f.assets[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &entity.AssetRef{ID: a.ID, Name: a.Name, Location: a.Location, OrgID: a.OrgID, SerialNumber: a.SerialNumber}, nil
}

func (f *fakeAssets) Create(_ context.Context, a *entity.Asset) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	a.ID = fmt.Sprintf("asset-%d", f.seq)
	cp := *a
	f.assets[a.ID] = &cp
	return nil
}

func (f *fakeAssets) Update(_ context.Context, a *entity.Asset) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.assets[a.ID]
	if !ok || cur.OrgID != a.OrgID {
		return repo.ErrNotFound
	}
	cp := *a
	f.assets[a.ID] = &cp
	return nil
}

func (f *fakeAssets) SetQRCode(_ context.Context, orgID, id, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.assets[id]
	if !ok || a.OrgID != orgID {
		return repo.ErrNotFound
	}
	a.QRCode = &url
	return nil
}

func (f *fakeAssets) Delete(_ context.Context, orgID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.assets[id]
	if !ok || a.OrgID != orgID {
		return repo.ErrNotFound
	}
	delete(f.assets, id)
	return nil
}

func (f *fakeAssets) CountByStatus(_ context.Context, orgID string) (map[entity.AssetStatus]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[entity.AssetStatus]int{}
	for _, s := range entity.AllAssetStatuses() {
		out[s] = 0
	}
	for _, a := range f.assets {
		if a.OrgID == orgID {
			out[a.Status]++
		}
	}
	return out, nil
}

// ---- issues ----

type fakeIssues struct {
	mu        sync.Mutex
	issues    []*entity.Issue
	seq       int
	createErr error
	lastSince time.Time
}

func newFakeIssues() *fakeIssues { return &fakeIssues{} }

func (f *fakeIssues) all() []entity.Issue {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entity.Issue, 0, len(f.issues))
	for _, i := range f.issues {
		out = append(out, *i)
	}
	return out
}

func (f *fakeIssues) List(_ context.Context, orgID string, flt entity.IssueFilter) ([]entity.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.Issue
	for k := len(f.issues) - 1; k >= 0; k-- {
		i := f.issues[k]
		if i.OrgID != orgID {
			continue
		}
		if flt.Status != "" && i.Status != flt.Status {
			continue
		}
		if flt.Priority != "" && i.Priority != flt.Priority {
			continue
		}
		if flt.AssetID != "" && (i.AssetID == nil || *i.AssetID != flt.AssetID) {
			continue
		}
		out = append(out, *i)
		if flt.Limit > 0 && len(out) == flt.Limit {
			break
		}
	}
	return out, nil
}

func (f *fakeIssues) GetByID(_ context.Context, orgID, id string) (*entity.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, i := range f.issues {
		if i.ID == id && i.OrgID == orgID {
			cp := *i
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeIssues) Create(_ context.Context, i *entity.Issue) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	i.ID = fmt.Sprintf("issue-%d", f.seq)
	i.CreatedAt = time.Now().UTC()
	cp := *i
	f.issues = append(f.issues, &cp)
	return nil
}

func (f *fakeIssues) UpdateStatus(_ context.Context, orgID, id string, status entity.IssueStatus, resolvedAt *time.Time) (*entity.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, i := range f.issues {
		if i.ID == id && i.OrgID == orgID {
			i.Status = status
			i.ResolvedAt = resolvedAt
			cp := *i
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeIssues) Delete(_ context.Context, orgID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, i := range f.issues {
		if i.ID == id && i.OrgID == orgID {
			f.issues = append(f.issues[:k], f.issues[k+1:]...)
			return nil
		}
	}
	return repo.ErrNotFound
}

func (f *fakeIssues) Stats(_ context.Context, orgID string, since time.Time) (entity.IssueStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastSince = since
	var s entity.IssueStats
	for _, i := range f.issues {
		if i.OrgID != orgID {
			continue
		}
		if i.Status.Active() {
			s.Active++
		}
		if i.Priority == entity.PriorityCritical && i.Status != entity.IssueClosed {
			s.Critical++
		}
		if i.ResolvedAt != nil && !i.ResolvedAt.Before(since) {
			s.ResolvedSince++
		}
	}
	return s, nil
}

func (f *fakeIssues) Breakdown(_ context.Context, orgID string) (entity.IssueBreakdown, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := entity.IssueBreakdown{ByStatus: map[entity.IssueStatus]int{}, ByPriority: map[entity.IssuePriority]int{}}
	for _, i := range f.issues {
		if i.OrgID == orgID {
			b.ByStatus[i.Status]++
			b.ByPriority[i.Priority]++
		}
	}
	return b, nil
}

// ---- change feed ----

type fakeFeed struct {
	mu     sync.Mutex
	events []entity.ChangeEvent
}

func (f *fakeFeed) Publish(_ context.Context, evt entity.ChangeEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, evt)
	return nil
}

func (f *fakeFeed) Subscribe(context.Context, string) (repo.ChangeSubscription, error) {
	return nil, fmt.Errorf("not supported")
}

// ---- asset index ----

type fakeIndex struct {
	mu      sync.Mutex
	docs    map[string]*entity.Asset
	removed []string
}

func newFakeIndex() *fakeIndex { return &fakeIndex{docs: map[string]*entity.Asset{}} }

func (f *fakeIndex) Index(_ context.Context, a *entity.Asset) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *a
	f.docs[a.ID] = &cp
	return nil
}

func (f *fakeIndex) Remove(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.docs, id)
	f.removed = append(f.removed, id)
	return nil
}

func (f *fakeIndex) Search(_ context.Context, orgID, q string, _ int) ([]map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []map[string]any
	for _, a := range f.docs {
		if a.OrgID == orgID && a.Name == q {
			out = append(out, map[string]any{"id": a.ID})
		}
	}
	return out, nil
}

// ---- events and mail ----

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, evt events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, evt)
	return nil
}

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type recordingQueue struct {
	mu   sync.Mutex
	jobs []mailer.EmailJob
}

func (q *recordingQueue) Enqueue(_ context.Context, job mailer.EmailJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *recordingQueue) templates() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]string, len(q.jobs))
	for i, j := range q.jobs {
		out[i] = j.Template
	}
	return out
}
