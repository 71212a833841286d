package handler

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-dataroom-api/internal/application/access"
	"github.com/go-dataroom-api/internal/application/preview"
	"github.com/go-dataroom-api/internal/application/view"
	"github.com/go-dataroom-api/internal/domain"
	jwtinfra "github.com/go-dataroom-api/internal/infrastructure/jwt"
	s3infra "github.com/go-dataroom-api/internal/infrastructure/s3"
	"github.com/go-dataroom-api/internal/transport/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- in-memory stores ---

type memLinks struct{ links map[string]*domain.Link }

func (s *memLinks) Get(_ context.Context, id string) (*domain.Link, error) {
	if l, ok := s.links[id]; ok {
		return l, nil
	}
	return nil, domain.ErrNotFound
}

type memTeams struct{ teams map[string]*domain.Team }

func (s *memTeams) Get(_ context.Context, id string) (*domain.Team, error) {
	if t, ok := s.teams[id]; ok {
		return t, nil
	}
	return nil, domain.ErrNotFound
}

type memDocuments struct{ docs map[string]*domain.Document }

func (s *memDocuments) Get(_ context.Context, id string) (*domain.Document, error) {
	if d, ok := s.docs[id]; ok {
		return d, nil
	}
	return nil, domain.ErrNotFound
}

type memViewers struct{ viewers map[string]*domain.Viewer }

func (s *memViewers) key(teamID, email string) string { return teamID + "/" + email }

func (s *memViewers) Get(_ context.Context, teamID, email string) (*domain.Viewer, error) {
	if v, ok := s.viewers[s.key(teamID, email)]; ok {
		return v, nil
	}
	return nil, domain.ErrNotFound
}
func (s *memViewers) Create(_ context.Context, v *domain.Viewer) error {
	k := s.key(v.TeamID, v.Email)
	if _, ok := s.viewers[k]; ok {
		return domain.ErrConflict
	}
	s.viewers[k] = v
	return nil
}
func (s *memViewers) MarkVerified(_ context.Context, teamID, email string) error {
	v, ok := s.viewers[s.key(teamID, email)]
	if !ok {
		return domain.ErrNotFound
	}
	v.Verified = true
	return nil
}

type memViews struct{ rows []*domain.View }

func (s *memViews) Put(_ context.Context, v *domain.View) error {
	s.rows = append(s.rows, v)
	return nil
}

type mockTokenService struct{ mock.Mock }

func (m *mockTokenService) IssueOTP(ctx context.Context, link *domain.Link, email string) error {
	return m.Called(ctx, link, email).Error(0)
}
func (m *mockTokenService) VerifyOTP(ctx context.Context, link *domain.Link, email, code string) (string, error) {
	args := m.Called(ctx, link, email, code)
	return args.String(0), args.Error(1)
}
func (m *mockTokenService) VerifyToken(ctx context.Context, link *domain.Link, email, rawToken string) error {
	return m.Called(ctx, link, email, rawToken).Error(0)
}

type noLimit struct{}

func (noLimit) Allow(string) bool { return true }

type noReports struct{}

func (noReports) PublishDeniedAccess(string, string, string) {}

type noEvents struct{}

func (noEvents) PublishViewEvent(*domain.View)        {}
func (noEvents) PublishViewNotification(*domain.View) {}

type staticResolver struct{}

func (staticResolver) Resolve(_ context.Context, version *domain.DocumentVersion) (*s3infra.Content, error) {
	return &s3infra.Content{
		ContentType: version.Kind,
		NumPages:    version.NumPages,
		FileURL:     "https://signed.example/" + version.StorageKey,
	}, nil
}

// --- fixture ---

type fixture struct {
	handler  *ViewHandler
	provider *jwtinfra.Provider
	links    *memLinks
	viewers  *memViewers
	views    *memViews
	tokens   *mockTokenService
}

var fixtureKey = []byte("0123456789abcdef0123456789abcdef")

func newFixture(t *testing.T) *fixture {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	provider := jwtinfra.NewProviderFromKeys(key)

	doc := &domain.Document{
		DocumentID:       "doc1",
		TeamID:           "team1",
		CurrentVersionID: "ver1",
		Versions: []domain.DocumentVersion{
			{VersionID: "ver1", Kind: domain.ContentKindFile, StorageKey: "objects/doc1/ver1"},
			{VersionID: "ver0", Kind: domain.ContentKindFile, StorageKey: "objects/doc1/ver0"},
		},
	}

	f := &fixture{
		provider: provider,
		links:    &memLinks{links: map[string]*domain.Link{}},
		viewers:  &memViewers{viewers: map[string]*domain.Viewer{}},
		views:    &memViews{},
		tokens:   &mockTokenService{},
	}
	teams := &memTeams{teams: map[string]*domain.Team{"team1": {TeamID: "team1"}}}
	documents := &memDocuments{docs: map[string]*domain.Document{"doc1": doc}}

	gates := access.NewService(f.tokens, noLimit{}, noReports{}, fixtureKey)
	previews := preview.NewService(provider)
	recorder := view.NewService(f.viewers, f.views, noEvents{})
	f.handler = NewViewHandler(f.links, teams, documents, gates, previews, recorder, staticResolver{})
	return f
}

func (f *fixture) addLink(mutate func(*domain.Link)) *domain.Link {
	link := &domain.Link{LinkID: "lnk1", TeamID: "team1", DocumentID: "doc1"}
	if mutate != nil {
		mutate(link)
	}
	f.links.links[link.LinkID] = link
	return link
}

func (f *fixture) post(t *testing.T, body map[string]interface{}, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/views", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	middleware.OptionalAuth(f.provider)(http.HandlerFunc(f.handler.Create)).ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// --- tests ---

func TestCreate_InvalidBody(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodPost, "/v1/views", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	f.handler.Create(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", decode(t, rec)["message"])
}

func TestCreate_MissingLinkID(t *testing.T) {
	f := newFixture(t)
	rec := f.post(t, map[string]interface{}{}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreate_LinkNotFound(t *testing.T) {
	f := newFixture(t)
	rec := f.post(t, map[string]interface{}{"linkId": "nope"}, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Link not found", decode(t, rec)["message"])
}

func TestCreate_OpenLink_RecordsView(t *testing.T) {
	f := newFixture(t)
	f.addLink(nil)

	rec := f.post(t, map[string]interface{}{"linkId": "lnk1"}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "View recorded", body["message"])
	assert.NotEmpty(t, body["viewId"])
	assert.Equal(t, "file", body["contentType"])
	assert.Equal(t, "https://signed.example/objects/doc1/ver1", body["fileUrl"])

	require.Len(t, f.views.rows, 1)
	assert.Equal(t, "lnk1", f.views.rows[0].LinkID)
	assert.Equal(t, "ver1", f.views.rows[0].DocumentVersionID)
	assert.Empty(t, f.views.rows[0].ViewerID)
}

func TestCreate_ExplicitVersion(t *testing.T) {
	f := newFixture(t)
	f.addLink(nil)

	rec := f.post(t, map[string]interface{}{"linkId": "lnk1", "documentVersionId": "ver0"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ver0", f.views.rows[0].DocumentVersionID)
}

func TestCreate_UnknownVersion(t *testing.T) {
	f := newFixture(t)
	f.addLink(nil)

	rec := f.post(t, map[string]interface{}{"linkId": "lnk1", "documentVersionId": "ghost"}, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Document version not found", decode(t, rec)["message"])
	assert.Empty(t, f.views.rows)
}

func TestCreate_ArchivedLink(t *testing.T) {
	f := newFixture(t)
	f.addLink(func(l *domain.Link) { l.Archived = true })

	rec := f.post(t, map[string]interface{}{"linkId": "lnk1"}, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Link is no longer available", decode(t, rec)["message"])
	assert.Empty(t, f.views.rows)
}

func TestCreate_WrongPassword_NoViewRecorded(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	f := newFixture(t)
	f.addLink(func(l *domain.Link) { l.Password = string(hash) })

	rec := f.post(t, map[string]interface{}{"linkId": "lnk1", "password": "wrong"}, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Invalid password", decode(t, rec)["message"])
	assert.Empty(t, f.views.rows)

	rec = f.post(t, map[string]interface{}{"linkId": "lnk1", "password": "s3cret"}, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, f.views.rows, 1)
}

func TestCreate_AgreementNotConfirmed(t *testing.T) {
	f := newFixture(t)
	f.addLink(func(l *domain.Link) {
		l.EnableAgreement = true
		l.AgreementID = "agr1"
	})

	rec := f.post(t, map[string]interface{}{"linkId": "lnk1"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.post(t, map[string]interface{}{"linkId": "lnk1", "hasConfirmedAgreement": true}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, f.views.rows, 1)
	require.NotNil(t, f.views.rows[0].Agreement)
	assert.Equal(t, "agr1", f.views.rows[0].Agreement.AgreementID)
}

func TestCreate_EmailAuthenticated_SendsCode(t *testing.T) {
	f := newFixture(t)
	f.addLink(func(l *domain.Link) { l.EmailAuthenticated = true })
	f.tokens.On("IssueOTP", mock.Anything, mock.Anything, "a@b.com").Return(nil)

	rec := f.post(t, map[string]interface{}{"linkId": "lnk1", "email": "a@b.com"}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "email-verification", body["type"])
	assert.Empty(t, f.views.rows)
	f.tokens.AssertExpectations(t)
}

func TestCreate_EmailAuthenticated_CodeExchange(t *testing.T) {
	f := newFixture(t)
	f.addLink(func(l *domain.Link) { l.EmailAuthenticated = true })
	f.tokens.On("VerifyOTP", mock.Anything, mock.Anything, "a@b.com", "123456").
		Return("long-lived-token", nil)

	rec := f.post(t, map[string]interface{}{
		"linkId": "lnk1", "email": "a@b.com", "code": "123456",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "long-lived-token", body["verificationToken"])
	assert.NotEmpty(t, body["viewId"])

	require.Len(t, f.views.rows, 1)
	assert.True(t, f.views.rows[0].Verified)

	// The exchange also creates the viewer as verified.
	viewer, err := f.viewers.Get(context.Background(), "team1", "a@b.com")
	require.NoError(t, err)
	assert.True(t, viewer.Verified)
}

func TestCreate_EmailAuthenticated_BadCode(t *testing.T) {
	f := newFixture(t)
	f.addLink(func(l *domain.Link) { l.EmailAuthenticated = true })
	f.tokens.On("VerifyOTP", mock.Anything, mock.Anything, "a@b.com", "000000").
		Return("", domain.ErrUnauthorized)

	rec := f.post(t, map[string]interface{}{
		"linkId": "lnk1", "email": "a@b.com", "code": "000000",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, true, body["resetVerification"])
	assert.Empty(t, f.views.rows)
}

func TestCreate_Watermark(t *testing.T) {
	f := newFixture(t)
	f.addLink(func(l *domain.Link) {
		l.EnableWatermark = true
		l.WatermarkConfig = "{{email}} viewed at {{date}}"
	})

	rec := f.post(t, map[string]interface{}{"linkId": "lnk1"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "{{email}} viewed at {{date}}", decode(t, rec)["watermark"])
}

func TestCreate_Preview_WithoutSession(t *testing.T) {
	f := newFixture(t)
	f.addLink(nil)
	tok, err := f.provider.SignPreview("usr1", "lnk1", time.Hour)
	require.NoError(t, err)

	rec := f.post(t, map[string]interface{}{"linkId": "lnk1", "previewToken": tok}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "You need to be logged in to preview this link", decode(t, rec)["message"])
}

func TestCreate_Preview_InvalidToken(t *testing.T) {
	f := newFixture(t)
	f.addLink(nil)
	session, err := f.provider.SignSession("usr1", "team1", time.Hour)
	require.NoError(t, err)
	// Issued for another link: the session is fine but the token is not.
	tok, err := f.provider.SignPreview("usr1", "other-link", time.Hour)
	require.NoError(t, err)

	rec := f.post(t, map[string]interface{}{"linkId": "lnk1", "previewToken": tok}, session)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "Preview session invalid or expired", body["message"])
	assert.Equal(t, true, body["resetPreview"])
}

func TestCreate_Preview_BypassesGatesAndLeavesNoTrace(t *testing.T) {
	f := newFixture(t)
	// Gates that would stop any visitor.
	f.addLink(func(l *domain.Link) {
		l.EmailAuthenticated = true
		l.EnableAgreement = true
	})
	session, err := f.provider.SignSession("usr1", "team1", time.Hour)
	require.NoError(t, err)
	tok, err := f.provider.SignPreview("usr1", "lnk1", time.Hour)
	require.NoError(t, err)

	rec := f.post(t, map[string]interface{}{"linkId": "lnk1", "previewToken": tok}, session)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, true, body["isPreview"])
	assert.Nil(t, body["viewId"])
	assert.Equal(t, "file", body["contentType"])

	assert.Empty(t, f.views.rows)
	assert.Empty(t, f.viewers.viewers)
}

func TestCreate_CustomFieldsStored(t *testing.T) {
	f := newFixture(t)
	f.addLink(func(l *domain.Link) {
		l.CustomFields = []domain.CustomFieldDef{
			{Identifier: "company", Label: "Company"},
		}
	})

	rec := f.post(t, map[string]interface{}{
		"linkId":       "lnk1",
		"customFields": map[string]string{"company": "Acme"},
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, f.views.rows, 1)
	require.Len(t, f.views.rows[0].CustomFields, 1)
	assert.Equal(t, "Acme", f.views.rows[0].CustomFields[0].Value)
}
