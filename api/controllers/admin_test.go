package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gloova-ai/gloova-backend/internal/profiles"
	"github.com/gloova-ai/gloova-backend/pkg/db/models"
	"github.com/gloova-ai/gloova-backend/pkg/enums"
)

type fakeProfilesService struct {
	listFn    func(ctx context.Context, params profiles.ListParams) (*profiles.ListResult, error)
	getByIDFn func(ctx context.Context, profileID uuid.UUID) (*models.Profile, error)
}

func (f *fakeProfilesService) Create(context.Context, profiles.SignupInput) (*models.Profile, error) {
	return nil, nil
}

func (f *fakeProfilesService) GetByID(ctx context.Context, profileID uuid.UUID) (*models.Profile, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, profileID)
	}
	return nil, nil
}

func (f *fakeProfilesService) GetByEmail(context.Context, string) (*models.Profile, error) {
	return nil, nil
}

func (f *fakeProfilesService) GetByReferralCode(context.Context, string) (*models.Profile, error) {
	return nil, nil
}

func (f *fakeProfilesService) List(ctx context.Context, params profiles.ListParams) (*profiles.ListResult, error) {
	if f.listFn != nil {
		return f.listFn(ctx, params)
	}
	return &profiles.ListResult{}, nil
}

func (f *fakeProfilesService) SetConversationID(context.Context, uuid.UUID, string) error {
	return nil
}

func (f *fakeProfilesService) UpdateContact(context.Context, uuid.UUID, *string, *string) error {
	return nil
}

func (f *fakeProfilesService) RecordReferralBonus(context.Context, uuid.UUID, uuid.UUID, int) (bool, error) {
	return false, nil
}

type fakeLedgerService struct {
	grantFn func(ctx context.Context, profileID uuid.UUID, creditType enums.CreditType, amount int) (int, error)
}

func (f *fakeLedgerService) Balance(context.Context, uuid.UUID, enums.CreditType) (int, error) {
	return 0, nil
}

func (f *fakeLedgerService) HasCredit(context.Context, uuid.UUID, enums.CreditType, int) (bool, error) {
	return false, nil
}

func (f *fakeLedgerService) Deduct(context.Context, uuid.UUID, enums.CreditType, int) (int, error) {
	return 0, nil
}

func (f *fakeLedgerService) Grant(ctx context.Context, profileID uuid.UUID, creditType enums.CreditType, amount int) (int, error) {
	if f.grantFn != nil {
		return f.grantFn(ctx, profileID, creditType, amount)
	}
	return 0, nil
}

func (f *fakeLedgerService) ChatCost(string) int { return 1 }

func TestAdminListUsersForwardsQuery(t *testing.T) {
	var captured profiles.ListParams
	svc := &fakeProfilesService{
		listFn: func(_ context.Context, params profiles.ListParams) (*profiles.ListResult, error) {
			captured = params
			return &profiles.ListResult{Items: []models.Profile{{ID: uuid.New(), Email: "ana@gloova.com.br"}}}, nil
		},
	}

	req := authedRequest(http.MethodGet, "/api/admin/v1/users/?q=ana&limit=10", "", uuid.New())
	resp := httptest.NewRecorder()
	AdminListUsers(svc, nil)(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if captured.Search != "ana" || captured.Limit != 10 {
		t.Fatalf("unexpected list params: %+v", captured)
	}
	if !strings.Contains(resp.Body.String(), "ana@gloova.com.br") {
		t.Fatalf("expected listed profile in body: %s", resp.Body.String())
	}
}

func TestAdminGrantCreditsAppliesGrant(t *testing.T) {
	profileID := uuid.New()
	var grantedType enums.CreditType
	var grantedAmount int
	ledgerSvc := &fakeLedgerService{
		grantFn: func(_ context.Context, id uuid.UUID, creditType enums.CreditType, amount int) (int, error) {
			if id != profileID {
				t.Fatalf("unexpected profile %s", id)
			}
			grantedType = creditType
			grantedAmount = amount
			return 12, nil
		},
	}
	profilesSvc := &fakeProfilesService{
		getByIDFn: func(_ context.Context, id uuid.UUID) (*models.Profile, error) {
			return &models.Profile{ID: id}, nil
		},
	}

	req := authedRequest(http.MethodPost, "/api/admin/v1/users/"+profileID.String()+"/credits",
		`{"credit_type":"chat","amount":5}`, uuid.New())
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("profileId", profileID.String())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	resp := httptest.NewRecorder()
	AdminGrantCredits(profilesSvc, ledgerSvc, nil)(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if grantedType != enums.CreditChat || grantedAmount != 5 {
		t.Fatalf("unexpected grant: %s %d", grantedType, grantedAmount)
	}
}

func TestAdminGrantCreditsUnknownProfile(t *testing.T) {
	profileID := uuid.New()
	req := authedRequest(http.MethodPost, "/api/admin/v1/users/"+profileID.String()+"/credits",
		`{"credit_type":"chat","amount":5}`, uuid.New())
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("profileId", profileID.String())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	resp := httptest.NewRecorder()
	AdminGrantCredits(&fakeProfilesService{}, &fakeLedgerService{}, nil)(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestAdminGrantCreditsRejectsUnknownType(t *testing.T) {
	profileID := uuid.New()
	req := authedRequest(http.MethodPost, "/api/admin/v1/users/"+profileID.String()+"/credits",
		`{"credit_type":"minutes","amount":5}`, uuid.New())
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("profileId", profileID.String())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	resp := httptest.NewRecorder()
	AdminGrantCredits(&fakeProfilesService{}, &fakeLedgerService{}, nil)(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
