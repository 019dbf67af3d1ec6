package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gloova-ai/gloova-backend/api/middleware"
	"github.com/gloova-ai/gloova-backend/internal/diagnosis"
	"github.com/gloova-ai/gloova-backend/pkg/db/models"
)

type fakeDiagnosisService struct {
	submitFn      func(ctx context.Context, profileID uuid.UUID, input diagnosis.SubmitInput) (*models.Diagnosis, error)
	completeDayFn func(ctx context.Context, profileID uuid.UUID, day int) (*models.Diagnosis, error)
	calendarFn    func(ctx context.Context, profileID uuid.UUID) ([]byte, error)
}

func (f *fakeDiagnosisService) Submit(ctx context.Context, profileID uuid.UUID, input diagnosis.SubmitInput) (*models.Diagnosis, error) {
	return f.submitFn(ctx, profileID, input)
}

func (f *fakeDiagnosisService) Latest(context.Context, uuid.UUID) (*models.Diagnosis, error) {
	return nil, nil
}

func (f *fakeDiagnosisService) History(context.Context, uuid.UUID) ([]models.Diagnosis, error) {
	return nil, nil
}

func (f *fakeDiagnosisService) Protocol(context.Context, uuid.UUID) (*diagnosis.ProtocolView, error) {
	return &diagnosis.ProtocolView{}, nil
}

func (f *fakeDiagnosisService) CompleteDay(ctx context.Context, profileID uuid.UUID, day int) (*models.Diagnosis, error) {
	return f.completeDayFn(ctx, profileID, day)
}

func (f *fakeDiagnosisService) CalendarICS(ctx context.Context, profileID uuid.UUID) ([]byte, error) {
	return f.calendarFn(ctx, profileID)
}

func authedRequest(method, target string, body string, profileID uuid.UUID) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return req.WithContext(middleware.WithProfileID(req.Context(), profileID.String()))
}

func TestDiagnosisSubmitForwardsInput(t *testing.T) {
	profileID := uuid.New()
	var captured diagnosis.SubmitInput
	svc := &fakeDiagnosisService{
		submitFn: func(_ context.Context, id uuid.UUID, input diagnosis.SubmitInput) (*models.Diagnosis, error) {
			if id != profileID {
				t.Fatalf("unexpected profile %s", id)
			}
			captured = input
			return &models.Diagnosis{ID: uuid.New()}, nil
		},
	}

	body := `{"image_base64":"aGFpcg==","quiz":{"hair_goal":"hidratar"}}`
	req := authedRequest(http.MethodPost, "/api/v1/diagnosis", body, profileID)
	resp := httptest.NewRecorder()
	DiagnosisSubmit(svc, nil)(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if captured.ImageBase64 != "aGFpcg==" {
		t.Fatalf("unexpected image %q", captured.ImageBase64)
	}
	if captured.Quiz == nil || captured.Quiz.HairGoal != "hidratar" {
		t.Fatalf("quiz not forwarded: %+v", captured.Quiz)
	}
}

func TestDiagnosisSubmitRequiresAuthContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/diagnosis", strings.NewReader(`{"image_base64":"x"}`))
	resp := httptest.NewRecorder()
	DiagnosisSubmit(&fakeDiagnosisService{}, nil)(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestDiagnosisCompleteDayParsesDayParam(t *testing.T) {
	profileID := uuid.New()
	var captured int
	svc := &fakeDiagnosisService{
		completeDayFn: func(_ context.Context, _ uuid.UUID, day int) (*models.Diagnosis, error) {
			captured = day
			return &models.Diagnosis{}, nil
		},
	}

	req := authedRequest(http.MethodPost, "/api/v1/diagnosis/protocol/days/12/complete", "", profileID)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("day", "12")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	resp := httptest.NewRecorder()
	DiagnosisCompleteDay(svc, nil)(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if captured != 12 {
		t.Fatalf("expected day 12 got %d", captured)
	}
}

func TestDiagnosisCompleteDayRejectsBadParam(t *testing.T) {
	req := authedRequest(http.MethodPost, "/api/v1/diagnosis/protocol/days/abc/complete", "", uuid.New())
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("day", "abc")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	resp := httptest.NewRecorder()
	DiagnosisCompleteDay(&fakeDiagnosisService{}, nil)(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestDiagnosisCalendarServesICS(t *testing.T) {
	profileID := uuid.New()
	svc := &fakeDiagnosisService{
		calendarFn: func(context.Context, uuid.UUID) ([]byte, error) {
			return []byte("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"), nil
		},
	}

	req := authedRequest(http.MethodGet, "/api/v1/diagnosis/protocol/calendar.ics", "", profileID)
	resp := httptest.NewRecorder()
	DiagnosisCalendar(svc, nil)(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got := resp.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/calendar") {
		t.Fatalf("unexpected content type %q", got)
	}
	if !strings.Contains(resp.Body.String(), "BEGIN:VCALENDAR") {
		t.Fatalf("unexpected body %q", resp.Body.String())
	}
}
